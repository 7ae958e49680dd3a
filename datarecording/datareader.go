package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams selects and orders the rows of a table.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, e.g. "Frame > ?".
	Where string
	Args  []any

	// OrderBy is an ordering without the ORDER BY keywords, e.g.
	// "Frame DESC". Rows come in insertion order when it is empty.
	OrderBy string

	// Limit caps the number of rows; 0 means no cap.
	Limit  int
	Offset int
}

func (p QueryParams) where() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) tail() string {
	s := " ORDER BY rowid"
	if p.OrderBy != "" {
		s = " ORDER BY " + p.OrderBy
	}

	if p.Limit > 0 {
		s += fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit, p.Offset)
	}

	return s
}

// A Reader reads back a recording.
type Reader struct {
	db *sql.DB
}

// NewReader opens a recording read-only. The file must exist.
func NewReader(filename string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening recording %s: %w", filename, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a Reader on an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// ListTables returns the tables of the recording by name.
func (r *Reader) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Count returns the number of rows of table that match params. Limit and
// Offset are ignored.
func (r *Reader) Count(
	ctx context.Context,
	table string,
	params QueryParams,
) (int, error) {
	var n int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+params.where(), params.Args...).
		Scan(&n)

	return n, err
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Query reads the rows of table that match params into values of T. Columns
// are matched to the fields of T by name; columns without a field are
// dropped. It also returns the number of matching rows before Limit and
// Offset apply.
func Query[T any](
	ctx context.Context,
	r *Reader,
	table string,
	params QueryParams,
) ([]T, int, error) {
	total, err := r.Count(ctx, table, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT * FROM "+table+params.where()+params.tail(),
		params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows[T](rows)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func scanRows[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedField, t)
	}

	var (
		results []T
		discard any
	)

	for rows.Next() {
		var entry T

		v := reflect.ValueOf(&entry).Elem()
		targets := make([]any, len(columns))

		for i, column := range columns {
			if f := v.FieldByName(column); f.IsValid() && f.CanSet() {
				targets[i] = f.Addr().Interface()
			} else {
				targets[i] = &discard
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry)
	}

	return results, rows.Err()
}

// EffectEvents returns the recorded events of one slot in the order they
// happened.
func (r *Reader) EffectEvents(
	ctx context.Context,
	slot int,
) ([]EffectEvent, error) {
	events, _, err := Query[EffectEvent](ctx, r, EffectEventTable,
		QueryParams{Where: "Slot = ?", Args: []any{slot}})

	return events, err
}

// Commands returns the command view recorded for a frame, in command order.
func (r *Reader) Commands(
	ctx context.Context,
	frame uint64,
) ([]CommandEntry, error) {
	commands, _, err := Query[CommandEntry](ctx, r, CommandTable,
		QueryParams{
			Where:   "Frame = ?",
			Args:    []any{frame},
			OrderBy: "Position",
		})

	return commands, err
}
