package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of a recorded session.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records when and how the program ran.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []ExecInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder) (*ExecRecorder, error) {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	if err := recorder.CreateTable(e.tableName, ExecInfo{}); err != nil {
		return nil, err
	}

	return e, nil
}

// Start notes the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.Note("Start Time", time.Now().Format(timeFormat))
	e.Note("Command", strings.Join(os.Args, " "))

	if ex, err := os.Executable(); err == nil {
		e.Note("Working Directory", filepath.Dir(ex))
	}
}

// Note adds a property of the session, such as the scenario that runs.
func (e *ExecRecorder) Note(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the session properties along with the end time.
func (e *ExecRecorder) End() {
	e.Note("End Time", time.Now().Format(timeFormat))

	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
