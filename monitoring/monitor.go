// Package monitoring turns a running renderer into a web server that can be
// inspected and paused from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/audren/effect"
	"github.com/sarchlab/audren/renderer"
	"github.com/sarchlab/audren/timing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// An Engine is what the monitor controls. timing.SerialEngine implements
// it.
type Engine interface {
	timing.TimeTeller
	Pause()
	Continue()
}

// Monitor serves the state of the registered renderers over HTTP.
type Monitor struct {
	engine     Engine
	renderers  []*renderer.System
	portNumber int
	listener   net.Listener

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that paces the frames.
func (m *Monitor) RegisterEngine(e Engine) {
	m.engine = e
}

// RegisterRenderer registers a renderer to be monitored.
func (m *Monitor) RegisterRenderer(r *renderer.System) {
	m.renderers = append(m.renderers, r)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        xid.New().String(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/renderers", m.listRenderers)
	r.HandleFunc("/api/renderer/{name}", m.rendererDetails)
	r.HandleFunc("/api/renderer/{name}/effects", m.listEffects)
	r.HandleFunc("/api/renderer/{name}/effect/{index}", m.effectDetails)
	r.HandleFunc("/api/renderer/{name}/pools", m.listPools)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring renderer with %s\n", url)

	router := m.Router()
	go func() {
		err := http.Serve(listener, router)
		if err != nil && !isClosedErr(err) {
			log.Panic(err)
		}
	}()

	return url
}

// StopServer stops a server started with StartServer.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	if m.engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	if m.engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if m.engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.CurrentTime())
}

type rendererRsp struct {
	Name              string `json:"name"`
	IsActive          bool   `json:"is_active"`
	ElapsedFrameCount uint64 `json:"elapsed_frame_count"`
	EffectCount       uint32 `json:"effect_count"`
	Revision          int32  `json:"revision"`
}

func describe(r *renderer.System) rendererRsp {
	cfg := r.Config()

	return rendererRsp{
		Name:              r.Name(),
		IsActive:          r.IsActive(),
		ElapsedFrameCount: r.ElapsedFrameCount(),
		EffectCount:       cfg.EffectCount,
		Revision:          cfg.Revision,
	}
}

func (m *Monitor) listRenderers(w http.ResponseWriter, _ *http.Request) {
	rsp := make([]rendererRsp, 0, len(m.renderers))
	for _, r := range m.renderers {
		rsp = append(rsp, describe(r))
	}

	writeJSON(w, rsp)
}

func (m *Monitor) rendererDetails(w http.ResponseWriter, r *http.Request) {
	system := m.findRendererOr404(w, mux.Vars(r)["name"])
	if system == nil {
		return
	}

	writeJSON(w, describe(system))
}

func (m *Monitor) listEffects(w http.ResponseWriter, r *http.Request) {
	system := m.findRendererOr404(w, mux.Vars(r)["name"])
	if system == nil {
		return
	}

	writeJSON(w, system.Effects())
}

func (m *Monitor) effectDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	system := m.findRendererOr404(w, vars["name"])
	if system == nil {
		return
	}

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	var (
		buf      bytes.Buffer
		entryErr error
	)

	field := r.URL.Query().Get("field")
	found := system.InspectEffect(index, func(e effect.Effect) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(e)
		serializer.SetMaxDepth(2)

		if field != "" {
			entryErr = serializer.SetEntryPoint(strings.Split(field, "."))
			if entryErr != nil {
				return
			}
		}

		dieOnErr(serializer.Serialize(&buf))
	})

	switch {
	case !found:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Effect %d not found", index)
	case entryErr != nil:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", entryErr)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write(buf.Bytes())
		dieOnErr(err)
	}
}

func (m *Monitor) listPools(w http.ResponseWriter, r *http.Request) {
	system := m.findRendererOr404(w, mux.Vars(r)["name"])
	if system == nil {
		return
	}

	writeJSON(w, system.Pools())
}

func (m *Monitor) findRendererOr404(
	w http.ResponseWriter,
	name string,
) *renderer.System {
	for _, r := range m.renderers {
		if r.Name() == name {
			return r
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Renderer not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	statuses := make([]ProgressStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		statuses = append(statuses, b.Status())
	}

	writeJSON(w, statuses)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
