// Package monitoring serves the generator and a behavioural simulator over
// HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/datarecording"
	"github.com/sarchlab/ramgen/generator"
	"github.com/sarchlab/ramgen/memory"
	"github.com/sarchlab/ramgen/monitoring/web"
	"github.com/sarchlab/ramgen/params"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

// Monitor owns the active configuration and its simulator and exposes them
// through an HTTP API.
type Monitor struct {
	portNumber int
	recorder   datarecording.Recorder
	logger     logrus.FieldLogger

	lock       sync.Mutex
	cfg        config.Config
	sim        *memory.Simulator
	lastBundle *generator.Bundle
}

// Ports below minPortNumber are replaced by a random free port.
const minPortNumber = 1000

// NewMonitor creates a new Monitor serving the default configuration.
func NewMonitor() *Monitor {
	m := &Monitor{logger: logrus.StandardLogger()}
	m.setConfig(config.Default())

	return m
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < minPortNumber {
		m.logger.Warnf("Port number %d is not allowed for the server, "+
			"using a random port instead.", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithConfig sets the configuration the server starts with.
func (m *Monitor) WithConfig(cfg config.Config) *Monitor {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.setConfig(cfg)

	return m
}

// WithRecorder records generated bundles and finished simulator sessions.
func (m *Monitor) WithRecorder(r datarecording.Recorder) *Monitor {
	m.recorder = r
	return m
}

// WithLogger replaces the logger.
func (m *Monitor) WithLogger(l logrus.FieldLogger) *Monitor {
	m.logger = l
	return m
}

// setConfig replaces the simulator wholesale. The caller holds the lock.
func (m *Monitor) setConfig(cfg config.Config) {
	m.archiveSession()

	m.cfg = cfg
	m.sim = memory.MakeBuilder().WithConfig(cfg).Build("Simulator")
}

// archiveSession records the log of the current simulator, if any.
func (m *Monitor) archiveSession() {
	if m.recorder == nil || m.sim == nil {
		return
	}

	if logs := m.sim.Logs(); len(logs) > 0 {
		m.recorder.RecordSimulatorLog(m.sim.ID(), logs)
	}
}

// Handler builds the router of the API and the static page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/presets", m.listPresets).Methods(http.MethodGet)
	api.HandleFunc("/config", m.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", m.putConfig).Methods(http.MethodPut)
	api.HandleFunc("/generate", m.generate).Methods(http.MethodPost)
	api.HandleFunc("/simulator/write", m.simWrite).Methods(http.MethodPost)
	api.HandleFunc("/simulator/read", m.simRead).Methods(http.MethodPost)
	api.HandleFunc("/simulator/test", m.simTest).Methods(http.MethodPost)
	api.HandleFunc("/simulator/reset", m.simReset).Methods(http.MethodPost)
	api.HandleFunc("/simulator/logs", m.simLogs).Methods(http.MethodGet)
	api.HandleFunc("/simulator/state", m.simState).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", m.collectProfile).Methods(http.MethodGet)

	r.NotFoundHandler = http.FileServer(web.GetAssets())

	return r
}

func (m *Monitor) listenAddress() string {
	if m.portNumber < minPortNumber {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

// StartServer starts serving in the background and returns the URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddress())
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	m.logger.WithField("url", url).Info("Serving ramgen")

	handler := m.Handler()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url, nil
}

type presetRsp struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Config      config.Config     `json:"config"`
	Params      params.Parameters `json:"params"`
	Capacity    uint64            `json:"capacity_bytes"`
}

func (m *Monitor) listPresets(w http.ResponseWriter, _ *http.Request) {
	var rsp []presetRsp

	for _, cfg := range config.Presets() {
		p := params.Derive(cfg)
		rsp = append(rsp, presetRsp{
			Label:       cfg.Size.String(),
			Description: describe(cfg.Features),
			Config:      cfg,
			Params:      p,
			Capacity:    p.CapacityBytes(),
		})
	}

	writeJSON(w, http.StatusOK, rsp)
}

func describe(fs config.FeatureSet) string {
	return fmt.Sprintf("%s bus, %s architecture, %s testbench",
		fs.Bus, fs.Architecture, fs.Methodology)
}

func (m *Monitor) getConfig(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	writeJSON(w, http.StatusOK, m.cfg)
}

func (m *Monitor) putConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.setConfig(cfg)
	m.logger.WithField("size", cfg.Size).Info("Configuration replaced")

	writeJSON(w, http.StatusOK, m.cfg)
}

func decodeConfig(r *http.Request) (config.Config, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return config.Config{}, err
	}

	return config.Decode(body, config.FormatJSON)
}

// generate renders the bundle of the posted configuration, or of the
// current one when the body is empty.
func (m *Monitor) generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	cfg := m.cfg
	if len(bytes.TrimSpace(body)) > 0 {
		cfg, err = config.Decode(body, config.FormatJSON)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	b, err := generator.Generate(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.lastBundle = b

	if m.recorder != nil {
		m.recorder.RecordBundle(b)
	}

	m.logger.WithFields(logrus.Fields{
		"bundle":    b.ID,
		"module":    b.Module,
		"testbench": b.Testbench,
	}).Info("Bundle generated")

	writeJSON(w, http.StatusOK, b)
}

type accessReq struct {
	Address string `json:"address"`
	Value   string `json:"value,omitempty"`
}

type accessRsp struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	Value       string `json:"value,omitempty"`
	Initialized bool   `json:"initialized"`
	Corrected   bool   `json:"corrected,omitempty"`
	Log         string `json:"log"`
}

func parseAccess(r *http.Request, needValue bool) (addr int64, value uint64, err error) {
	var req accessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, 0, fmt.Errorf("malformed request: %w", err)
	}

	addr, err = strconv.ParseInt(req.Address, 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address %q", req.Address)
	}

	if !needValue {
		return addr, 0, nil
	}

	value, err = strconv.ParseUint(req.Value, 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", req.Value)
	}

	return addr, value, nil
}

func (m *Monitor) simWrite(w http.ResponseWriter, r *http.Request) {
	addr, value, err := parseAccess(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	err = m.sim.Write(addr, value)
	m.writeAccess(w, err, accessRsp{})
}

func (m *Monitor) simRead(w http.ResponseWriter, r *http.Request) {
	addr, _, err := parseAccess(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	word, err := m.sim.Read(addr)

	rsp := accessRsp{Initialized: word.Initialized, Corrected: word.Corrected}
	if word.Initialized {
		rsp.Value = fmt.Sprintf("0x%X", word.Value)
	}

	m.writeAccess(w, err, rsp)
}

// writeAccess answers a simulator access with its last log line. Rejected
// accesses are reported as 422. The caller holds the lock.
func (m *Monitor) writeAccess(w http.ResponseWriter, err error, rsp accessRsp) {
	logs := m.sim.Logs()
	if len(logs) > 0 {
		rsp.Log = logs[len(logs)-1]
	}

	status := http.StatusOK
	rsp.OK = err == nil

	if err != nil {
		rsp.Error = err.Error()

		if errors.Is(err, memory.ErrOutOfRange) || errors.Is(err, memory.ErrUncorrectable) {
			status = http.StatusUnprocessableEntity
		}
	}

	writeJSON(w, status, rsp)
}

type testRsp struct {
	Passed bool     `json:"passed"`
	Logs   []string `json:"logs"`
}

func (m *Monitor) simTest(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	logs := m.sim.RunBasicTest()

	writeJSON(w, http.StatusOK, testRsp{Passed: memory.Passed(logs), Logs: logs})
}

func (m *Monitor) simReset(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.archiveSession()
	m.sim.Reset()

	writeJSON(w, http.StatusOK, m.sim.Logs())
}

func (m *Monitor) simLogs(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	writeJSON(w, http.StatusOK, m.sim.Logs())
}

type simulatorState struct {
	Name      string
	ID        string
	Depth     uint64
	DataWidth int
	ECC       bool
	LogLength int
	Config    config.Config
}

func (m *Monitor) simState(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	state := &simulatorState{
		Name:      m.sim.Name(),
		ID:        m.sim.ID(),
		Depth:     m.sim.Depth(),
		DataWidth: m.sim.DataWidth(),
		ECC:       m.sim.ECC(),
		LogLength: len(m.sim.Logs()),
		Config:    m.cfg,
	}
	m.lock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(2)

	w.Header().Set("Content-Type", "application/json")

	err := serializer.Serialize(w)
	dieOnErr(err)
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

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, http.StatusOK, prof)
}

type errorRsp struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	rsp := errorRsp{Error: err.Error()}

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		rsp.Fields = verrs.Fields()
	}

	writeJSON(w, status, rsp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
