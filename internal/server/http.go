package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/bootjs-emulator/internal/script"
	"github.com/karupanerura/bootjs-emulator/internal/types"
)

const basePath = "/v1/executions"

const (
	stateActive    = "ACTIVE"
	stateSucceeded = "SUCCEEDED"
	stateFailed    = "FAILED"
)

type execution struct {
	mu sync.RWMutex

	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime,omitempty"`
	State     string    `json:"state"`
	Script    string    `json:"script"`
	Source    string    `json:"source,omitempty"`
	Error     string    `json:"error,omitempty"`
	Argument  string    `json:"argument"`
	Result    string    `json:"result,omitempty"`
}

// Handler serves the execution API for the script returned by its loader.
type Handler struct {
	loader     func() (*script.Script, error)
	script     atomic.Pointer[script.Script]
	idBase     uint64
	executions sync.Map
	running    sync.WaitGroup
	logger     *slog.Logger
}

// NewHTTPHandler loads the script once and fails if it cannot be loaded.
func NewHTTPHandler(loader func() (*script.Script, error), logger *slog.Logger) (*Handler, error) {
	s, err := loader()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{loader: loader, logger: logger}
	h.script.Store(s)
	return h, nil
}

// Reload reloads the script every interval until ctx is done. A script that
// fails to load keeps the previous one in service.
func (h *Handler) Reload(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		s, err := h.loader()
		if err != nil {
			h.logger.Warn("failed to reload script", slog.Any("error", err))
			continue
		}
		h.script.Store(s)
	}
}

// Wait blocks until every started execution has finished.
func (h *Handler) Wait() {
	h.running.Wait()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, basePath) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.URL.Path == basePath {
		switch r.Method {
		case http.MethodGet:
			h.listExecutions(w, r)
			return

		case http.MethodPost:
			h.createExecution(w, r)
			return

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
	}

	executionID, ok := strings.CutPrefix(r.URL.Path, basePath+"/")
	if !ok || executionID == "" || strings.Contains(executionID, "/") {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if i := strings.LastIndexByte(executionID, ':'); i != -1 {
		customMethod := executionID[i+1:]
		executionID = executionID[:i]
		switch customMethod {
		case "cancel":
			if r.Method == http.MethodPost {
				h.cancelExecution(w, r, executionID)
				return
			}
			fallthrough

		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		h.getExecution(w, r, executionID)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

type executionRequest struct {
	Source   string `json:"source"`
	Argument string `json:"argument"`
}

func (h *Handler) createExecution(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Info("failed to read request body", slog.Any("error", err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var req executionRequest
	if len(bytes.TrimSpace(body)) != 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.logger.Info("failed to decode request body", slog.Any("error", err))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}

	var args any
	if req.Argument == "" {
		req.Argument = "null"
	} else if err := json.NewDecoder(strings.NewReader(req.Argument)).Decode(&args); err != nil {
		h.logger.Info("failed to decode argument JSON", slog.Any("error", err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s := h.script.Load()
	if req.Source != "" {
		inline, err := s.WithSource(req.Source)
		if err != nil {
			h.logger.Info("failed to parse source", slog.Any("error", err))
			resJSON(w, http.StatusBadRequest, map[string]any{"error": exceptionOf(err)})
			return
		}
		s = inline
	}

	id := fmt.Sprintf("%08x", atomic.AddUint64(&h.idBase, 1))
	ex := &execution{
		Name:      basePath + "/" + id,
		StartTime: time.Now().UTC(),
		State:     stateActive,
		Script:    s.Name,
		Source:    req.Source,
		Argument:  req.Argument,
	}
	res := ex.snapshot()
	h.executions.Store(id, ex)

	h.running.Add(1)
	go h.execute(ex, s, args)
	resJSON(w, http.StatusOK, res)
}

func (h *Handler) execute(ex *execution, s *script.Script, args any) {
	defer h.running.Done()

	ret, err := s.Execute(args)

	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.EndTime = time.Now().UTC()
	if err == nil {
		ex.State = stateSucceeded
		ex.Result = encodeJSON(h.logger, ret)
		return
	}

	h.logger.Info("script failed", slog.String("execution", ex.Name), slog.Any("error", err))
	ex.State = stateFailed
	ex.Error = encodeJSON(h.logger, exceptionOf(err))
}

// exceptionOf returns the JSON form of a script error.
func exceptionOf(err error) any {
	var exception types.Exception
	if errors.As(err, &exception) {
		return exception.Exception()
	}
	return map[string]any{"message": err.Error()}
}

func encodeJSON(logger *slog.Logger, v any) string {
	var s strings.Builder
	if err := json.NewEncoder(&s).Encode(v); err != nil {
		logger.Error("failed to encode JSON", slog.Any("error", err), slog.Any("value", v))
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(s.String(), "\n")
}

// snapshot copies the exported fields of ex.
func (ex *execution) snapshot() *execution {
	return &execution{
		Name:      ex.Name,
		StartTime: ex.StartTime,
		EndTime:   ex.EndTime,
		State:     ex.State,
		Script:    ex.Script,
		Source:    ex.Source,
		Error:     ex.Error,
		Argument:  ex.Argument,
		Result:    ex.Result,
	}
}

func (h *Handler) listExecutions(w http.ResponseWriter, r *http.Request) {
	results := []*execution{}
	h.executions.Range(func(_, v any) bool {
		ex := v.(*execution)
		ex.mu.RLock()
		results = append(results, ex.snapshot())
		ex.mu.RUnlock()
		return true
	})
	sort.Slice(results, func(i, j int) bool {
		if results[i].StartTime.Equal(results[j].StartTime) {
			return results[i].Name < results[j].Name
		}
		return results[i].StartTime.Before(results[j].StartTime)
	})

	resJSON(w, http.StatusOK, map[string][]*execution{"executions": results})
}

func (h *Handler) getExecution(w http.ResponseWriter, r *http.Request, id string) {
	ret, ok := h.executions.Load(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ex := ret.(*execution)

	ex.mu.RLock()
	res := ex.snapshot()
	ex.mu.RUnlock()
	resJSON(w, http.StatusOK, res)
}

func (h *Handler) cancelExecution(w http.ResponseWriter, r *http.Request, id string) {
	http.Error(w, "Not Implemented", http.StatusNotImplemented) // patches welcome
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
