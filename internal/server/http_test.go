package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/bootjs-emulator/internal/script"
	"github.com/karupanerura/bootjs-emulator/internal/server"
)

type execution struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Script   string `json:"script"`
	Source   string `json:"source"`
	Argument string `json:"argument"`
	Result   string `json:"result"`
	Error    string `json:"error"`
}

func newHandler(t *testing.T, source string) (*server.Handler, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "boot.js")
	writeFile(t, path, source)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := server.NewHTTPHandler(func() (*script.Script, error) {
		return script.Load(path)
	}, logger)
	if err != nil {
		t.Fatal(err)
	}
	return h, path
}

// writeFile replaces path at once so that a concurrent reload never sees a
// partially written script.
func writeFile(t *testing.T, path, content string) {
	t.Helper()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, r))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json.Unmarshal(%q): %v", w.Body.String(), err)
	}
	return v
}

func runExecution(t *testing.T, h *server.Handler, body string) execution {
	t.Helper()

	w := request(t, h, http.MethodPost, "/v1/executions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	created := decode[execution](t, w)
	if created.State != "ACTIVE" {
		t.Errorf("expect to ACTIVE but got %s", created.State)
	}

	h.Wait()
	w = request(t, h, http.MethodGet, created.Name, "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	return decode[execution](t, w)
}

func TestExecutions(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, "typeof argument == 'undefined' ? 1 + 2 : argument.n * 2")

	for _, tt := range []struct {
		name     string
		body     string
		expected execution
	}{
		{
			name: "loaded script",
			expected: execution{
				State:    "SUCCEEDED",
				Script:   "boot.js",
				Argument: "null",
				Result:   "[3]",
			},
		},
		{
			name: "argument",
			body: `{"argument": "{\"n\": 21}"}`,
			expected: execution{
				State:    "SUCCEEDED",
				Script:   "boot.js",
				Argument: `{"n": 21}`,
				Result:   "[42]",
			},
		},
		{
			name: "inline source",
			body: `{"source": "x = 'a'; x + 'b'"}`,
			expected: execution{
				State:    "SUCCEEDED",
				Script:   "boot.js (inline)",
				Source:   "x = 'a'; x + 'b'",
				Argument: "null",
				Result:   `["a","ab"]`,
			},
		},
		{
			name: "script error",
			body: `{"source": "missing"}`,
			expected: execution{
				State:    "FAILED",
				Script:   "boot.js (inline)",
				Source:   "missing",
				Argument: "null",
				Error:    `{"message":"missing is not defined","tags":["ReferenceError"]}`,
			},
		},
	} {
		ex := runExecution(t, h, tt.body)
		if !strings.HasPrefix(ex.Name, "/v1/executions/") {
			t.Errorf("%s: unexpected name %q", tt.name, ex.Name)
		}
		tt.expected.Name = ex.Name
		if diff := cmp.Diff(tt.expected, ex); diff != "" {
			t.Errorf("%s: unexpected execution (-want +got):\n%s", tt.name, diff)
		}
	}

	list := decode[map[string][]execution](t, request(t, h, http.MethodGet, "/v1/executions", ""))
	states := make([]string, 0, len(list["executions"]))
	for _, ex := range list["executions"] {
		states = append(states, ex.State)
	}
	if diff := cmp.Diff([]string{"SUCCEEDED", "SUCCEEDED", "SUCCEEDED", "FAILED"}, states); diff != "" {
		t.Errorf("unexpected executions (-want +got):\n%s", diff)
	}
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, "1")
	for _, tt := range []struct {
		method string
		path   string
		body   string
		status int
	}{
		{method: http.MethodGet, path: "/", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/v1/other", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/v1/executions/", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/v1/executions/unknown", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/v1/executions/a/b", status: http.StatusNotFound},
		{method: http.MethodPut, path: "/v1/executions", status: http.StatusMethodNotAllowed},
		{method: http.MethodDelete, path: "/v1/executions/00000001", status: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/v1/executions/00000001:cancel", status: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/v1/executions/00000001:pause", status: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/v1/executions/00000001:cancel", status: http.StatusNotImplemented},
		{method: http.MethodPost, path: "/v1/executions", body: `{"source": 1}`, status: http.StatusBadRequest},
		{method: http.MethodPost, path: "/v1/executions", body: `{"argument": "{"}`, status: http.StatusBadRequest},
		{method: http.MethodPost, path: "/v1/executions", body: `{"source": "var x"}`, status: http.StatusBadRequest},
		{method: http.MethodGet, path: "/v1/executions", status: http.StatusOK},
	} {
		w := request(t, h, tt.method, tt.path, tt.body)
		if w.Code != tt.status {
			t.Errorf("%s %s: expect to %d but got %d: %s", tt.method, tt.path, tt.status, w.Code, w.Body.String())
		}
	}
	h.Wait()
}

func TestReload(t *testing.T) {
	t.Parallel()

	h, path := newHandler(t, "'v1'")
	if ex := runExecution(t, h, ""); ex.Result != `["v1"]` {
		t.Fatalf("unexpected result: %s", ex.Result)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Reload(ctx, 10*time.Millisecond)
	}()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Error(err)
		}
	}()

	// a broken script keeps the previous one in service
	writeFile(t, path, "var")
	time.Sleep(50 * time.Millisecond)
	if ex := runExecution(t, h, ""); ex.Result != `["v1"]` {
		t.Fatalf("unexpected result: %s", ex.Result)
	}

	writeFile(t, path, "'v2'")
	deadline := time.Now().Add(5 * time.Second)
	for {
		ex := runExecution(t, h, "")
		if ex.Result == `["v2"]` {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("script was not reloaded: %s", ex.Result)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
