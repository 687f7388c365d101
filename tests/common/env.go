package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jortega/bolsillo/internal/app"
	icommon "github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/server"
	"github.com/jortega/bolsillo/internal/services/ledger"
	"github.com/jortega/bolsillo/internal/services/recurring"
	"github.com/jortega/bolsillo/internal/services/report"
	"github.com/jortega/bolsillo/internal/storage/surrealdb"
)

var envDBCounter int64

// Env is a fully wired application behind an httptest server, backed by the
// shared SurrealDB container. Each Env gets its own database.
type Env struct {
	App    *app.App
	Server *httptest.Server
}

// NewEnv boots storage, services, and the HTTP server for one test.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	sdb := StartSurrealDB(t)

	config := icommon.NewDefaultConfig()
	config.Storage.Address = sdb.Address()
	config.Storage.Namespace = "bolsillo_test"
	config.Storage.Database = fmt.Sprintf("api_test_%d", atomic.AddInt64(&envDBCounter, 1))

	logger := icommon.NewSilentLogger()

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		t.Fatalf("storage manager: %v", err)
	}

	a := &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		LedgerService:    ledger.NewService(storageManager, logger),
		RecurringService: recurring.NewService(storageManager, logger),
		ReportService:    report.NewService(storageManager, config.Reports, logger),
	}
	t.Cleanup(a.Close)

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &Env{App: a, Server: ts}
}

// HTTPRequest performs a request against the test server. A non-nil body is
// JSON-encoded.
func (e *Env) HTTPRequest(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return http.DefaultClient.Do(req)
}

// GetJSON performs a GET and decodes the JSON response into v, returning the
// status code.
func (e *Env) GetJSON(t *testing.T, path string, v interface{}) int {
	t.Helper()
	resp, err := e.HTTPRequest(http.MethodGet, path, nil, nil)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if v != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode GET %s: %v", path, err)
		}
	}
	return resp.StatusCode
}
