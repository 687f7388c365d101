package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jortega/bolsillo/internal/app"
	"github.com/jortega/bolsillo/internal/server"
	testcommon "github.com/jortega/bolsillo/tests/common"
)

var testDBCounter int64

// testServer creates an httptest.Server backed by a real SurrealDB container.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	sdb := testcommon.StartSurrealDB(t)
	configPath := writeTestConfig(t, sdb.Address())

	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(a.Close)

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func writeTestConfig(t *testing.T, address string) string {
	t.Helper()
	dir := t.TempDir()

	// Unique database per test so runs stay isolated on the shared container.
	dbName := fmt.Sprintf("server_test_%d", atomic.AddInt64(&testDBCounter, 1))

	config := `
[storage]
address = "` + address + `"
username = "root"
password = "root"
namespace = "bolsillo_test"
database = "` + dbName + `"

[logging]
level = "error"
format = "json"
`
	configPath := filepath.Join(dir, "bolsillo.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// TestHealthEndpoint verifies GET /api/health returns 200 with {"status":"ok"}.
func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("Expected status=ok, got %q", body["status"])
	}
}

// TestVersionEndpoint verifies GET /api/version returns version info.
func TestVersionEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["version"] == "" {
		t.Error("Expected non-empty version field")
	}
}

// TestLedgerFlow walks a portfolio through entry creation, balance reads,
// and the monthly report over the full HTTP surface.
func TestLedgerFlow(t *testing.T) {
	ts := testServer(t)

	post := func(path string, payload map[string]interface{}) *http.Response {
		t.Helper()
		data, _ := json.Marshal(payload)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		return resp
	}

	createResp := post("/api/portfolios", map[string]interface{}{
		"name": "casa", "balance": "1000",
	})
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create portfolio status = %d, want 201", createResp.StatusCode)
	}

	incomeResp := post("/api/entries", map[string]interface{}{
		"portfolio_name": "casa", "kind": "income", "amount": "500",
		"date": "2025-10-01", "description": "nomina",
	})
	defer incomeResp.Body.Close()
	if incomeResp.StatusCode != http.StatusCreated {
		t.Fatalf("create income status = %d, want 201", incomeResp.StatusCode)
	}

	expenseResp := post("/api/entries", map[string]interface{}{
		"portfolio_name": "casa", "kind": "expense", "amount": "200",
		"date": "2025-10-05", "description": "mercado", "category": "comida",
	})
	defer expenseResp.Body.Close()
	if expenseResp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense status = %d, want 201", expenseResp.StatusCode)
	}

	balanceResp, err := http.Get(ts.URL + "/api/portfolios/casa/balance")
	if err != nil {
		t.Fatalf("GET balance failed: %v", err)
	}
	defer balanceResp.Body.Close()

	var balance map[string]string
	if err := json.NewDecoder(balanceResp.Body).Decode(&balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance["balance"] != "1300" {
		t.Errorf("balance = %q, want 1300", balance["balance"])
	}

	reportResp, err := http.Get(ts.URL + "/api/portfolios/casa/report?year=2025&month=10")
	if err != nil {
		t.Fatalf("GET report failed: %v", err)
	}
	defer reportResp.Body.Close()

	var report map[string]interface{}
	if err := json.NewDecoder(reportResp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report["total_income"] != "500" || report["total_expense"] != "200" {
		t.Errorf("report totals = %v / %v, want 500 / 200", report["total_income"], report["total_expense"])
	}
}
