package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.DefaultConfig())
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	authService := services.NewAuthService(repo, tokens, nil, "http://localhost:5173", logger)
	transactionService := services.NewTransactionService(repo, logger)
	analyticsService := services.NewAnalyticsService(repo, logger)
	budgetService := services.NewBudgetService(repo, analyticsService, logger)

	srv := NewServer(":0", "http://localhost:5173",
		authService, transactionService, analyticsService, budgetService, tokens, logger)
	t.Cleanup(func() { srv.rateLimiter.stop() })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doJSONList(t *testing.T, url, token string) (*http.Response, []map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var list []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	return resp, list
}

func registerTestUser(t *testing.T, baseURL, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "Valid1!pass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %+v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token: %+v", body)
	}
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@b.c", "password": "Valid1!pass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %+v", resp.StatusCode, body)
	}
	if body["message"] != "User created successfully" || body["showWelcome"] != true {
		t.Fatalf("unexpected register body: %+v", body)
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "alice@b.c" || user["name"] != "Alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}

	// Duplicate registration is rejected
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@b.c", "password": "Valid1!pass",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register returned %d: %+v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "alice@b.c", "password": "Valid1!pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d: %+v", resp.StatusCode, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("login returned no token: %+v", body)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "alice@b.c", "password": "Wrong1!pass",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad login returned %d", resp.StatusCode)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@b.c", "password": "nodigits!A",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password returned %d: %+v", resp.StatusCode, body)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"bad format", "Token abc"},
		{"invalid token", "Bearer not.a.token"},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/transactions", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	expired, err := auth.NewTokenManager("test-secret", -time.Minute).Issue(1, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", expired, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "Token has expired" {
		t.Fatalf("unexpected error message: %+v", body)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts.URL, "alice@b.c")

	// Create with a numeric amount
	resp, created := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"text": "groceries", "amount": -50.5, "category": "Food",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d: %+v", resp.StatusCode, created)
	}
	if created["amount"] != -50.5 || created["category"] != "Food" {
		t.Fatalf("unexpected transaction: %+v", created)
	}

	// String amounts with a decimal comma are accepted too
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"text": "salary", "amount": "3000,00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("string amount create returned %d", resp.StatusCode)
	}

	resp, list := doJSONList(t, ts.URL+"/api/transactions", token)
	if resp.StatusCode != http.StatusOK || len(list) != 2 {
		t.Fatalf("list returned %d with %d items", resp.StatusCode, len(list))
	}

	id := int64(created["id"].(float64))

	resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/transactions/%d", ts.URL, id), token, map[string]any{
		"text": "weekly groceries", "amount": -60, "category": "Food",
	})
	if resp.StatusCode != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("update returned %d: %+v", resp.StatusCode, body)
	}

	// Updating a row that does not exist reports zero, not 404
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/transactions/99999", token, map[string]any{
		"text": "ghost", "amount": -1,
	})
	if resp.StatusCode != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("miss update returned %d: %+v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", ts.URL, id), token, nil)
	if resp.StatusCode != http.StatusOK || body["message"] != "Transaction deleted" {
		t.Fatalf("delete returned %d: %+v", resp.StatusCode, body)
	}
}

func TestTransactionValidation(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts.URL, "alice@b.c")

	// Missing text
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": -10,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing text returned %d", resp.StatusCode)
	}

	// Malformed amount
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"text": "oops", "amount": "not-a-number",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad amount returned %d", resp.StatusCode)
	}

	// Missing amount
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"text": "oops",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing amount returned %d", resp.StatusCode)
	}
}

func TestOwnershipIsolationOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := registerTestUser(t, ts.URL, "owner@b.c")
	otherToken := registerTestUser(t, ts.URL, "other@b.c")

	_, created := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", ownerToken, map[string]any{
		"text": "private", "amount": -10,
	})
	id := int64(created["id"].(float64))

	// The other user's list is empty and their delete is a zero count
	resp, list := doJSONList(t, ts.URL+"/api/transactions", otherToken)
	if resp.StatusCode != http.StatusOK || len(list) != 0 {
		t.Fatalf("other user list: %d items (status %d)", len(list), resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", ts.URL, id), otherToken, nil)
	if resp.StatusCode != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("cross-user delete returned %d: %+v", resp.StatusCode, body)
	}

	// Still visible to the owner
	_, list = doJSONList(t, ts.URL+"/api/transactions", ownerToken)
	if len(list) != 1 {
		t.Fatalf("owner lost their transaction: %+v", list)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts.URL, "alice@b.c")

	for _, tx := range []map[string]any{
		{"text": "salary", "amount": 3000, "category": "General"},
		{"text": "groceries", "amount": -50, "category": "Food"},
		{"text": "takeaway", "amount": -30, "category": "Food"},
		{"text": "rent", "amount": -1000, "category": "Rent"},
	} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, tx)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed create returned %d: %+v", resp.StatusCode, body)
		}
	}

	resp, totals := doJSONList(t, ts.URL+"/api/analytics/category-totals", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("totals returned %d", resp.StatusCode)
	}
	byCategory := make(map[string]float64)
	for _, ct := range totals {
		byCategory[ct["category"].(string)] = ct["total"].(float64)
	}
	if byCategory["Food"] != 80 || byCategory["Rent"] != 1000 || byCategory["General"] != 3000 {
		t.Fatalf("unexpected totals: %+v", byCategory)
	}

	resp, summary := doJSON(t, http.MethodGet, ts.URL+"/api/analytics/monthly-summary", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary returned %d", resp.StatusCode)
	}
	if summary["income"] != float64(3000) || summary["expense"] != float64(1080) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary["balance"] != float64(1920) || summary["transactionCount"] != float64(4) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts.URL, "alice@b.c")

	resp, budget := doJSON(t, http.MethodPost, ts.URL+"/api/budgets", token, map[string]any{
		"category": "Food", "limit": 100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upsert returned %d: %+v", resp.StatusCode, budget)
	}
	if budget["category"] != "Food" || budget["limit"] != float64(100) {
		t.Fatalf("unexpected budget: %+v", budget)
	}
	firstID := budget["id"]

	// Same category and month converges on the same row
	resp, budget = doJSON(t, http.MethodPost, ts.URL+"/api/budgets", token, map[string]any{
		"category": "Food", "limit": 200,
	})
	if resp.StatusCode != http.StatusCreated || budget["id"] != firstID || budget["limit"] != float64(200) {
		t.Fatalf("second upsert: %d %+v", resp.StatusCode, budget)
	}

	resp, list := doJSONList(t, ts.URL+"/api/budgets", token)
	if resp.StatusCode != http.StatusOK || len(list) != 1 {
		t.Fatalf("list returned %d with %d budgets", resp.StatusCode, len(list))
	}

	// Non-positive limits are rejected
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/budgets", token, map[string]any{
		"category": "Rent", "limit": 0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero limit returned %d", resp.StatusCode)
	}

	id := int64(budget["id"].(float64))
	resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/budgets/%d", ts.URL, id), token, map[string]any{
		"limit": 150,
	})
	if resp.StatusCode != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("update returned %d: %+v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/budgets/%d", ts.URL, id), token, nil)
	if resp.StatusCode != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("delete returned %d: %+v", resp.StatusCode, body)
	}
}

func TestBudgetReportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts.URL, "alice@b.c")

	if resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"text": "groceries", "amount": -50, "category": "Food",
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed transaction failed: %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/budgets", token, map[string]any{
		"category": "Food", "limit": 100,
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed budget failed: %d", resp.StatusCode)
	}

	resp, reports := doJSONList(t, ts.URL+"/api/budgets/report", token)
	if resp.StatusCode != http.StatusOK || len(reports) != 1 {
		t.Fatalf("report returned %d with %d entries", resp.StatusCode, len(reports))
	}

	r := reports[0]
	if r["spending"] != float64(50) || r["percentage"] != float64(50) {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r["isOverBudget"] != false || r["status"] != "ok" || r["remainingOrOverage"] != float64(50) {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestIndexAndHealth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.StatusCode)
		}
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/", "", nil)
	if resp.StatusCode != http.StatusOK || body["message"] == nil {
		t.Fatalf("index returned %d: %+v", resp.StatusCode, body)
	}

	// Unknown routes are a plain 404
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown route returned %d", resp.StatusCode)
	}
}
