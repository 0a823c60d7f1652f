package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
	applog "budgetsip/internal/log"
	"budgetsip/internal/services"
	"budgetsip/internal/storage"
)

// fixedNow is the clock used by every test server: 2024-02-15.
var fixedNow = time.Date(2024, time.February, 15, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "http.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := applog.New(applog.Config{Output: io.Discard})
	return NewServer(":0", Services{
		Expenses: services.NewExpenseService(repo, nil),
		Plans:    services.NewPlanService(repo),
		Holdings: services.NewHoldingService(repo),
		Summary:  services.NewSummaryService(repo),
		Health:   repo,
	}, Options{
		Logger: logger,
		Now:    func() time.Time { return fixedNow },
	})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, rr, status)
	if got := decode[errorResponse](t, rr).Error; got != msg {
		t.Fatalf("error = %q, want %q", got, msg)
	}
}

func create(t *testing.T, srv *Server, path, body, msg string) int64 {
	t.Helper()
	rr := do(t, srv, http.MethodPost, path, body)
	expectStatus(t, rr, http.StatusCreated)
	res := decode[createdResponse](t, rr)
	if res.Message != msg || res.ID <= 0 {
		t.Fatalf("created = %+v, want message %q", res, msg)
	}
	return res.ID
}

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func TestHealthReadyAndIndex(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	expectStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "ok" {
		t.Fatalf("healthz body = %q", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	expectStatus(t, rr, http.StatusOK)

	rr = do(t, srv, http.MethodGet, "/", "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "Budget &amp; SIP Tracker") {
		t.Fatalf("index body missing heading")
	}
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Fatalf("static Cache-Control = %q", got)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("security headers missing: %v", rr.Header())
	}

	rr = do(t, srv, http.MethodGet, "/app.js", "")
	expectStatus(t, rr, http.StatusOK)
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	expectError(t, do(t, srv, http.MethodPost, "/api/expenses", `{"category":"Food"}`),
		http.StatusBadRequest, "amount is required")

	id := create(t, srv, "/api/expenses", `{"amount":249.5,"category":"Food","payment_mode":"UPI"}`, "expense added")

	rr := do(t, srv, http.MethodGet, itemPath("/api/expenses", id), "")
	expectStatus(t, rr, http.StatusOK)
	got := decode[core.Expense](t, rr)
	if !got.Date.Equal(core.NewDate(2024, 2, 15)) {
		t.Fatalf("date should default to today, got %s", got.Date)
	}
	if !got.Amount.Equal(decimal.RequireFromString("249.5")) || got.PaymentMode != "UPI" {
		t.Fatalf("unexpected expense %+v", got)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("api responses must not be cached")
	}

	expectError(t, do(t, srv, http.MethodPut, itemPath("/api/expenses", id), `{"amount":300}`),
		http.StatusBadRequest, "amount, date are required")

	rr = do(t, srv, http.MethodPut, itemPath("/api/expenses", id),
		`{"amount":"300.25","date":"2024-02-10","category":"Dining","note":"dinner","payment_mode":"Card"}`)
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "expense updated" {
		t.Fatalf("message = %q", msg)
	}

	got = decode[core.Expense](t, do(t, srv, http.MethodGet, itemPath("/api/expenses", id), ""))
	if got.Category != "Dining" || !got.Date.Equal(core.NewDate(2024, 2, 10)) || !got.Amount.Equal(decimal.RequireFromString("300.25")) {
		t.Fatalf("update not applied: %+v", got)
	}

	rr = do(t, srv, http.MethodDelete, itemPath("/api/expenses", id), "")
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "expense deleted" {
		t.Fatalf("message = %q", msg)
	}

	expectError(t, do(t, srv, http.MethodGet, itemPath("/api/expenses", id), ""), http.StatusNotFound, "expense not found")
	expectError(t, do(t, srv, http.MethodDelete, itemPath("/api/expenses", id), ""), http.StatusNotFound, "expense not found")
	expectError(t, do(t, srv, http.MethodPut, itemPath("/api/expenses", id), `{"amount":1,"date":"2024-02-01"}`),
		http.StatusNotFound, "expense not found")
	expectError(t, do(t, srv, http.MethodGet, "/api/expenses/abc", ""), http.StatusBadRequest, "invalid id")
}

func TestListExpenses(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/expenses", "")
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty list should encode as [], got %s", rr.Body.String())
	}

	for _, d := range []string{"2024-01-31", "2024-02-01", "2024-02-20", "2024-03-01"} {
		create(t, srv, "/api/expenses", `{"amount":10,"date":"`+d+`"}`, "expense added")
	}

	all := decode[[]core.Expense](t, do(t, srv, http.MethodGet, "/api/expenses", ""))
	if len(all) != 4 || !all[0].Date.Equal(core.NewDate(2024, 3, 1)) {
		t.Fatalf("unexpected listing %+v", all)
	}

	feb := decode[[]core.Expense](t, do(t, srv, http.MethodGet, "/api/expenses?from=2024-02-01&to=2024-02-29", ""))
	if len(feb) != 2 || !feb[0].Date.Equal(core.NewDate(2024, 2, 20)) || !feb[1].Date.Equal(core.NewDate(2024, 2, 1)) {
		t.Fatalf("unexpected range listing %+v", feb)
	}

	// A single bound is ignored.
	onlyFrom := decode[[]core.Expense](t, do(t, srv, http.MethodGet, "/api/expenses?from=2024-02-01", ""))
	if len(onlyFrom) != 4 {
		t.Fatalf("single bound should list everything, got %d", len(onlyFrom))
	}

	expectError(t, do(t, srv, http.MethodGet, "/api/expenses?from=02/01/2024&to=2024-02-29", ""),
		http.StatusBadRequest, "from must be YYYY-MM-DD")
}

func TestMalformedRequests(t *testing.T) {
	srv := newTestServer(t)

	expectError(t, do(t, srv, http.MethodPost, "/api/expenses", `{`), http.StatusBadRequest, "invalid JSON body")
	expectError(t, do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"abc"}`), http.StatusBadRequest, "invalid JSON body")

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":5,"date":"2024-13-01"}`)
	expectStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(decode[errorResponse](t, rr).Error, "invalid date") {
		t.Fatalf("unexpected error body %s", rr.Body.String())
	}

	expectError(t, do(t, srv, http.MethodGet, "/api/summary?date=tomorrow", ""), http.StatusBadRequest, "date must be YYYY-MM-DD")
}

func TestPlanEndpoints(t *testing.T) {
	srv := newTestServer(t)
	const required = "scheme_name, amount, sip_day, start_date are required"

	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"Index Fund","amount":1000}`),
		http.StatusBadRequest, required)
	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"  ","amount":1000,"sip_day":5,"start_date":"2024-01-01"}`),
		http.StatusBadRequest, required)
	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"Index Fund","amount":1000,"sip_day":32,"start_date":"2024-01-01"}`),
		http.StatusBadRequest, "sip_day must be between 1 and 31")
	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"Index Fund","amount":1000,"sip_day":0,"start_date":"2024-01-01"}`),
		http.StatusBadRequest, "sip_day must be between 1 and 31")
	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"Index Fund","amount":1000,"sip_day":5,"start_date":"2024-01-01","frequency":"weekly"}`),
		http.StatusBadRequest, "frequency is invalid")
	expectError(t, do(t, srv, http.MethodPost, "/api/sips", `{"scheme_name":"Index Fund","amount":1000,"sip_day":5,"start_date":""}`),
		http.StatusBadRequest, required)

	id := create(t, srv, "/api/sips", `{"scheme_name":"Index Fund","amount":1000,"sip_day":31,"start_date":"2024-01-01"}`, "sip added")
	create(t, srv, "/api/sips", `{"scheme_name":"Paused","amount":500,"sip_day":10,"start_date":"2024-01-01","is_active":false}`, "sip added")

	plans := decode[[]core.ScheduledPlan](t, do(t, srv, http.MethodGet, "/api/sips", ""))
	if len(plans) != 1 {
		t.Fatalf("only active plans should be listed, got %+v", plans)
	}
	p := plans[0]
	if p.ID != id || p.Platform != core.DefaultPlatform || p.Frequency != core.Monthly || !p.IsActive {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if !p.NextDueDate.Equal(core.NewDate(2024, 2, 29)) {
		t.Fatalf("next due = %s, want 2024-02-29", p.NextDueDate)
	}

	// The reference date can be supplied explicitly.
	one := decode[core.ScheduledPlan](t, do(t, srv, http.MethodGet, itemPath("/api/sips", id)+"?date=2023-02-15", ""))
	if !one.NextDueDate.Equal(core.NewDate(2024, 1, 31)) {
		t.Fatalf("start date should floor the due date, got %s", one.NextDueDate)
	}

	rr := do(t, srv, http.MethodPut, itemPath("/api/sips", id),
		`{"scheme_name":"Index Fund","amount":1500,"sip_day":5,"start_date":"2024-01-01","platform":"Zerodha"}`)
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "sip updated" {
		t.Fatalf("message = %q", msg)
	}

	one = decode[core.ScheduledPlan](t, do(t, srv, http.MethodGet, itemPath("/api/sips", id)+"?date=2024-03-10", ""))
	if one.Platform != "Zerodha" || !one.Amount.Equal(decimal.NewFromInt(1500)) || !one.NextDueDate.Equal(core.NewDate(2024, 4, 5)) {
		t.Fatalf("unexpected plan after update %+v", one)
	}

	rr = do(t, srv, http.MethodDelete, itemPath("/api/sips", id), "")
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "sip deleted" {
		t.Fatalf("message = %q", msg)
	}
	expectError(t, do(t, srv, http.MethodGet, itemPath("/api/sips", id), ""), http.StatusNotFound, "sip not found")
}

func TestStockEndpoints(t *testing.T) {
	srv := newTestServer(t)

	expectError(t, do(t, srv, http.MethodPost, "/api/stocks", `{"symbol":"infy","units":4}`),
		http.StatusBadRequest, "symbol, units, buy_price are required")
	expectError(t, do(t, srv, http.MethodPost, "/api/stocks", `{"symbol":"infy","units":-1,"buy_price":10}`),
		http.StatusBadRequest, "units cannot be negative")

	id := create(t, srv, "/api/stocks", `{"symbol":" infy ","units":4,"buy_price":1500.25,"total_invested":1}`, "stock added")

	h := decode[core.Holding](t, do(t, srv, http.MethodGet, itemPath("/api/stocks", id), ""))
	if h.Symbol != "INFY" || h.Platform != core.DefaultPlatform || !h.TotalInvested.Equal(decimal.RequireFromString("6001")) {
		t.Fatalf("unexpected holding %+v", h)
	}

	rr := do(t, srv, http.MethodPut, itemPath("/api/stocks", id), `{"symbol":"tcs","units":2.5,"buy_price":"3400"}`)
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "stock updated" {
		t.Fatalf("message = %q", msg)
	}

	holdings := decode[[]core.Holding](t, do(t, srv, http.MethodGet, "/api/stocks", ""))
	if len(holdings) != 1 || holdings[0].Symbol != "TCS" || !holdings[0].TotalInvested.Equal(decimal.NewFromInt(8500)) {
		t.Fatalf("total_invested not recomputed: %+v", holdings)
	}

	rr = do(t, srv, http.MethodDelete, itemPath("/api/stocks", id), "")
	expectStatus(t, rr, http.StatusOK)
	expectError(t, do(t, srv, http.MethodDelete, itemPath("/api/stocks", id), ""), http.StatusNotFound, "stock not found")
}

func TestBudgetAndSummary(t *testing.T) {
	srv := newTestServer(t)

	status := decode[core.BudgetStatus](t, do(t, srv, http.MethodGet, "/api/budget", ""))
	if !status.Budget.IsZero() || !status.Remaining.IsZero() {
		t.Fatalf("unset budget should read as zero: %+v", status)
	}

	// An omitted budget is stored as zero.
	rr := do(t, srv, http.MethodPost, "/api/budget", `{}`)
	expectStatus(t, rr, http.StatusOK)
	status = decode[core.BudgetStatus](t, do(t, srv, http.MethodGet, "/api/budget", ""))
	if !status.Budget.IsZero() {
		t.Fatalf("omitted budget should store zero: %+v", status)
	}

	rr = do(t, srv, http.MethodPost, "/api/budget", `{"budget":5000}`)
	expectStatus(t, rr, http.StatusOK)
	if msg := decode[messageResponse](t, rr).Message; msg != "budget updated" {
		t.Fatalf("message = %q", msg)
	}

	create(t, srv, "/api/expenses", `{"amount":2000,"date":"2024-02-01"}`, "expense added")
	create(t, srv, "/api/expenses", `{"amount":1200,"date":"2024-02-29"}`, "expense added")
	create(t, srv, "/api/expenses", `{"amount":999,"date":"2024-03-01"}`, "expense added")

	status = decode[core.BudgetStatus](t, do(t, srv, http.MethodGet, "/api/budget", ""))
	if !status.MonthExpenseTotal.Equal(decimal.NewFromInt(3200)) || !status.Remaining.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("unexpected budget status %+v", status)
	}

	create(t, srv, "/api/sips", `{"scheme_name":"Soon","amount":1000,"sip_day":18,"start_date":"2024-01-01"}`, "sip added")
	create(t, srv, "/api/sips", `{"scheme_name":"Later","amount":500,"sip_day":23,"start_date":"2024-01-01"}`, "sip added")
	create(t, srv, "/api/stocks", `{"symbol":"infy","units":2,"buy_price":100}`, "stock added")

	summary := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary", ""))
	if !summary.MonthExpenseTotal.Equal(decimal.NewFromInt(3200)) ||
		!summary.Remaining.Equal(decimal.NewFromInt(1800)) ||
		!summary.Budget.Equal(decimal.NewFromInt(5000)) ||
		!summary.TotalSIPInvested.Equal(decimal.NewFromInt(1500)) ||
		!summary.TotalStockInvested.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.UpcomingSIPs) != 1 || summary.UpcomingSIPs[0].SchemeName != "Soon" ||
		!summary.UpcomingSIPs[0].NextDueDate.Equal(core.NewDate(2024, 2, 18)) {
		t.Fatalf("upcoming window should hold only the +3 day plan: %+v", summary.UpcomingSIPs)
	}

	march := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary?date=2024-03-20", ""))
	if !march.MonthExpenseTotal.Equal(decimal.NewFromInt(999)) || len(march.UpcomingSIPs) != 1 || march.UpcomingSIPs[0].SchemeName != "Later" {
		t.Fatalf("unexpected March summary %+v", march)
	}

	rr = do(t, srv, http.MethodGet, "/api/summary?date=2024-02-01", "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"upcoming_sips_next_7_days":[]`) {
		t.Fatalf("empty upcoming list should encode as [], got %s", rr.Body.String())
	}
}

func TestCORSAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	// Headers outside the allow-list are refused.
	req = httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed header preflight got Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id not echoed: %v", rr.Header())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header missing on simple request")
	}
	if m := srv.Metrics(); m.TotalRequests != 3 || m.ServerErrors != 0 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}
