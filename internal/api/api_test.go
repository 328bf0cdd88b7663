package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/testutil"
	"github.com/starford/assistant/internal/workspace"
)

type recordedEvent struct {
	kind, domain, key string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) PublishRecordEvent(kind, domain, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{kind, domain, key})
}

// testEnv sets up a temp workspace, handler and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*workspace.Workspace, http.Handler) {
	t.Helper()
	ws, router, _ := testEnvFull(t, authToken, nil)
	return ws, router
}

func testEnvFull(t *testing.T, authToken string, sseHandler http.Handler) (*workspace.Workspace, http.Handler, *eventRecorder) {
	t.Helper()
	ws := testutil.TestWorkspace(t)
	events := &eventRecorder{}
	h := NewHandler(ws, events, NewMetrics(), "USD")
	router := NewRouter(h, authToken != "", authToken, sseHandler)
	return ws, router, events
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, router, events := testEnvFull(t, "", nil)

	w := do(t, router, http.MethodPost, "/notes", map[string]string{"title": "Hello", "content": "World"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[models.Note](t, w)
	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}

	w = do(t, router, http.MethodGet, "/notes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[models.Note](t, w)
	if note.Title != "Hello" || note.Content != "World" {
		t.Errorf("note = %+v", note)
	}

	if len(events.events) != 1 || events.events[0] != (recordedEvent{"created", "notes", "1"}) {
		t.Errorf("events = %+v", events.events)
	}
}

func TestUpdateNoteIgnoresUnknownFields(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/notes", map[string]string{"title": "a", "content": "b"})

	w := do(t, router, http.MethodPatch, "/notes/1", map[string]any{"title": "renamed", "pinned": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	note := decode[models.Note](t, w)
	if note.Title != "renamed" || note.Content != "b" {
		t.Errorf("note = %+v", note)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/notes", map[string]string{"title": "a"})

	if w := do(t, router, http.MethodDelete, "/notes/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/notes/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if !strings.Contains(w.Body.String(), `"notes":[]`) {
		t.Errorf("empty list should encode as []: %s", w.Body.String())
	}

	do(t, router, http.MethodPost, "/notes", map[string]string{"title": "a"})
	do(t, router, http.MethodPost, "/notes", map[string]string{"title": "b"})
	resp := decode[NoteListResponse](t, do(t, router, http.MethodGet, "/notes", nil))
	if resp.Total != 2 || resp.Notes[1].Title != "b" {
		t.Errorf("list = %+v", resp)
	}
}

func TestNoteBadID(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/notes/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTasksLifecycle(t *testing.T) {
	ws, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/tasks", CreateTaskRequest{Title: "taxes", Priority: "1", DueDate: "30-04-2024"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	do(t, router, http.MethodPost, "/tasks", CreateTaskRequest{Title: "walk", Priority: "low", DueDate: "01-05-2024"})

	if w := do(t, router, http.MethodPost, "/tasks/1/done", nil); w.Code != http.StatusOK {
		t.Fatalf("done status = %d", w.Code)
	}
	task, err := ws.Tasks.Get(1)
	if err != nil || !task.Done {
		t.Fatalf("task 1 not done: %+v, %v", task, err)
	}

	resp := decode[TaskListResponse](t, do(t, router, http.MethodGet, "/tasks?done=false", nil))
	if resp.Total != 1 || resp.Tasks[0].Title != "walk" {
		t.Errorf("open tasks = %+v", resp)
	}
	resp = decode[TaskListResponse](t, do(t, router, http.MethodGet, "/tasks?priority=high&due_before=30-04-2024", nil))
	if resp.Total != 1 || resp.Tasks[0].ID != 1 {
		t.Errorf("filtered tasks = %+v", resp)
	}

	w = do(t, router, http.MethodPatch, "/tasks/2", map[string]string{"priority": "Medium"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[models.Task](t, w); got.Priority != models.PriorityMedium {
		t.Errorf("priority = %q", got.Priority)
	}
}

func TestTasksMalformedInput(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/tasks", CreateTaskRequest{Title: "x", Priority: "urgent", DueDate: "01-01-2024"}},
		{http.MethodPost, "/tasks", CreateTaskRequest{Title: "x", Priority: "1", DueDate: "2024-01-01"}},
		{http.MethodGet, "/tasks?done=perhaps", nil},
		{http.MethodGet, "/tasks?due_before=tomorrow", nil},
	}
	for _, c := range cases {
		if w := do(t, router, c.method, c.path, c.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s %s = %d, want 400", c.method, c.path, w.Code)
		}
	}
}

func TestContactsByNameOrPhone(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "Ann Lee", Phone: "+1 555", Email: "ann@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	if w := do(t, router, http.MethodGet, "/contacts/Ann%20Lee", nil); w.Code != http.StatusOK {
		t.Errorf("by name = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/contacts/%2B1%20555", nil); w.Code != http.StatusOK {
		t.Errorf("by phone = %d", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/contacts/Ann%20Lee", map[string]string{"email": "new@example.com"})
	if got := decode[models.Contact](t, w); got.Email != "new@example.com" || got.Phone != "+1 555" {
		t.Errorf("patched = %+v", got)
	}

	if w := do(t, router, http.MethodDelete, "/contacts/Ann%20Lee", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/contacts/Ann%20Lee", nil); w.Code != http.StatusNotFound {
		t.Errorf("after delete = %d, want 404", w.Code)
	}
}

func TestContactKeyDecodedOnce(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "50%20off", Phone: "1"})
	do(t, router, http.MethodPost, "/contacts", CreateContactRequest{Name: "50 off", Phone: "2"})

	w := do(t, router, http.MethodGet, "/contacts/50%2520off", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[models.Contact](t, w); got.Phone != "1" {
		t.Errorf("literal %%20 name resolved to %+v", got)
	}
}

func TestFinanceReportAndBalance(t *testing.T) {
	_, router, events := testEnvFull(t, "", nil)
	for _, rec := range []map[string]any{
		{"amount": 100, "category": "salary", "date": "01-03-2024"},
		{"amount": "-40", "category": "food", "date": "05-03-2024"},
		{"amount": 10, "category": "salary", "date": "20-03-2024"},
		{"amount": -5, "category": "food", "date": "01-04-2024"},
	} {
		if w := do(t, router, http.MethodPost, "/finance", rec); w.Code != http.StatusCreated {
			t.Fatalf("create %v = %d, body = %s", rec, w.Code, w.Body.String())
		}
	}

	w := do(t, router, http.MethodGet, "/finance/report?start=01-03-2024&end=31-03-2024", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", w.Code, w.Body.String())
	}
	var rep struct {
		Income     string `json:"income"`
		Expenses   string `json:"expenses"`
		Balance    string `json:"balance"`
		Categories []struct {
			Category string `json:"category"`
			Amount   string `json:"amount"`
		} `json:"categories"`
		Formatted finance.FormattedTotals `json:"formatted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Income != "110" || rep.Expenses != "-40" || rep.Balance != "70" {
		t.Errorf("report totals = %+v", rep)
	}
	if len(rep.Categories) != 2 || rep.Categories[0].Category != "salary" || rep.Categories[1].Amount != "-40" {
		t.Errorf("categories = %+v", rep.Categories)
	}
	if rep.Formatted.Balance != "$70.00" {
		t.Errorf("formatted balance = %q", rep.Formatted.Balance)
	}

	bal := decode[map[string]any](t, do(t, router, http.MethodGet, "/finance/balance", nil))
	if bal["balance"] != "65" || bal["currency"] != "USD" {
		t.Errorf("balance = %v", bal)
	}

	food := decode[FinanceListResponse](t, do(t, router, http.MethodGet, "/finance?category=food&until=31-03-2024", nil))
	if food.Total != 1 {
		t.Errorf("filtered finance = %+v", food)
	}

	if len(events.events) != 4 || events.events[3].domain != "finance" {
		t.Errorf("events = %+v", events.events)
	}
}

func TestFinanceReportRequiresRange(t *testing.T) {
	_, router := testEnv(t, "")
	for _, path := range []string{"/finance/report", "/finance/report?start=01-01-2024", "/finance/report?start=x&end=y"} {
		if w := do(t, router, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", path, w.Code)
		}
	}
}

func TestFinanceEditAndDelete(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/finance", map[string]any{"amount": 12.5, "category": "misc", "date": "01-01-2024"})

	w := do(t, router, http.MethodPatch, "/finance/1", map[string]any{"amount": -3})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"amount":"-3"`) {
		t.Errorf("patched body = %s", w.Body.String())
	}
	if w := do(t, router, http.MethodPatch, "/finance/1", map[string]any{"date": "someday"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad date patch = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/finance/1", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/finance/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

func TestCalculate(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/calc", CalcRequest{Expression: "6/3"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[CalcResponse](t, w); got.Result != 2 {
		t.Errorf("result = %v, want 2", got.Result)
	}

	if w := do(t, router, http.MethodPost, "/calc", CalcRequest{Expression: "5/0"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("division by zero = %d, want 422", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/calc", CalcRequest{Expression: "2+2*2"}); w.Code != http.StatusBadRequest {
		t.Errorf("malformed = %d, want 400", w.Code)
	}
}

func TestCalculateNonFiniteResult(t *testing.T) {
	_, router := testEnv(t, "")

	for _, expr := range []string{"1e308*10", "inf-inf"} {
		w := do(t, router, http.MethodPost, "/calc", CalcRequest{Expression: expr})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", expr, w.Code)
		}
		if got := decode[errResponse](t, w); got.Error == "" {
			t.Errorf("%s: empty error body", expr)
		}
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]float64{"x": math.Inf(1)})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal error") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestInvalidJSONBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body, _ := json.Marshal(map[string]string{"title": "auth"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ChallengeHeader(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Basic c2VjcmV0MTIz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("basic auth = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestAuthMiddleware_QueryTokenOnlyForEvents(t *testing.T) {
	_, router, _ := testEnvFull(t, "tok", stubSSE)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes?access_token=tok", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("query token on /notes = %d, want 401", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("query token on /events = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// stubSSE writes headers and blocks until the request context is done.
var stubSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router, _ := testEnvFull(t, "secret", stubSSE)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router, _ := testEnvFull(t, "tok", stubSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestMetricsCountOperations(t *testing.T) {
	ws := testutil.TestWorkspace(t)
	m := NewMetrics()
	router := NewRouter(NewHandler(ws, nil, m, "USD"), false, "", nil)

	do(t, router, http.MethodPost, "/notes", map[string]string{"title": "a"})
	do(t, router, http.MethodGet, "/notes/9", nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	for _, want := range []string{
		`assistant_operations_total{domain="notes",op="add",result="ok"} 1`,
		`assistant_operations_total{domain="notes",op="get",result="error"} 1`,
		`assistant_http_requests_total{code="404",method="GET",route="/notes/{id}"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
