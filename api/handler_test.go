package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/docsum/dbopen"
	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/observability"
	"github.com/hazyhaar/docsum/summarize"
)

// --- fixtures ---

type stubModel struct {
	text  string
	err   error
	panic bool
	calls int
}

func (m *stubModel) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.panic {
		panic("model exploded")
	}
	return m.text, m.err
}

func (m *stubModel) Name() string { return "stub/test" }

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// gofpdfBase64 renders one page per entry; an empty entry is a page that
// only draws a rectangle.
func gofpdfBase64(t *testing.T, pages ...string) string {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	for _, text := range pages {
		pdf.AddPage()
		if text == "" {
			pdf.Rect(20, 20, 100, 60, "F")
			continue
		}
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("gofpdf output: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type testServer struct {
	handler http.Handler
	model   *stubModel
}

func newTestServer(t *testing.T, model *stubModel, metrics *observability.MetricsManager, opts Options) *testServer {
	t.Helper()
	pipe, err := docpipe.New(docpipe.Config{})
	if err != nil {
		t.Fatalf("docpipe.New: %v", err)
	}
	if model == nil {
		model = &stubModel{text: "Overview. 1. Point one."}
	}
	sum := summarize.NewWithModel(summarize.Config{Timeout: 5 * time.Second}, model)
	return &testServer{
		handler: NewRouter(NewHandler(pipe, sum, metrics, opts)),
		model:   model,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("body %q: %v", rec.Body.String(), err)
	}
	return m
}

func uploadBody(fileData, fileName, mime string) string {
	return `{"fileData":` + jsonString(fileData) +
		`,"fileName":` + jsonString(fileName) +
		`,"mimeType":` + jsonString(mime) + `}`
}

// --- parse-pdf ---

func TestParsePDF_TwoPagesDataURI(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	data := docpipe.DataURIPrefix + gofpdfBase64(t, "First page", "Second page")

	rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(data, "a.pdf", "application/pdf"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["content"]; got != "First page\nSecond page" {
		t.Errorf("content = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
}

func TestParsePDF_Idempotent(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	body := uploadBody(gofpdfBase64(t, "alpha", "beta", "gamma"), "a.pdf", "application/pdf")

	first := s.do(t, http.MethodPost, "/api/parse-pdf", body).Body.String()
	for range 3 {
		if got := s.do(t, http.MethodPost, "/api/parse-pdf", body).Body.String(); got != first {
			t.Fatalf("non-deterministic output: %q vs %q", got, first)
		}
	}
}

func TestParsePDF_WrongMime(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(gofpdfBase64(t, "x"), "a.pdf", "text/plain"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Only PDF files are supported for parsing" {
		t.Errorf("error = %q", got)
	}
}

func TestParsePDF_MissingField(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/parse-pdf", `{"fileName":"a.pdf","mimeType":"application/pdf"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeBody(t, rec)
	if env["error"] != "File data is required" {
		t.Errorf("error = %q", env["error"])
	}
	if _, ok := env["details"]; ok {
		t.Error("validation errors carry no details")
	}
}

func TestParsePDF_NoText(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(gofpdfBase64(t, ""), "scan.pdf", "application/pdf"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["error"]; got != msgNoText {
		t.Errorf("error = %q", got)
	}
}

func TestParsePDF_CorruptInput(t *testing.T) {
	cases := map[string]string{
		"bad base64": "!!!not base64!!!",
		"not a pdf":  base64.StdEncoding.EncodeToString([]byte("hello, definitely not a PDF")),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, nil, nil, Options{})
			rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(data, "a.pdf", "application/pdf"))
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
			env := decodeBody(t, rec)
			if env["error"] != msgParseFailed {
				t.Errorf("error = %q", env["error"])
			}
			if _, ok := env["details"]; ok {
				t.Error("details exposed while disabled")
			}
		})
	}
}

func TestParsePDF_DetailsWhenEnabled(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{ExposeDetails: true})
	rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody("%%%", "a.pdf", "application/pdf"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if decodeBody(t, rec)["details"] == "" {
		t.Error("expected details")
	}
}

func TestParsePDF_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{MaxBodyBytes: 64})
	rec := s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(strings.Repeat("A", 200), "a.pdf", "application/pdf"))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Request body too large" {
		t.Errorf("error = %q", got)
	}
}

// --- summarize ---

func TestSummarize_OK(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"Hello world."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["summary"]; got != "Overview. 1. Point one." {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Content is required" {
		t.Errorf("error = %q", got)
	}
	if s.model.calls != 0 {
		t.Error("model called for invalid input")
	}
}

func TestSummarize_LengthBoundary(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{MaxBodyBytes: 1 << 20})

	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"`+strings.Repeat("a", 100000)+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("100000 chars: status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/summarize", `{"content":"`+strings.Repeat("a", 100001)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("100001 chars: status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Content too large" {
		t.Errorf("error = %q", got)
	}
	if s.model.calls != 1 {
		t.Errorf("model calls = %d, want 1", s.model.calls)
	}
}

func TestSummarize_ModelFailure(t *testing.T) {
	s := newTestServer(t, &stubModel{err: errors.New("dial tcp: connection refused")}, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"Valid text."}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeBody(t, rec)
	if env["error"] != "Failed to generate summary. Please try again." {
		t.Errorf("error = %q", env["error"])
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("upstream error leaked")
	}
}

func TestSummarize_EmptyModelTextFallback(t *testing.T) {
	s := newTestServer(t, &stubModel{text: ""}, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"Valid text."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["summary"]; got != summarize.Fallback {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarize_PanicIsGeneric500(t *testing.T) {
	s := newTestServer(t, &stubModel{panic: true}, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"Valid text."}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Internal server error" {
		t.Errorf("error = %q", got)
	}
}

// --- method, CORS, health ---

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/parse-pdf"},
		{http.MethodPut, "/api/parse-pdf"},
		{http.MethodGet, "/api/summarize"},
		{http.MethodDelete, "/api/summarize"},
	} {
		rec := s.do(t, tc.method, tc.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d", tc.method, tc.path, rec.Code)
			continue
		}
		if got := decodeBody(t, rec)["error"]; got != "Method not allowed" {
			t.Errorf("%s %s: error = %q", tc.method, tc.path, got)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s %s: CORS header missing", tc.method, tc.path)
		}
	}
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	for _, path := range []string{"/api/parse-pdf", "/api/summarize"} {
		rec := s.do(t, http.MethodOptions, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("%s: preflight body = %q", path, rec.Body)
		}
		h := rec.Header()
		if h.Get("Access-Control-Allow-Origin") != "*" ||
			h.Get("Access-Control-Allow-Methods") != "POST, OPTIONS" ||
			h.Get("Access-Control-Allow-Headers") != "Content-Type" {
			t.Errorf("%s: CORS headers = %v", path, h)
		}
	}
	if s.model.calls != 0 {
		t.Error("preflight reached the model")
	}
}

func TestCustomCORSOrigin(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{CORSOrigin: "https://app.example"})
	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"x"}`)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("origin = %q", got)
	}
}

func TestCORS_AheadOfShield(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{MaxBodyBytes: 64, RatePerSecond: 0.001, Burst: 1})

	rec := s.do(t, http.MethodPost, "/api/summarize", `{"content":"`+strings.Repeat("a", 100)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized: status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("oversized: CORS header missing on 413")
	}

	rec = s.do(t, http.MethodPost, "/api/summarize", `{"content":"x"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("limited: status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("limited: CORS header missing on 429")
	}

	rec = s.do(t, http.MethodOptions, "/api/summarize", "")
	if rec.Code != http.StatusOK {
		t.Errorf("preflight while limited: status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q", rec.Body)
	}
}

func TestCORS_NotOnHealth(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodGet, "/health", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("health origin = %q", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %q", got)
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("missing trace header")
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil, Options{})
	rec := s.do(t, http.MethodPost, "/api/nope", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

// --- metrics ---

func TestMetricsRecorded(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(observability.Schema))
	mm := observability.NewMetricsManager(db, 100, time.Hour, nil)
	s := newTestServer(t, nil, mm, Options{})

	s.do(t, http.MethodPost, "/api/parse-pdf", uploadBody(gofpdfBase64(t, "one", "two"), "a.pdf", "application/pdf"))
	s.do(t, http.MethodPost, "/api/summarize", `{"content":"Hello"}`)
	mm.Close()

	ctx := context.Background()
	pages, err := mm.Query(ctx, observability.Filter{Name: observability.MetricPDFPagesExtracted})
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Value != 2 {
		t.Errorf("pages metrics = %+v", pages)
	}

	reqs, err := mm.Query(ctx, observability.Filter{Name: observability.MetricHTTPRequestDurationMs})
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 2 {
		t.Fatalf("request metrics = %d, want 2", len(reqs))
	}
	for _, m := range reqs {
		if m.Labels["status"] != "200" {
			t.Errorf("labels = %v", m.Labels)
		}
	}
}
