// Package api serves the docsum HTTP endpoints: PDF text extraction and
// text summarization, each answering with a single JSON envelope.
package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/observability"
	"github.com/hazyhaar/docsum/shield"
	"github.com/hazyhaar/docsum/summarize"
)

// Options tunes the HTTP surface.
type Options struct {
	// ExposeDetails adds the underlying error message to 500 envelopes.
	ExposeDetails bool

	// MaxBodyBytes caps request bodies. Default: 4 MiB.
	MaxBodyBytes int64

	// CORSOrigin is sent as Access-Control-Allow-Origin. Default: "*".
	CORSOrigin string

	// RatePerSecond and Burst enable per-client rate limiting when > 0.
	RatePerSecond float64
	Burst         int
}

func (o *Options) defaults() {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 4 << 20
	}
	if o.CORSOrigin == "" {
		o.CORSOrigin = "*"
	}
}

// Handler holds the process-wide collaborators shared by all requests.
// None of them is mutated per request.
type Handler struct {
	pipe    *docpipe.Pipeline
	sum     *summarize.Client
	metrics *observability.MetricsManager
	opts    Options
}

// NewHandler wires the extraction pipeline and the summarization client.
// metrics may be nil.
func NewHandler(pipe *docpipe.Pipeline, sum *summarize.Client, metrics *observability.MetricsManager, opts Options) *Handler {
	opts.defaults()
	return &Handler{pipe: pipe, sum: sum, metrics: metrics, opts: opts}
}

type parseResponse struct {
	Content string `json:"content"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// ParsePDF handles POST /api/parse-pdf.
func (h *Handler) ParsePDF(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	req, err := ValidateUpload(body)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	doc, err := h.pipe.ExtractBase64(r.Context(), req.FileData)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	shield.GetLogger(r.Context()).Info("pdf parsed",
		"file_name", req.FileName,
		"pages", doc.PageCount,
		"chars", len(doc.Text))
	h.metrics.Observe(observability.MetricPDFPagesExtracted, float64(doc.PageCount), "count", nil)

	writeJSON(w, http.StatusOK, parseResponse{Content: doc.Text})
}

// Summarize handles POST /api/summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	req, err := ValidateSummarize(body)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	start := time.Now()
	summary, err := h.sum.Summarize(r.Context(), req.Content)
	elapsed := time.Since(start)
	h.metrics.Observe(observability.MetricSummaryDurationMs,
		float64(elapsed.Milliseconds()), "ms",
		map[string]string{"model": h.sum.ModelName(), "ok": strconv.FormatBool(err == nil)})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	shield.GetLogger(r.Context()).Info("summary generated",
		"model", h.sum.ModelName(),
		"content_chars", summarize.ContentLength(req.Content),
		"summary_chars", len(summary),
		"duration", elapsed)

	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
