// Package docpipe turns uploaded documents into plain text.
//
// PDF payloads arrive base64 encoded, optionally behind a data-URI prefix.
// They are decoded, opened with the configured backend and read page by
// page; page texts are joined with newlines in page order and the result is
// trimmed. A document that opens but yields no text fails with ErrNoText;
// anything that prevents reading it fails with *ExtractError.
//
// Usage:
//
//	pipe, err := docpipe.New(docpipe.Config{})
//	doc, err := pipe.ExtractBase64(ctx, req.FileData)
//	fmt.Println(doc.PageCount, "pages")
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Opener loads a PDF from memory. Exactly one implementation is selected
// per Pipeline.
type Opener interface {
	Open(ctx context.Context, data []byte) (Handle, error)
}

// Handle is an opened document. Close must be called on every path.
type Handle interface {
	PageCount() int
	// PageText returns the text of page pageNr (1-based).
	PageText(ctx context.Context, pageNr int) (string, error)
	Close() error
}

// Pipeline is the document extraction engine.
type Pipeline struct {
	cfg    Config
	opener Opener
	logger *slog.Logger
}

// New creates a Pipeline using the backend named in cfg.
func New(cfg Config) (*Pipeline, error) {
	cfg.defaults()
	var opener Opener
	switch cfg.Backend {
	case BackendPDFCPU:
		opener = pdfcpuOpener{}
	case BackendLedongthuc:
		opener = ledongthucOpener{}
	default:
		return nil, fmt.Errorf("docpipe: unknown pdf backend %q", cfg.Backend)
	}
	return NewWithOpener(cfg, opener), nil
}

// NewWithOpener creates a Pipeline around an explicit Opener.
func NewWithOpener(cfg Config, opener Opener) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		opener: opener,
		logger: cfg.Logger,
	}
}

// ExtractBase64 decodes a (possibly data-URI prefixed) base64 payload and
// extracts its text.
func (p *Pipeline) ExtractBase64(ctx context.Context, fileData string) (*Document, error) {
	data, err := DecodeBase64(fileData)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, data)
}

// Extract reads every page of the PDF in data, in document order.
func (p *Pipeline) Extract(ctx context.Context, data []byte) (*Document, error) {
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, &ExtractError{
			Stage: StageOpen,
			Err:   fmt.Errorf("document too large: %d bytes (max %d)", len(data), p.cfg.MaxFileSize),
		}
	}

	h, err := p.open(ctx, data)
	if err != nil {
		return nil, &ExtractError{Stage: StageOpen, Err: err}
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			p.logger.Warn("close pdf handle", "error", cerr)
		}
	}()

	n := h.PageCount()
	p.logger.Debug("pdf opened", "backend", p.cfg.Backend, "bytes", len(data), "pages", n)

	pages := make([]string, 0, n)
	for pageNr := 1; pageNr <= n; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, &ExtractError{Stage: StagePage, Page: pageNr, Err: err}
		}
		text, err := p.pageText(ctx, h, pageNr)
		if err != nil {
			return nil, &ExtractError{Stage: StagePage, Page: pageNr, Err: err}
		}
		pages = append(pages, text)
	}

	text := strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return nil, ErrNoText
	}
	return &Document{Text: text, PageCount: n}, nil
}

// open and pageText convert parser panics into errors; both PDF libraries
// panic on some malformed inputs.
func (p *Pipeline) open(ctx context.Context, data []byte) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return p.opener.Open(ctx, data)
}

func (p *Pipeline) pageText(ctx context.Context, h Handle, pageNr int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parser panic: %v", r)
		}
	}()
	return h.PageText(ctx, pageNr)
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", ext)
	}
}

// ExtractFile returns the text of a local file: PDFs go through Extract,
// text and markdown are read verbatim.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (string, error) {
	format, err := p.Detect(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	p.logger.Debug("extracting file", "path", path, "format", format)

	switch format {
	case FormatPDF:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		doc, err := p.Extract(ctx, data)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	default:
		return ReadText(path)
	}
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"pdf", "md", "txt"}
}
