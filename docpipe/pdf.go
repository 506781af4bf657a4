package docpipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpuOpener reads documents with pdfcpu and pulls text out of the
// decoded page content streams.
type pdfcpuOpener struct{}

func (pdfcpuOpener) Open(_ context.Context, data []byte) (Handle, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfcpuHandle{ctx: ctx}, nil
}

type pdfcpuHandle struct {
	ctx *model.Context
}

func (h *pdfcpuHandle) PageCount() int {
	if h.ctx == nil {
		return 0
	}
	return h.ctx.PageCount
}

// PageText joins the page's text-showing items with single spaces.
func (h *pdfcpuHandle) PageText(_ context.Context, pageNr int) (string, error) {
	if h.ctx == nil {
		return "", fmt.Errorf("pdfcpu: handle closed")
	}
	r, err := pdfcpu.ExtractPageContent(h.ctx, pageNr)
	if err != nil {
		return "", fmt.Errorf("pdfcpu content: %w", err)
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content stream: %w", err)
	}
	return strings.Join(textItems(data), " "), nil
}

// Close drops the parsed document so it can be collected.
func (h *pdfcpuHandle) Close() error {
	h.ctx = nil
	return nil
}
