package docpipe

import (
	"bytes"
	"context"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// ledongthucOpener reads documents with github.com/ledongthuc/pdf, which
// applies font encodings when producing page text.
type ledongthucOpener struct{}

func (ledongthucOpener) Open(_ context.Context, data []byte) (Handle, error) {
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ledongthuc open: %w", err)
	}
	return &ledongthucHandle{r: r, pages: r.NumPage()}, nil
}

type ledongthucHandle struct {
	r     *lpdf.Reader
	pages int
}

func (h *ledongthucHandle) PageCount() int { return h.pages }

// PageText returns the page's plain text with whitespace runs collapsed,
// so line breaks inside a page become single spaces.
func (h *ledongthucHandle) PageText(_ context.Context, pageNr int) (string, error) {
	if h.r == nil {
		return "", fmt.Errorf("ledongthuc: handle closed")
	}
	page := h.r.Page(pageNr)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("ledongthuc page text: %w", err)
	}
	return cleanItem(text), nil
}

func (h *ledongthucHandle) Close() error {
	h.r = nil
	return nil
}
