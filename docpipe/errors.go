package docpipe

import (
	"errors"
	"fmt"
)

// ErrNoText is returned when a document opened cleanly but yielded no text
// (zero pages, image-only pages, whitespace only).
var ErrNoText = errors.New("docpipe: no text content found in PDF")

// Stage identifies where extraction failed.
type Stage string

const (
	StageDecode Stage = "decode"
	StageOpen   Stage = "open"
	StagePage   Stage = "page"
)

// ExtractError is a structural failure: bad base64, a PDF that cannot be
// opened, or a page whose content cannot be read.
type ExtractError struct {
	Stage Stage
	Page  int // 1-based, only set for StagePage
	Err   error
}

func (e *ExtractError) Error() string {
	if e.Stage == StagePage {
		return fmt.Sprintf("docpipe: %s %d: %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("docpipe: %s: %v", e.Stage, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
