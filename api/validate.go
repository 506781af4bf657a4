package api

import (
	"bytes"
	"encoding/json"

	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/summarize"
)

// ValidationError is a rejected request field. Msg is safe to return to
// the caller as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

const (
	msgInvalidRequest  = "Invalid request"
	msgContentRequired = "Content is required"
)

// ParseRequest is the body of POST /api/parse-pdf.
type ParseRequest struct {
	FileData string `json:"fileData"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Content string `json:"content"`
}

// ValidateUpload checks a parse-pdf body. Fields are checked in order
// fileData, fileName, mimeType and the first failure is returned; the
// MIME type check comes last.
func ValidateUpload(body []byte) (*ParseRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	var req ParseRequest
	for _, f := range []struct {
		key string
		dst *string
		msg string
	}{
		{"fileData", &req.FileData, "File data is required"},
		{"fileName", &req.FileName, "File name is required"},
		{"mimeType", &req.MimeType, "MIME type is required"},
	} {
		if err := requiredString(fields, f.key, f.dst, f.msg); err != nil {
			return nil, err
		}
	}
	if req.MimeType != docpipe.MimePDF {
		return nil, &ValidationError{Msg: "Only PDF files are supported for parsing"}
	}
	return &req, nil
}

// ValidateSummarize checks a summarize body: content must be a string of
// 1 to summarize.MaxContentChars UTF-16 code units.
func ValidateSummarize(body []byte) (*SummarizeRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	var req SummarizeRequest
	if err := requiredString(fields, "content", &req.Content, msgContentRequired); err != nil {
		return nil, err
	}
	if err := CheckContent(req.Content); err != nil {
		return nil, err
	}
	return &req, nil
}

// CheckContent applies the summarize length bound to already decoded text.
func CheckContent(content string) error {
	if content == "" {
		return &ValidationError{Msg: msgContentRequired}
	}
	if summarize.ContentLength(content) > summarize.MaxContentChars {
		return &ValidationError{Msg: "Content too large"}
	}
	return nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Msg: msgInvalidRequest}
	}
	return fields, nil
}

// requiredString reads fields[key] into dst. Absent, null and "" fail with
// missingMsg; any other non-string value is an invalid request.
func requiredString(fields map[string]json.RawMessage, key string, dst *string, missingMsg string) error {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &ValidationError{Msg: missingMsg}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Msg: msgInvalidRequest}
	}
	if *dst == "" {
		return &ValidationError{Msg: missingMsg}
	}
	return nil
}
