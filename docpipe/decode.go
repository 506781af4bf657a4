package docpipe

import (
	"encoding/base64"
	"strings"
)

// DataURIPrefix is the marker browsers put in front of a base64 PDF read
// with FileReader.readAsDataURL.
const DataURIPrefix = "data:application/pdf;base64,"

// StripDataURI removes a leading DataURIPrefix. Applying it twice is the
// same as applying it once.
func StripDataURI(s string) string {
	return strings.TrimPrefix(s, DataURIPrefix)
}

// DecodeBase64 strips the data-URI prefix and decodes the standard base64
// payload. Malformed input yields an *ExtractError at StageDecode.
func DecodeBase64(s string) ([]byte, error) {
	payload := StripDataURI(s)
	// Line-wrapped base64 (MIME style) is common when payloads are pasted.
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\t', ' ':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &ExtractError{Stage: StageDecode, Err: err}
	}
	return data, nil
}
