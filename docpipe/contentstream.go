package docpipe

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf16"
)

// textItems scans a decoded page content stream and returns the operand
// text of every text-showing operator (Tj, TJ, ' and ") in stream order.
// Bytes are read as Latin-1 unless the string carries a UTF-16BE BOM;
// font encodings and ToUnicode maps are not applied.
func textItems(content []byte) []string {
	s := &csScanner{data: content}
	var items []string
	var operands []csToken

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj", "'", `"`:
			if n := len(operands); n > 0 && operands[n-1].kind == tokString {
				items = appendItem(items, operands[n-1].text)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				items = appendItem(items, strings.Join(operands[n-1].parts, ""))
			}
		case "ID":
			s.skipInlineImage()
		}
		operands = operands[:0]
	}
	return items
}

func appendItem(items []string, raw string) []string {
	if text := cleanItem(raw); text != "" {
		return append(items, text)
	}
	return items
}

// cleanItem drops control characters and collapses whitespace runs.
func cleanItem(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

type tokKind int

const (
	tokOther tokKind = iota
	tokString
	tokArray
	tokOperator
)

type csToken struct {
	kind  tokKind
	text  string
	parts []string // strings inside an array
}

type csScanner struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *csScanner) skipSpaceAndComments() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isPDFSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *csScanner) next() (csToken, bool) {
	s.skipSpaceAndComments()
	if s.pos >= len(s.data) {
		return csToken{}, false
	}

	c := s.data[s.pos]
	switch c {
	case '(':
		s.pos++
		return csToken{kind: tokString, text: decodeText(s.literal())}, true
	case '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			s.pos += 2
			return csToken{kind: tokOther, text: "<<"}, true
		}
		s.pos++
		return csToken{kind: tokString, text: decodeText(s.hex())}, true
	case '>':
		s.pos++
		if s.pos < len(s.data) && s.data[s.pos] == '>' {
			s.pos++
		}
		return csToken{kind: tokOther, text: ">>"}, true
	case '[':
		s.pos++
		return s.array(), true
	case ']', ')', '{', '}':
		s.pos++
		return csToken{kind: tokOther, text: string(c)}, true
	case '/':
		s.pos++
		return csToken{kind: tokOther, text: "/" + s.regular()}, true
	}

	word := s.regular()
	if word == "" {
		// Unreachable for well-formed input; never stall.
		s.pos++
		return csToken{kind: tokOther}, true
	}
	if first := word[0]; (first >= '0' && first <= '9') || first == '+' || first == '-' || first == '.' {
		return csToken{kind: tokOther, text: word}, true
	}
	if word == "true" || word == "false" || word == "null" {
		return csToken{kind: tokOther, text: word}, true
	}
	return csToken{kind: tokOperator, text: word}, true
}

func (s *csScanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isPDFSpace(s.data[s.pos]) && !isPDFDelim(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// array collects the strings of a TJ operand; kerning numbers are dropped.
func (s *csScanner) array() csToken {
	tok := csToken{kind: tokArray}
	for {
		s.skipSpaceAndComments()
		if s.pos >= len(s.data) {
			return tok
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return tok
		}
		inner, ok := s.next()
		if !ok {
			return tok
		}
		switch inner.kind {
		case tokString:
			tok.parts = append(tok.parts, inner.text)
		case tokArray:
			tok.parts = append(tok.parts, inner.parts...)
		}
	}
}

// literal reads a (...) string; the opening paren is already consumed.
func (s *csScanner) literal() []byte {
	var out []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if s.pos >= len(s.data) {
				return out
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// Line continuation.
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						val = val*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a <...> string; the opening bracket is already consumed.
func (s *csScanner) hex() []byte {
	var out []byte
	var hi byte
	half := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage moves past the binary data of a BI ... ID ... EI block.
func (s *csScanner) skipInlineImage() {
	if s.pos < len(s.data) && isPDFSpace(s.data[s.pos]) {
		s.pos++
	}
	for i := s.pos; i+1 < len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isPDFSpace(s.data[i-1])
		after := i+2 >= len(s.data) || isPDFSpace(s.data[i+2])
		if before && after {
			s.pos = i + 2
			return
		}
	}
	s.pos = len(s.data)
}

// decodeText maps raw string bytes to text.
func decodeText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		body := raw[2:]
		units := make([]uint16, 0, len(body)/2)
		for i := 0; i+1 < len(body); i += 2 {
			units = append(units, uint16(body[i])<<8|uint16(body[i+1]))
		}
		return string(utf16.Decode(units))
	}
	if !bytes.ContainsFunc(raw, func(r rune) bool { return r >= 0x80 }) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
