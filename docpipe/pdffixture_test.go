package docpipe

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// --- PDF test helpers ---

// buildStreamsPDF creates a valid PDF with one page per content stream and
// exact xref offsets. All pages share a Helvetica font resource /F1.
func buildStreamsPDF(streams ...string) []byte {
	// Object layout: 1 catalog, 2 pages, 3 font, then page/content pairs.
	n := len(streams)
	objects := make([]string, 0, 3+2*n)

	kids := make([]string, n)
	for i := range streams {
		kids[i] = strconv.Itoa(4+2*i) + " 0 R"
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids ["+strings.Join(kids, " ")+"] /Count "+strconv.Itoa(n)+" >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, s := range streams {
		contentNr := 5 + 2*i
		objects = append(objects,
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents "+strconv.Itoa(contentNr)+
				" 0 R /Resources << /Font << /F1 3 0 R >> >> >>",
			"<< /Length "+strconv.Itoa(len(s))+" >>\nstream\n"+s+"\nendstream",
		)
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = b.Len()
		b.WriteString(strconv.Itoa(i+1) + " 0 obj\n" + obj + "\nendobj\n")
	}

	xrefOffset := b.Len()
	size := len(objects) + 1
	b.WriteString("xref\n0 " + strconv.Itoa(size) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		b.WriteString(pdfPadOffset(offsets[i]))
		b.WriteString(" 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(size) + " /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xrefOffset))
	b.WriteString("\n%%EOF\n")
	return []byte(b.String())
}

// buildTextPDF creates a PDF with one page per text, each shown with Tj.
func buildTextPDF(pages ...string) []byte {
	streams := make([]string, len(pages))
	for i, text := range pages {
		streams[i] = "BT\n/F1 12 Tf\n72 720 Td\n(" + escapePDFString(text) + ") Tj\nET"
	}
	return buildStreamsPDF(streams...)
}

func escapePDFString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

func pdfPadOffset(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}

// buildGofpdf renders one page per text with gofpdf's core Helvetica.
func buildGofpdf(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	for _, text := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		doc.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("gofpdf output: %v", err)
	}
	return buf.Bytes()
}

func toDataURI(raw []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(raw)
}
