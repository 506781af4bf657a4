package docpipe

// Format identifies a document type accepted by the pipeline.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatMD  Format = "md"
	FormatTXT Format = "txt"
)

// MimePDF is the only media type accepted by the parse operation.
const MimePDF = "application/pdf"

// Document is the result of extracting text from a PDF.
type Document struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
}
