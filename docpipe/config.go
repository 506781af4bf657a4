package docpipe

import "log/slog"

// Backend names a concrete PDF implementation.
type Backend string

const (
	BackendPDFCPU     Backend = "pdfcpu"
	BackendLedongthuc Backend = "ledongthuc"
)

// Config configures the extractor.
type Config struct {
	// Backend selects the PDF implementation (default: pdfcpu).
	Backend Backend `json:"backend" yaml:"backend"`

	// MaxFileSize caps the decoded document size (default: 4 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Backend == "" {
		c.Backend = BackendPDFCPU
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 4 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
