package domain

import (
	"path"
	"strings"
	"time"
)

// Format identifies how a document's bytes must be read.
type Format string

// Supported document formats.
const (
	FormatPDF       Format = "pdf"
	FormatDOCX      Format = "docx"
	FormatDOC       Format = "doc"
	FormatXLSX      Format = "xlsx"
	FormatXLS       Format = "xls"
	FormatText      Format = "text"
	FormatMarkdown  Format = "markdown"
	FormatReference Format = "reference"
)

// extensionFormats maps lower-case file extensions to formats.
var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".doc":      FormatDOC,
	".xlsx":     FormatXLSX,
	".xls":      FormatXLS,
	".txt":      FormatText,
	".text":     FormatText,
	".csv":      FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".yaml":     FormatReference,
	".yml":      FormatReference,
	".json":     FormatReference,
}

// FormatFromPath returns the format for a file name.
// The second return value is false when the extension is not recognised.
func FormatFromPath(name string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(path.Ext(name))]
	return f, ok
}

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatDOC, FormatXLSX, FormatXLS,
		FormatText, FormatMarkdown, FormatReference:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// RawDocument is a document as read from a source, before normalisation.
type RawDocument struct {
	// ID is the stable identifier: the slash-separated path relative to the
	// documents root, or a logical name for in-memory documents.
	ID string

	// URI is the original location (file path or logical URI).
	URI string

	// Format selects the normaliser.
	Format Format

	// Content is the raw bytes. Empty when Payload is set.
	Content []byte

	// Payload is an in-memory structured value (reference documents only).
	Payload any

	// Size is the byte size reported by the source.
	Size int64

	// ModifiedAt is the source modification time.
	ModifiedAt time.Time

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// SourceEntry describes a document found during a scan, before its bytes are read.
type SourceEntry struct {
	ID         string
	URI        string
	Format     Format
	Size       int64
	ModifiedAt time.Time
}

// ChangeType represents the type of source change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// String returns a lower-case name for the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SourceChange is emitted by a watching source when a document changes.
type SourceChange struct {
	Type ChangeType
	ID   string
	URI  string
}
