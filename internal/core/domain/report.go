package domain

// Warning codes.
const (
	// WarningEmptyCorpus is raised when a build finds no usable documents.
	WarningEmptyCorpus = "empty_corpus"

	// WarningEmptyPage is raised for a PDF page without extractable text.
	WarningEmptyPage = "empty_page"

	// WarningEmptyDocument is raised when a document yields no text at all.
	WarningEmptyDocument = "empty_document"

	// WarningUnsupported is raised for files with an unknown extension.
	WarningUnsupported = "unsupported_format"
)

// Warning is a non-fatal observation made while ingesting.
type Warning struct {
	DocumentID string `json:"document_id,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// DocumentError records a document that could not be ingested.
type DocumentError struct {
	DocumentID string `json:"document_id"`
	Err        error  `json:"-"`
	Message    string `json:"error"`
}

// NewDocumentError creates a DocumentError from an error.
func NewDocumentError(id string, err error) DocumentError {
	return DocumentError{DocumentID: id, Err: err, Message: err.Error()}
}

// IngestReport summarises one build.
type IngestReport struct {
	Documents int             `json:"documents"`
	Chunks    int             `json:"chunks"`
	Errors    []DocumentError `json:"errors,omitempty"`
	Warnings  []Warning       `json:"warnings,omitempty"`
}

// HasWarning returns true if a warning with the given code was recorded.
func (r *IngestReport) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Failed returns the IDs of documents that produced errors.
func (r *IngestReport) Failed() []string {
	ids := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		ids = append(ids, e.DocumentID)
	}
	return ids
}
