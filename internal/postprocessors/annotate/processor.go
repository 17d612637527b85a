// Package annotate tags chunks with a document type and key topics.
package annotate

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// Name is the processor name used in configuration.
const Name = "annotate"

// Metadata keys written by the processor.
const (
	KeyDocumentType = "document_type"
	KeyTopics       = "key_topics"
)

type rule struct {
	label    string
	keywords []string
}

// filenameRules are checked first, against the lower-cased file name.
var filenameRules = []rule{
	{"policy_document", []string{"policy", "policies", "procedure"}},
	{"training_material", []string{"training", "guide", "manual"}},
	{"service_script", []string{"script", "dialogue", "response"}},
	{"procedural_guide", []string{"checklist", "steps", "process"}},
	{"faq_document", []string{"faq", "questions", "answers"}},
}

// contentRules are checked against the lower-cased document text.
var contentRules = []rule{
	{"greeting_guide", []string{"greeting", "welcome", "hello"}},
	{"service_recovery", []string{"complaint", "issue", "problem", "recovery"}},
	{"billing_guidance", []string{"billing", "payment", "charge", "refund"}},
}

var formatTypes = map[domain.Format]string{
	domain.FormatReference: "reference_document",
	domain.FormatXLSX:      "spreadsheet",
	domain.FormatXLS:       "spreadsheet",
}

// topicRules map topics to the keywords that signal them.
var topicRules = []rule{
	{"customer_service", []string{"customer", "service", "guest", "satisfaction"}},
	{"billing", []string{"bill", "charge", "payment", "refund", "invoice"}},
	{"reservations", []string{"reservation", "booking", "check-in", "check-out"}},
	{"complaints", []string{"complaint", "issue", "problem", "dissatisfied"}},
	{"amenities", []string{"pool", "gym", "wifi", "breakfast", "parking"}},
	{"room_service", []string{"room service", "housekeeping", "maintenance"}},
	{"policies", []string{"policy", "rule", "regulation", "guideline"}},
	{"emergency", []string{"emergency", "safety", "security", "evacuation"}},
}

// Processor annotates chunk metadata. It never adds or removes chunks.
type Processor struct{}

// New creates a new annotation processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process stamps every chunk with the document type and its own topics.
// Chunks are copied; the input slice is not modified.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	docType := ClassifyDocument(doc)
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		meta := make(map[string]any, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			meta[k] = v
		}
		meta[KeyDocumentType] = docType
		meta[KeyTopics] = Topics(c.IndexText())
		c.Metadata = meta
		out[i] = c
	}
	return out, nil
}

// ClassifyDocument labels a document by file name, then content, then format.
func ClassifyDocument(doc *domain.Document) string {
	name := strings.ToLower(filepath.Base(doc.URI))
	if doc.URI == "" {
		name = strings.ToLower(filepath.Base(doc.ID))
	}
	if label := match(filenameRules, name); label != "" {
		return label
	}

	var sb strings.Builder
	for _, b := range doc.Blocks {
		sb.WriteString(strings.ToLower(b.Heading))
		sb.WriteByte('\n')
		sb.WriteString(strings.ToLower(b.Text))
		sb.WriteByte('\n')
	}
	if label := match(contentRules, sb.String()); label != "" {
		return label
	}

	if label, ok := formatTypes[doc.Format]; ok {
		return label
	}
	return "general"
}

// Topics returns every topic whose keywords appear in text, in table order.
func Topics(text string) []string {
	lower := strings.ToLower(text)
	topics := []string{}
	for _, r := range topicRules {
		if containsAny(lower, r.keywords) {
			topics = append(topics, r.label)
		}
	}
	return topics
}

func match(rules []rule, text string) string {
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			return r.label
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
