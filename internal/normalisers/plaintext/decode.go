package plaintext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// EncodingUTF8 is always tried first.
const EncodingUTF8 = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns bytes into text, trying UTF-8 and then each fallback in order.
type Decoder struct {
	fallbacks []string
	encodings map[string]encoding.Encoding
}

// NewDecoder creates a decoder for the given fallback encodings.
// Unknown encoding names are rejected.
func NewDecoder(fallbacks []string) (*Decoder, error) {
	d := &Decoder{encodings: make(map[string]encoding.Encoding, len(fallbacks))}
	for _, name := range fallbacks {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == EncodingUTF8 {
			continue
		}
		enc, err := lookupEncoding(name)
		if err != nil {
			return nil, domain.NewConfigurationError("FALLBACK_ENCODINGS", "unknown encoding %q", name)
		}
		d.fallbacks = append(d.fallbacks, name)
		d.encodings[name] = enc
	}
	return d, nil
}

// Tried returns every encoding the decoder attempts, in order.
func (d *Decoder) Tried() []string {
	return append([]string{EncodingUTF8}, d.fallbacks...)
}

// Decode returns the text and the name of the encoding that produced it.
// Valid UTF-8 is always accepted, with stray control characters removed;
// plausibility only chooses between fallbacks. When no fallback yields
// plausible text the error is a *domain.DecodeError.
func (d *Decoder) Decode(docID string, content []byte) (string, string, error) {
	if utf8.Valid(content) {
		return stripControl(string(bytes.TrimPrefix(content, utf8BOM))), EncodingUTF8, nil
	}

	for _, name := range d.fallbacks {
		out, err := d.encodings[name].NewDecoder().Bytes(content)
		if err != nil {
			continue
		}
		text := strings.TrimPrefix(string(out), "\uFEFF")
		if plausible(text) {
			return text, name, nil
		}
	}

	return "", "", &domain.DecodeError{DocumentID: docID, Tried: d.Tried()}
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "utf-16":
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin-1", "latin1":
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("lookup encoding %s: %w", name, err)
	}
	return enc, nil
}

// isControl matches C0 and C1 control characters other than layout whitespace.
func isControl(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r', r == '\f':
		return false
	case r < 0x20, r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}

// stripControl drops control characters, leaving the rest of the text intact.
func stripControl(text string) string {
	if strings.IndexFunc(text, isControl) < 0 {
		return text
	}
	return strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, text)
}

// plausible rejects decodings that contain control characters or
// replacement runes, which indicate the wrong encoding was used.
func plausible(text string) bool {
	for _, r := range text {
		if isControl(r) || r == utf8.RuneError {
			return false
		}
	}
	return true
}
