// internal/models/sitemap.go
package models

import "strings"

// Kind classifies fetched page content.
type Kind int

const (
	// KindUnrecognized is the zero value and marks a failed fetch.
	KindUnrecognized Kind = iota
	KindXML
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindXML:
		return "xml"
	case KindHTML:
		return "html"
	default:
		return "unrecognized"
	}
}

// Extension returns the file extension used when the content is saved.
func (k Kind) Extension() string {
	if k == KindHTML {
		return "html"
	}
	return "xml"
}

// ParseKind is the inverse of String. Unknown names map to KindUnrecognized.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "xml":
		return KindXML
	case "html":
		return KindHTML
	default:
		return KindUnrecognized
	}
}

// Classify sniffs rendered page content: anything carrying an opening html
// tag is an HTML sitemap, everything else is treated as XML.
func Classify(content string) Kind {
	if strings.Contains(strings.ToLower(content), "<html") {
		return KindHTML
	}
	return KindXML
}

// Page is the result of a successful fetch.
type Page struct {
	URL      string
	Kind     Kind
	Content  string
	Attempts int
}
