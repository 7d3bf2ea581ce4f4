// Package fields implements the per-field-type rendering engine: a closed
// set of variants behind one interface, selected through a type-tag registry.
// Each variant extracts its value from the entry once, memoizes it, and emits
// an HTML fragment for the document body.
package fields

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Field is the contract every variant satisfies. Value returns the resolved
// raw value, HTML the document fragment, IsEmpty whether the entry recorded
// nothing for the field. Instances are immutable apart from the memo cache.
type Field interface {
	Descriptor() model.FieldDescriptor
	Value() any
	HTML() (string, error)
	IsEmpty() bool
	HasCache() bool
	ResetCache()
}

// Accessors bundles the collaborators a variant needs at construction: the
// owning form, display formats, and the sanitizer applied to HTML-bearing
// values before they reach the document.
type Accessors struct {
	Form       model.Form
	Sanitizer  *bluemonday.Policy
	DateFormat string
	Currency   string
}

func (a Accessors) dateFormat() string {
	if a.DateFormat != "" {
		return a.DateFormat
	}
	return "2006-01-02"
}

func (a Accessors) currency() string {
	if a.Currency != "" {
		return a.Currency
	}
	return "$"
}

// sanitize strips dangerous markup from authored content. A nil policy falls
// back to UGC defaults.
func (a Accessors) sanitize(markup string) string {
	policy := a.Sanitizer
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}
	return policy.Sanitize(markup)
}

// RenderError marks the failure to extract or format one field's value. The
// document completes regardless: the orchestrator degrades the field to an
// empty fragment and logs the error.
type RenderError struct {
	FieldID string
	Type    model.FieldType
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("fields: render field %s (%s): %v", e.FieldID, e.Type, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// base carries the construction inputs and the per-instance memo cache shared
// by every variant. The cache holds the first Value() computation until an
// explicit reset; nothing invalidates it implicitly.
type base struct {
	field  model.FieldDescriptor
	entry  *model.Entry
	acc    Accessors
	cached bool
	value  any
}

func newBase(field model.FieldDescriptor, entry *model.Entry, acc Accessors) base {
	return base{field: field, entry: entry, acc: acc}
}

func (b *base) Descriptor() model.FieldDescriptor { return b.field }

func (b *base) HasCache() bool { return b.cached }

func (b *base) ResetCache() {
	b.cached = false
	b.value = nil
}

// memo computes the value once and returns the cached result afterwards.
func (b *base) memo(compute func() any) any {
	if !b.cached {
		b.value = compute()
		b.cached = true
	}
	return b.value
}

// wrap emits the shared field chrome around a rendered value fragment. The
// value is expected to be safe markup already; labels are escaped here.
func (b *base) wrap(valueMarkup string) string {
	var builder strings.Builder
	builder.Grow(len(valueMarkup) + 160)

	builder.WriteString(`<div class="doc-field doc-field-`)
	builder.WriteString(string(b.field.Type))
	if b.field.Size.IsColumn() {
		builder.WriteString(" doc-col-")
		builder.WriteString(string(b.field.Size))
	}
	builder.WriteString(`" id="field-`)
	builder.WriteString(html.EscapeString(b.field.ID))
	builder.WriteString("\">\n")

	if label := strings.TrimSpace(b.field.Label); label != "" {
		builder.WriteString(`    <strong class="doc-field-label">`)
		builder.WriteString(html.EscapeString(label))
		builder.WriteString("</strong>\n")
	}

	builder.WriteString(`    <div class="doc-field-value">`)
	builder.WriteString(valueMarkup)
	builder.WriteString("</div>\n</div>\n")
	return builder.String()
}

// escape renders a plain value for embedding, preserving line breaks.
func escape(value string) string {
	escaped := html.EscapeString(value)
	return strings.ReplaceAll(escaped, "\n", "<br />")
}

// isEmptyValue applies the shared emptiness rules across variants.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		for _, item := range v {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case []any:
		for _, item := range v {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range v {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
