package fields

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/pkg/model"
)

// simple covers every single-value field whose display is the recorded string
// unchanged: text, phone, time, hidden, and the plain post meta fields.
type simple struct {
	base
}

func newSimple(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &simple{base: newBase(field, entry, acc)}
}

func (f *simple) Value() any {
	return f.memo(func() any {
		return f.entry.String(f.field.ID)
	})
}

func (f *simple) IsEmpty() bool {
	return isEmptyValue(f.Value())
}

func (f *simple) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// textarea preserves authored line breaks.
type textarea struct {
	simple
}

func newTextarea(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &textarea{simple{base: newBase(field, entry, acc)}}
}

// number formats the recorded value as a plain decimal, falling back to the
// raw string when it does not parse.
type number struct {
	base
}

func newNumber(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &number{base: newBase(field, entry, acc)}
}

func (f *number) Value() any {
	return f.memo(func() any {
		raw := f.entry.String(f.field.ID)
		if raw == "" {
			return ""
		}
		if parsed, ok := model.ToNumber(raw); ok {
			return strconv.FormatFloat(parsed, 'f', -1, 64)
		}
		return raw
	})
}

func (f *number) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *number) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// date reformats the stored ISO date through the accessor's display format.
type date struct {
	base
}

func newDate(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &date{base: newBase(field, entry, acc)}
}

func (f *date) Value() any {
	return f.memo(func() any {
		raw := f.entry.String(f.field.ID)
		if raw == "" {
			return ""
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return raw
		}
		return parsed.Format(f.acc.dateFormat())
	})
}

func (f *date) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *date) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// email renders as a mailto link.
type email struct {
	simple
}

func newEmail(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &email{simple{base: newBase(field, entry, acc)}}
}

func (f *email) HTML() (string, error) {
	address := model.Stringify(f.Value())
	if address == "" {
		return f.wrap(""), nil
	}
	markup := fmt.Sprintf(`<a href="mailto:%s">%s</a>`, html.EscapeString(address), html.EscapeString(address))
	return f.wrap(markup), nil
}

// website renders as an anchor, defaulting the scheme when absent.
type website struct {
	simple
}

func newWebsite(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &website{simple{base: newBase(field, entry, acc)}}
}

func (f *website) HTML() (string, error) {
	target := model.Stringify(f.Value())
	if target == "" {
		return f.wrap(""), nil
	}
	href := target
	if !strings.Contains(href, "://") {
		href = "https://" + href
	}
	markup := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(target))
	return f.wrap(markup), nil
}

// section is a visual break: it has no recorded value, only a title and an
// optional sanitized description.
type section struct {
	base
}

func newSection(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &section{base: newBase(field, entry, acc)}
}

func (f *section) Value() any {
	return f.memo(func() any { return f.field.Label })
}

func (f *section) IsEmpty() bool { return false }

func (f *section) HTML() (string, error) {
	var builder strings.Builder
	builder.WriteString(`<div class="doc-section" id="field-`)
	builder.WriteString(html.EscapeString(f.field.ID))
	builder.WriteString("\">\n    <h3>")
	builder.WriteString(html.EscapeString(f.field.Label))
	builder.WriteString("</h3>\n")
	if content := strings.TrimSpace(f.field.Content); content != "" {
		builder.WriteString(`    <div class="doc-section-description">`)
		builder.WriteString(f.acc.sanitize(content))
		builder.WriteString("</div>\n")
	}
	builder.WriteString("</div>\n")
	return builder.String(), nil
}

// htmlBlock passes authored markup through the sanitizer. It carries no
// entry value.
type htmlBlock struct {
	base
}

func newHTMLBlock(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &htmlBlock{base: newBase(field, entry, acc)}
}

func (f *htmlBlock) Value() any {
	return f.memo(func() any { return f.acc.sanitize(f.field.Content) })
}

func (f *htmlBlock) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *htmlBlock) HTML() (string, error) {
	return model.Stringify(f.Value()), nil
}

// pageBreak renders nothing; the layout engine skips it entirely.
type pageBreak struct {
	base
}

func newPageBreak(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &pageBreak{base: newBase(field, entry, acc)}
}

func (f *pageBreak) Value() any            { return f.memo(func() any { return "" }) }
func (f *pageBreak) IsEmpty() bool         { return true }
func (f *pageBreak) HTML() (string, error) { return "", nil }
