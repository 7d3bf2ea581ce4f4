package fields

import (
	"html"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// list renders repeatable rows. Single-column lists record a flat slice of
// strings; multi-column lists record a slice of rows, each a slice or map of
// cell values. Column headers come from the field's choices.
type list struct {
	base
}

func newList(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &list{base: newBase(field, entry, acc)}
}

// Value normalises the recorded rows to [][]string.
func (f *list) Value() any {
	return f.memo(func() any {
		raw, ok := f.entry.Value(f.field.ID)
		if !ok || raw == nil {
			return [][]string(nil)
		}

		switch v := raw.(type) {
		case []string:
			rows := make([][]string, 0, len(v))
			for _, cell := range v {
				rows = append(rows, []string{cell})
			}
			return rows
		case []any:
			rows := make([][]string, 0, len(v))
			for _, item := range v {
				rows = append(rows, normaliseListRow(item, f.columns()))
			}
			return rows
		default:
			return [][]string{{model.Stringify(raw)}}
		}
	})
}

func (f *list) IsEmpty() bool {
	rows, _ := f.Value().([][]string)
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

func (f *list) HTML() (string, error) {
	rows, _ := f.Value().([][]string)
	if len(rows) == 0 {
		return f.wrap(""), nil
	}

	columns := f.columns()

	var builder strings.Builder
	builder.WriteString("<table class=\"doc-list\">\n")
	if len(columns) > 0 {
		builder.WriteString("    <tr>")
		for _, column := range columns {
			builder.WriteString("<th>")
			builder.WriteString(html.EscapeString(column))
			builder.WriteString("</th>")
		}
		builder.WriteString("</tr>\n")
	}
	for _, row := range rows {
		builder.WriteString("    <tr>")
		for _, cell := range row {
			builder.WriteString("<td>")
			builder.WriteString(escape(cell))
			builder.WriteString("</td>")
		}
		builder.WriteString("</tr>\n")
	}
	builder.WriteString("</table>\n")
	return f.wrap(builder.String()), nil
}

func (f *list) columns() []string {
	if len(f.field.Choices) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.field.Choices))
	for _, column := range f.field.Choices {
		out = append(out, column.Text)
	}
	return out
}

func normaliseListRow(item any, columns []string) []string {
	switch row := item.(type) {
	case []any:
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, model.Stringify(cell))
		}
		return cells
	case []string:
		return row
	case map[string]any:
		// Keyed rows follow the declared column order.
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, model.Stringify(row[column]))
		}
		return cells
	default:
		return []string{model.Stringify(item)}
	}
}
