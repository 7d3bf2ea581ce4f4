package fields

import (
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// NameValued is implemented by variants whose display text differs from the
// recorded value; form_data exposes the text under "_name" aliases.
type NameValued interface {
	NameValue() any
}

// RawValued is implemented by value-bearing choice variants; form_data
// exposes the underlying value under "_value" aliases.
type RawValued interface {
	RawValue() any
}

// choice covers single-selection fields backed by an option list: select,
// radio, and the post category picker. The recorded value is the option
// value; the display text comes from the matching choice.
type choice struct {
	base
}

func newChoice(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &choice{base: newBase(field, entry, acc)}
}

// Value resolves to the option display text when the recorded value matches
// a choice, else the recorded value as-is.
func (f *choice) Value() any {
	return f.memo(func() any {
		raw := f.entry.String(f.field.ID)
		return choiceText(f.field.Choices, raw)
	})
}

// RawValue returns the underlying recorded option value.
func (f *choice) RawValue() any {
	return f.entry.String(f.field.ID)
}

func (f *choice) IsEmpty() bool { return isEmptyValue(f.RawValue()) }

func (f *choice) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// multiChoice covers checkbox and multiselect fields whose recorded value is
// a list of option values.
type multiChoice struct {
	base
}

func newMultiChoice(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &multiChoice{base: newBase(field, entry, acc)}
}

// Value resolves each recorded item to its option display text.
func (f *multiChoice) Value() any {
	return f.memo(func() any {
		items := f.recordedItems()
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, choiceText(f.field.Choices, item))
		}
		return out
	})
}

// RawValue returns the recorded option values.
func (f *multiChoice) RawValue() any {
	return f.recordedItems()
}

func (f *multiChoice) IsEmpty() bool {
	return len(f.recordedItems()) == 0
}

func (f *multiChoice) HTML() (string, error) {
	items, _ := f.Value().([]string)
	if len(items) == 0 {
		return f.wrap(""), nil
	}

	var builder strings.Builder
	builder.WriteString("<ul class=\"doc-choice-list\">\n")
	for _, item := range items {
		builder.WriteString("    <li>")
		builder.WriteString(escape(item))
		builder.WriteString("</li>\n")
	}
	builder.WriteString("</ul>\n")
	return f.wrap(builder.String()), nil
}

// recordedItems normalises the stored value: checkboxes record one value per
// "id.n" sub-key, multiselects a list under the bare id.
func (f *multiChoice) recordedItems() []string {
	var out []string

	if raw, ok := f.entry.Value(f.field.ID); ok {
		switch v := raw.(type) {
		case []string:
			out = append(out, v...)
		case []any:
			for _, item := range v {
				out = append(out, model.Stringify(item))
			}
		case string:
			if strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
		}
	}

	for _, input := range f.field.Inputs {
		if value := f.entry.String(input.ID); strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}

	cleaned := out[:0]
	for _, item := range out {
		if strings.TrimSpace(item) != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// choiceText maps an option value to its display text. Unknown values pass
// through unchanged, which also covers forms that never set distinct values.
func choiceText(choices []model.Choice, value string) string {
	for _, option := range choices {
		if option.Value == value {
			if option.Text != "" {
				return option.Text
			}
			return option.Value
		}
	}
	return value
}

// choiceValue maps display text back to the underlying option value.
func choiceValue(choices []model.Choice, text string) string {
	for _, option := range choices {
		if option.Text == text && option.Value != "" {
			return option.Value
		}
	}
	return text
}
