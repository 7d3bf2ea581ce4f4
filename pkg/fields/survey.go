package fields

import (
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// surveyStyle covers quiz, poll, and survey fields. They behave like choice
// fields for value resolution, and additionally expose an aggregate of the
// available options with the selected ones marked, which templates use to
// chart results.
type surveyStyle struct {
	base
}

func newSurveyStyle(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &surveyStyle{base: newBase(field, entry, acc)}
}

func (f *surveyStyle) Value() any {
	return f.memo(func() any {
		raw, ok := f.entry.Value(f.field.ID)
		if !ok {
			return ""
		}
		switch v := raw.(type) {
		case []string:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, choiceText(f.field.Choices, item))
			}
			return out
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, choiceText(f.field.Choices, model.Stringify(item)))
			}
			return out
		default:
			return choiceText(f.field.Choices, model.Stringify(raw))
		}
	})
}

// RawValue returns the recorded option value(s).
func (f *surveyStyle) RawValue() any {
	raw, _ := f.entry.Value(f.field.ID)
	return raw
}

// Results reports each option with its selected state, preserving choice
// order.
func (f *surveyStyle) Results() []SurveyResult {
	selected := make(map[string]struct{})
	switch v := f.RawValue().(type) {
	case []string:
		for _, item := range v {
			selected[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			selected[model.Stringify(item)] = struct{}{}
		}
	case nil:
	default:
		selected[model.Stringify(v)] = struct{}{}
	}

	out := make([]SurveyResult, 0, len(f.field.Choices))
	for _, option := range f.field.Choices {
		_, chosen := selected[option.Value]
		out = append(out, SurveyResult{Text: option.Text, Value: option.Value, Selected: chosen})
	}
	return out
}

// SurveyResult is one option row of a quiz/poll/survey aggregate.
type SurveyResult struct {
	Text     string
	Value    string
	Selected bool
}

func (f *surveyStyle) IsEmpty() bool { return isEmptyValue(f.RawValue()) }

func (f *surveyStyle) HTML() (string, error) {
	results := f.Results()
	if len(results) == 0 {
		return f.wrap(escape(model.Stringify(f.Value()))), nil
	}

	var builder strings.Builder
	builder.WriteString("<ul class=\"doc-survey\">\n")
	for _, result := range results {
		builder.WriteString("    <li")
		if result.Selected {
			builder.WriteString(" class=\"doc-survey-selected\"")
		}
		builder.WriteString(">")
		builder.WriteString(escape(result.Text))
		builder.WriteString("</li>\n")
	}
	builder.WriteString("</ul>\n")
	return f.wrap(builder.String()), nil
}
