package fields

import (
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// name joins the composite name inputs in declared order. The prefix input
// is option-backed, so the variant also exposes the human-readable prefix
// text for form_data "_name" aliases.
type name struct {
	base
}

func newName(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &name{base: newBase(field, entry, acc)}
}

func (f *name) Value() any {
	return f.memo(func() any {
		parts := make([]string, 0, len(f.field.Inputs))
		for _, input := range f.field.Inputs {
			if input.IsHidden {
				continue
			}
			if part := f.entry.String(input.ID); strings.TrimSpace(part) != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " ")
	})
}

// NameValue resolves option-backed subfields (the prefix dropdown) to their
// display text and returns the joined readable name.
func (f *name) NameValue() any {
	parts := make([]string, 0, len(f.field.Inputs))
	for _, input := range f.field.Inputs {
		if input.IsHidden {
			continue
		}
		part := f.entry.String(input.ID)
		if strings.TrimSpace(part) == "" {
			continue
		}
		parts = append(parts, choiceText(f.field.Choices, part))
	}
	return strings.Join(parts, " ")
}

// SubValue returns one input's recorded value by its dotted id.
func (f *name) SubValue(inputID string) string {
	return f.entry.String(inputID)
}

func (f *name) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *name) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// address renders the composite address inputs as a postal block. Input
// order follows the form definition: street, line two, city, state, zip,
// country.
type address struct {
	base
}

func newAddress(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &address{base: newBase(field, entry, acc)}
}

func (f *address) Value() any {
	return f.memo(func() any {
		lines := make([]string, 0, len(f.field.Inputs))
		var locality []string
		for _, input := range f.field.Inputs {
			if input.IsHidden {
				continue
			}
			part := strings.TrimSpace(f.entry.String(input.ID))
			if part == "" {
				continue
			}
			switch classifyAddressInput(input.Label) {
			case addressLocality:
				locality = append(locality, part)
			default:
				if len(locality) > 0 {
					lines = append(lines, strings.Join(locality, ", "))
					locality = nil
				}
				lines = append(lines, part)
			}
		}
		if len(locality) > 0 {
			lines = append(lines, strings.Join(locality, ", "))
		}
		return strings.Join(lines, "\n")
	})
}

func (f *address) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *address) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

type addressInputKind int

const (
	addressLine addressInputKind = iota
	addressLocality
)

// classifyAddressInput groups city/state/zip onto one line.
func classifyAddressInput(label string) addressInputKind {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "city", "state", "state / province", "province", "zip", "zip / postal code", "postal code":
		return addressLocality
	default:
		return addressLine
	}
}
