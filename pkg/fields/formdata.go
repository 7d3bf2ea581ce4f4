package fields

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// FormData is the resolved value structure handed to document templates.
// Every field value is exposed under three aliases — bare id, "id.label",
// and bare label — kept in sync as a backward-compatibility contract, plus
// "_name" variants for name-style subfields and "_value" variants for
// value-bearing choice fields. Composite inputs additionally appear under
// their dotted ids so merge tags can address a single sub-input.
type FormData map[string]any

// BuildFormData walks the form's fields through the registry and assembles
// the aliased value structure. A field whose variant fails to resolve
// degrades to an empty value; the failure is logged and the build continues.
func BuildFormData(form model.Form, entry *model.Entry, acc Accessors, registry *Registry, logger *slog.Logger) FormData {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if acc.Form.ID == "" {
		acc.Form = form
	}

	data := make(FormData)
	agg := NewAggregate(form, entry, acc)

	for _, descriptor := range form.Fields {
		switch descriptor.Type {
		case model.FieldTypePage, model.FieldTypeHTML, model.FieldTypeSection:
			continue
		}

		field, err := registry.New(descriptor, entry, acc)
		if err != nil {
			logger.Error("form_data field skipped", slog.String("field", descriptor.ID), slog.Any("error", err))
			continue
		}
		if participant, ok := field.(ProductParticipant); ok {
			participant.SetAggregate(agg)
		}

		value := resolveValue(field, logger)
		data.set(descriptor, "", value)
		data.setSubInputs(descriptor, entry)

		if named, ok := field.(NameValued); ok {
			data.set(descriptor, "_name", named.NameValue())
		}
		if raw, ok := field.(RawValued); ok {
			data.set(descriptor, "_value", raw.RawValue())
		}
	}

	data["_form_title"] = form.Title
	data["_form_id"] = form.ID
	data["_entry_id"] = entry.ID
	data["_date_created"] = entry.DateCreated

	return data
}

// resolveValue extracts a field value with local recovery: extraction panics
// or render errors degrade to an empty value so the document still completes.
func resolveValue(field Field, logger *slog.Logger) (value any) {
	defer func() {
		if recovered := recover(); recovered != nil {
			descriptor := field.Descriptor()
			renderErr := &RenderError{FieldID: descriptor.ID, Type: descriptor.Type, Err: errors.New(model.Stringify(recovered))}
			logger.Error("field value extraction failed", slog.String("field", descriptor.ID), slog.Any("error", renderErr))
			value = ""
		}
	}()
	return field.Value()
}

// set writes one value under all of its aliases. The suffix distinguishes
// the "_name"/"_value" variants from the base aliases.
func (d FormData) set(descriptor model.FieldDescriptor, suffix string, value any) {
	label := strings.TrimSpace(descriptor.DisplayLabel())

	d[descriptor.ID+suffix] = value
	if label != "" {
		d[descriptor.ID+"."+label+suffix] = value
		d[label+suffix] = value
	}
}

// setSubInputs exposes composite-field inputs under their dotted ids, so a
// merge tag like {Name (Prefix):2.2} resolves to that input alone. The
// display text lands under the dotted key and the underlying option value
// under its "_value" variant; a "Label (Input)" alias mirrors how profiles
// reference sub-inputs by name.
func (d FormData) setSubInputs(descriptor model.FieldDescriptor, entry *model.Entry) {
	label := strings.TrimSpace(descriptor.DisplayLabel())
	for _, input := range descriptor.Inputs {
		if input.IsHidden {
			continue
		}
		raw := entry.String(input.ID)
		if raw == "" {
			continue
		}
		text := choiceText(descriptor.Choices, raw)
		d[input.ID] = text
		d[input.ID+"_value"] = choiceValue(descriptor.Choices, text)
		if sub := strings.TrimSpace(input.Label); label != "" && sub != "" {
			d[label+" ("+sub+")"] = text
		}
	}
}

// Lookup resolves a merge-tag style key: bare id, "id.label", or label.
func (d FormData) Lookup(key string) (any, bool) {
	value, ok := d[key]
	return value, ok
}
