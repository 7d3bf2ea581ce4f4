package model

import "strings"

// FieldType tags a field descriptor with the variant the rendering engine
// should instantiate for it.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeTextarea     FieldType = "textarea"
	FieldTypeNumber       FieldType = "number"
	FieldTypeDate         FieldType = "date"
	FieldTypeTime         FieldType = "time"
	FieldTypePhone        FieldType = "phone"
	FieldTypeEmail        FieldType = "email"
	FieldTypeWebsite      FieldType = "website"
	FieldTypeHidden       FieldType = "hidden"
	FieldTypeSelect       FieldType = "select"
	FieldTypeRadio        FieldType = "radio"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeMultiSelect  FieldType = "multiselect"
	FieldTypeName         FieldType = "name"
	FieldTypeAddress      FieldType = "address"
	FieldTypeList         FieldType = "list"
	FieldTypeSignature    FieldType = "signature"
	FieldTypeSection      FieldType = "section"
	FieldTypeHTML         FieldType = "html"
	FieldTypePage         FieldType = "page"
	FieldTypeQuiz         FieldType = "quiz"
	FieldTypePoll         FieldType = "poll"
	FieldTypeSurvey       FieldType = "survey"
	FieldTypePostTitle    FieldType = "post_title"
	FieldTypePostExcerpt  FieldType = "post_excerpt"
	FieldTypePostTags     FieldType = "post_tags"
	FieldTypePostCategory FieldType = "post_category"
	FieldTypePostImage    FieldType = "post_image"
	FieldTypePostCustom   FieldType = "post_custom_field"
	FieldTypeProduct      FieldType = "product"
	FieldTypeOption       FieldType = "option"
	FieldTypeQuantity     FieldType = "quantity"
	FieldTypeShipping     FieldType = "shipping"
	FieldTypeTotal        FieldType = "total"
)

// FieldSize describes the horizontal span a field occupies inside a layout row.
type FieldSize string

const (
	SizeFull    FieldSize = "full"
	SizeHalf    FieldSize = "half"
	SizeThird   FieldSize = "third"
	SizeQuarter FieldSize = "quarter"
)

// Fraction reports the share of a row the size occupies. Unknown or empty
// sizes count as a full row.
func (s FieldSize) Fraction() float64 {
	switch s {
	case SizeHalf:
		return 0.5
	case SizeThird:
		return 1.0 / 3.0
	case SizeQuarter:
		return 0.25
	default:
		return 1
	}
}

// IsColumn reports whether the size is a column fraction rather than a full
// row span.
func (s FieldSize) IsColumn() bool {
	switch s {
	case SizeHalf, SizeThird, SizeQuarter:
		return true
	default:
		return false
	}
}

// StopperClass is the style marker that forces the layout engine to close the
// current row before the carrying field is placed.
const StopperClass = "row-stop"

// SubInput describes one input of a composite field (name prefix, street
// line, and so on). The ID uses the "parent.sub" dotted form matching entry
// value keys.
type SubInput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// IsHidden marks inputs the form has disabled; their values are ignored.
	IsHidden bool `json:"isHidden,omitempty"`
}

// Choice is one selectable option of a choice-bearing field.
type Choice struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Selected bool   `json:"isSelected,omitempty"`
	Price    string `json:"price,omitempty"`
}

// FieldDescriptor is the form's definition of a single field. Descriptors are
// supplied by the submission collaborator and treated as read-only.
type FieldDescriptor struct {
	ID         string     `json:"id"`
	Type       FieldType  `json:"type"`
	Label      string     `json:"label"`
	AdminLabel string     `json:"adminLabel,omitempty"`
	Size       FieldSize  `json:"size,omitempty"`
	CSSClass   string     `json:"cssClass,omitempty"`
	Inputs     []SubInput `json:"inputs,omitempty"`
	Choices    []Choice   `json:"choices,omitempty"`
	// ProductType distinguishes product presentation variants
	// (single/select/radio/user-defined price).
	ProductType string `json:"productType,omitempty"`
	// BasePrice is the formatted unit price for product fields.
	BasePrice string `json:"basePrice,omitempty"`
	// ProductField links option/quantity fields to the product they modify.
	ProductField string `json:"productField,omitempty"`
	// Content carries authored markup for presentation fields (html, section
	// descriptions) and the post body template.
	Content  string            `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// HasStopper reports whether the descriptor carries the row-stop style marker.
func (f FieldDescriptor) HasStopper() bool {
	return hasClass(f.CSSClass, StopperClass)
}

// DisplayLabel prefers the admin label when one is set, matching how profiles
// reference fields in merge tags and conditional rules.
func (f FieldDescriptor) DisplayLabel() string {
	if strings.TrimSpace(f.AdminLabel) != "" {
		return f.AdminLabel
	}
	return f.Label
}

// Form is one form definition with its ordered field descriptors.
type Form struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Fields []FieldDescriptor `json:"fields"`
}

// Field returns the descriptor with the given id.
func (f Form) Field(id string) (FieldDescriptor, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

func hasClass(classList, class string) bool {
	for _, candidate := range strings.Fields(classList) {
		if candidate == class {
			return true
		}
	}
	return false
}
