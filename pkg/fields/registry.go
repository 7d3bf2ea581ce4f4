package fields

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Constructor builds one field variant for a descriptor/entry pair.
type Constructor func(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field

// Registry maps field type tags to variant constructors. The default set is
// closed; callers may register additional tags for custom form plugins.
type Registry struct {
	mu           sync.RWMutex
	constructors map[model.FieldType]Constructor
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[model.FieldType]Constructor),
	}
}

// Register adds a constructor for a type tag. Duplicate tags return an error.
func (r *Registry) Register(tag model.FieldType, constructor Constructor) error {
	if tag == "" {
		return fmt.Errorf("fields: type tag is required")
	}
	if constructor == nil {
		return fmt.Errorf("fields: constructor for %q is nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[tag]; exists {
		return fmt.Errorf("fields: type %q already registered", tag)
	}
	r.constructors[tag] = constructor
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag model.FieldType, constructor Constructor) {
	if err := r.Register(tag, constructor); err != nil {
		panic(err)
	}
}

// New instantiates the variant for the descriptor's type tag.
func (r *Registry) New(field model.FieldDescriptor, entry *model.Entry, acc Accessors) (Field, error) {
	r.mu.RLock()
	constructor, ok := r.constructors[field.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("fields: no variant registered for type %q (field %s)", field.Type, field.ID)
	}
	return constructor(field, entry, acc), nil
}

// Has reports whether a type tag is registered.
func (r *Registry) Has(tag model.FieldType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[tag]
	return ok
}

// Types returns the sorted registered type tags.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]model.FieldType, 0, len(r.constructors))
	for tag := range r.constructors {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// DefaultRegistry returns a registry populated with the built-in variants.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, tag := range []model.FieldType{
		model.FieldTypeText,
		model.FieldTypePhone,
		model.FieldTypeHidden,
		model.FieldTypePostTitle,
		model.FieldTypePostExcerpt,
		model.FieldTypePostTags,
		model.FieldTypePostCustom,
	} {
		r.MustRegister(tag, newSimple)
	}

	r.MustRegister(model.FieldTypeTextarea, newTextarea)
	r.MustRegister(model.FieldTypeNumber, newNumber)
	r.MustRegister(model.FieldTypeDate, newDate)
	r.MustRegister(model.FieldTypeTime, newSimple)
	r.MustRegister(model.FieldTypeEmail, newEmail)
	r.MustRegister(model.FieldTypeWebsite, newWebsite)
	r.MustRegister(model.FieldTypeSection, newSection)
	r.MustRegister(model.FieldTypeHTML, newHTMLBlock)
	r.MustRegister(model.FieldTypePage, newPageBreak)

	r.MustRegister(model.FieldTypeSelect, newChoice)
	r.MustRegister(model.FieldTypeRadio, newChoice)
	r.MustRegister(model.FieldTypePostCategory, newChoice)
	r.MustRegister(model.FieldTypeCheckbox, newMultiChoice)
	r.MustRegister(model.FieldTypeMultiSelect, newMultiChoice)

	r.MustRegister(model.FieldTypeName, newName)
	r.MustRegister(model.FieldTypeAddress, newAddress)
	r.MustRegister(model.FieldTypeList, newList)
	r.MustRegister(model.FieldTypeSignature, newSignature)
	r.MustRegister(model.FieldTypePostImage, newPostImage)

	r.MustRegister(model.FieldTypeQuiz, newSurveyStyle)
	r.MustRegister(model.FieldTypePoll, newSurveyStyle)
	r.MustRegister(model.FieldTypeSurvey, newSurveyStyle)

	r.MustRegister(model.FieldTypeProduct, newProduct)
	r.MustRegister(model.FieldTypeOption, newProductOption)
	r.MustRegister(model.FieldTypeQuantity, newQuantity)
	r.MustRegister(model.FieldTypeShipping, newShipping)
	r.MustRegister(model.FieldTypeTotal, newTotal)

	return r
}
