package fields

import (
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/pkg/model"
)

func testEntry(values map[string]any) *model.Entry {
	return &model.Entry{ID: "77", FormID: "1", Values: values}
}

func TestRegistry_RejectsDuplicatesAndUnknownTypes(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(model.FieldTypeText, newSimple); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(model.FieldTypeText, newSimple); err == nil {
		t.Fatal("duplicate registration must fail")
	}

	_, err := r.New(model.FieldDescriptor{ID: "9", Type: "made-up"}, testEntry(nil), Accessors{})
	if err == nil {
		t.Fatal("unknown type must fail")
	}
}

func TestDefaultRegistry_CoversClosedSet(t *testing.T) {
	r := DefaultRegistry()
	for _, tag := range []model.FieldType{
		model.FieldTypeText, model.FieldTypeSelect, model.FieldTypeCheckbox,
		model.FieldTypeName, model.FieldTypeAddress, model.FieldTypeList,
		model.FieldTypeSignature, model.FieldTypeQuiz, model.FieldTypeProduct,
		model.FieldTypeTotal, model.FieldTypePostImage,
	} {
		if !r.Has(tag) {
			t.Fatalf("default registry missing %q", tag)
		}
	}
}

func TestSimple_ValueMemoized(t *testing.T) {
	entry := testEntry(map[string]any{"1": "hello"})
	field := newSimple(model.FieldDescriptor{ID: "1", Type: model.FieldTypeText}, entry, Accessors{})

	if field.HasCache() {
		t.Fatal("cache must start empty")
	}
	if got := field.Value(); got != "hello" {
		t.Fatalf("value = %v", got)
	}
	if !field.HasCache() {
		t.Fatal("first Value() call must populate the cache")
	}

	// A mutation of the underlying entry is invisible until reset.
	entry.Values["1"] = "changed"
	if got := field.Value(); got != "hello" {
		t.Fatalf("cached value = %v, want hello", got)
	}

	field.ResetCache()
	if field.HasCache() {
		t.Fatal("reset must clear the cache")
	}
	if got := field.Value(); got != "changed" {
		t.Fatalf("recomputed value = %v", got)
	}
}

func TestSimple_HTMLEscapesValue(t *testing.T) {
	entry := testEntry(map[string]any{"1": "<b>bold</b>"})
	field := newSimple(model.FieldDescriptor{ID: "1", Type: model.FieldTypeText, Label: "Note"}, entry, Accessors{})

	markup, err := field.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(markup, "<b>") {
		t.Fatalf("value must be escaped: %q", markup)
	}
	if !strings.Contains(markup, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Fatalf("expected escaped value, got %q", markup)
	}
}

func TestChoice_ResolvesOptionText(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "3",
		Type: model.FieldTypeSelect,
		Choices: []model.Choice{
			{Text: "Option 3", Value: "opt3"},
		},
	}
	entry := testEntry(map[string]any{"3": "opt3"})

	field := newChoice(descriptor, entry, Accessors{})
	if got := field.Value(); got != "Option 3" {
		t.Fatalf("display value = %v", got)
	}

	raw, ok := field.(RawValued)
	if !ok {
		t.Fatal("choice must expose its raw value")
	}
	if got := raw.RawValue(); got != "opt3" {
		t.Fatalf("raw value = %v", got)
	}
}

func TestMultiChoice_RendersList(t *testing.T) {
	descriptor := model.FieldDescriptor{ID: "4", Type: model.FieldTypeCheckbox, Label: "Toppings"}
	entry := testEntry(map[string]any{"4": []string{"Cheese", "Olives"}})

	field := newMultiChoice(descriptor, entry, Accessors{})
	markup, err := field.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(markup, "<li>Cheese</li>") || !strings.Contains(markup, "<li>Olives</li>") {
		t.Fatalf("expected list items, got %q", markup)
	}
}

func TestMultiChoice_ReadsSubKeyInputs(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "5",
		Type: model.FieldTypeCheckbox,
		Inputs: []model.SubInput{
			{ID: "5.1", Label: "First"},
			{ID: "5.2", Label: "Second"},
		},
	}
	entry := testEntry(map[string]any{"5.2": "Second Choice"})

	field := newMultiChoice(descriptor, entry, Accessors{})
	items, _ := field.Value().([]string)
	if len(items) != 1 || items[0] != "Second Choice" {
		t.Fatalf("items = %v", items)
	}
	if field.IsEmpty() {
		t.Fatal("recorded sub-key value means not empty")
	}
}

func TestName_ComposesAndResolvesPrefix(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "2",
		Type: model.FieldTypeName,
		Inputs: []model.SubInput{
			{ID: "2.2", Label: "Prefix"},
			{ID: "2.3", Label: "First"},
			{ID: "2.6", Label: "Last"},
		},
		Choices: []model.Choice{{Text: "Mr.", Value: "mr"}},
	}
	entry := testEntry(map[string]any{"2.2": "mr", "2.3": "Jane", "2.6": "Doe"})

	field := newName(descriptor, entry, Accessors{})
	if got := field.Value(); got != "mr Jane Doe" {
		t.Fatalf("value = %v", got)
	}

	named, ok := field.(NameValued)
	if !ok {
		t.Fatal("name must expose a readable variant")
	}
	if got := named.NameValue(); got != "Mr. Jane Doe" {
		t.Fatalf("name value = %v", got)
	}
}

func TestAddress_GroupsLocalityLine(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "6",
		Type: model.FieldTypeAddress,
		Inputs: []model.SubInput{
			{ID: "6.1", Label: "Street Address"},
			{ID: "6.3", Label: "City"},
			{ID: "6.4", Label: "State"},
			{ID: "6.5", Label: "ZIP"},
		},
	}
	entry := testEntry(map[string]any{
		"6.1": "123 Main St",
		"6.3": "Springfield",
		"6.4": "OR",
		"6.5": "97477",
	})

	field := newAddress(descriptor, entry, Accessors{})
	want := "123 Main St\nSpringfield, OR, 97477"
	if got := field.Value(); got != want {
		t.Fatalf("address = %q, want %q", got, want)
	}
}

func TestList_RendersTable(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "8",
		Type: model.FieldTypeList,
		Choices: []model.Choice{
			{Text: "Item"}, {Text: "Qty"},
		},
	}
	entry := testEntry(map[string]any{"8": []any{
		[]any{"Apples", "3"},
		[]any{"Pears", "1"},
	}})

	field := newList(descriptor, entry, Accessors{})
	markup, err := field.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, fragment := range []string{"<th>Item</th>", "<th>Qty</th>", "<td>Apples</td>", "<td>Pears</td>"} {
		if !strings.Contains(markup, fragment) {
			t.Fatalf("missing %q in %q", fragment, markup)
		}
	}
}

func TestHTMLBlock_Sanitized(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:      "9",
		Type:    model.FieldTypeHTML,
		Content: `<p>fine</p><script>alert(1)</script>`,
	}
	field := newHTMLBlock(descriptor, testEntry(nil), Accessors{})

	markup, err := field.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(markup, "<script>") {
		t.Fatalf("script must be stripped, got %q", markup)
	}
	if !strings.Contains(markup, "<p>fine</p>") {
		t.Fatalf("benign markup must survive, got %q", markup)
	}
}

func TestSurvey_MarksSelectedOptions(t *testing.T) {
	descriptor := model.FieldDescriptor{
		ID:   "10",
		Type: model.FieldTypePoll,
		Choices: []model.Choice{
			{Text: "Red", Value: "red"},
			{Text: "Blue", Value: "blue"},
		},
	}
	entry := testEntry(map[string]any{"10": "blue"})

	field := newSurveyStyle(descriptor, entry, Accessors{})
	results := field.(*surveyStyle).Results()
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Selected || !results[1].Selected {
		t.Fatalf("selection flags wrong: %+v", results)
	}
}
