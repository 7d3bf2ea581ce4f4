package fields

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docgen/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildFormData_AliasesStayInSync(t *testing.T) {
	form := model.Form{
		ID: "1",
		Fields: []model.FieldDescriptor{
			{ID: "3", Type: model.FieldTypeSelect, Label: "Drop Down"},
		},
	}
	entry := testEntry(map[string]any{"3": "Option 3 Value"})

	data := BuildFormData(form, entry, Accessors{}, DefaultRegistry(), discardLogger())

	want := "Option 3 Value"
	for _, key := range []string{"3", "3.Drop Down", "Drop Down"} {
		value, ok := data.Lookup(key)
		if !ok {
			t.Fatalf("alias %q missing", key)
		}
		if value != want {
			t.Fatalf("alias %q = %v, want %v", key, value, want)
		}
	}
}

func TestBuildFormData_NameAndValueVariants(t *testing.T) {
	form := model.Form{
		ID: "1",
		Fields: []model.FieldDescriptor{
			{
				ID:    "2",
				Type:  model.FieldTypeName,
				Label: "Name",
				Inputs: []model.SubInput{
					{ID: "2.2", Label: "Prefix"},
					{ID: "2.3", Label: "First"},
				},
				Choices: []model.Choice{{Text: "Dr.", Value: "dr"}},
			},
			{
				ID:      "3",
				Type:    model.FieldTypeSelect,
				Label:   "Color",
				Choices: []model.Choice{{Text: "Deep Red", Value: "red"}},
			},
		},
	}
	entry := testEntry(map[string]any{"2.2": "dr", "2.3": "Sam", "3": "red"})

	data := BuildFormData(form, entry, Accessors{}, DefaultRegistry(), discardLogger())

	if got := data["2_name"]; got != "Dr. Sam" {
		t.Fatalf("_name variant = %v", got)
	}
	if got := data["Name_name"]; got != "Dr. Sam" {
		t.Fatalf("_name label alias = %v", got)
	}
	if got := data["3"]; got != "Deep Red" {
		t.Fatalf("choice display value = %v", got)
	}
	if got := data["3_value"]; got != "red" {
		t.Fatalf("_value variant = %v", got)
	}
	if got := data["Color_value"]; got != "red" {
		t.Fatalf("_value label alias = %v", got)
	}
}

func TestBuildFormData_SubInputKeys(t *testing.T) {
	form := model.Form{
		ID: "1",
		Fields: []model.FieldDescriptor{
			{
				ID:    "2",
				Type:  model.FieldTypeName,
				Label: "Name",
				Inputs: []model.SubInput{
					{ID: "2.2", Label: "Prefix"},
					{ID: "2.3", Label: "First"},
					{ID: "2.4", Label: "Middle", IsHidden: true},
				},
				Choices: []model.Choice{{Text: "Dr.", Value: "dr"}},
			},
		},
	}
	entry := testEntry(map[string]any{"2.2": "dr", "2.3": "Sam", "2.4": "ignored"})

	data := BuildFormData(form, entry, Accessors{}, DefaultRegistry(), discardLogger())

	if got := data["2.2"]; got != "Dr." {
		t.Fatalf("dotted key = %v, want display text", got)
	}
	if got := data["2.2_value"]; got != "dr" {
		t.Fatalf("dotted _value variant = %v", got)
	}
	if got := data["Name (Prefix)"]; got != "Dr." {
		t.Fatalf("label alias = %v", got)
	}
	if got := data["2.3"]; got != "Sam" {
		t.Fatalf("plain sub-input = %v", got)
	}
	if _, ok := data["2.4"]; ok {
		t.Fatal("hidden sub-inputs must not appear in form_data")
	}
}

func TestBuildFormData_SkipsPresentationFields(t *testing.T) {
	form := model.Form{
		ID: "1",
		Fields: []model.FieldDescriptor{
			{ID: "1", Type: model.FieldTypeHTML, Label: "Banner", Content: "<p>hi</p>"},
			{ID: "2", Type: model.FieldTypePage},
			{ID: "3", Type: model.FieldTypeText, Label: "Note"},
		},
	}
	entry := testEntry(map[string]any{"3": "kept"})

	data := BuildFormData(form, entry, Accessors{}, DefaultRegistry(), discardLogger())

	if _, ok := data.Lookup("Banner"); ok {
		t.Fatal("presentation fields must not appear in form_data")
	}
	if got, _ := data.Lookup("Note"); got != "kept" {
		t.Fatalf("note = %v", got)
	}
}

func TestBuildFormData_MetadataKeys(t *testing.T) {
	form := model.Form{ID: "12", Title: "Order Form"}
	entry := testEntry(nil)

	data := BuildFormData(form, entry, Accessors{}, DefaultRegistry(), discardLogger())

	got := map[string]any{
		"_form_title": data["_form_title"],
		"_form_id":    data["_form_id"],
		"_entry_id":   data["_entry_id"],
	}
	want := map[string]any{
		"_form_title": "Order Form",
		"_form_id":    "12",
		"_entry_id":   "77",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}
