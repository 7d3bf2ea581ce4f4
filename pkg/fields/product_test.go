package fields

import (
	"testing"

	"github.com/goliatone/go-docgen/pkg/model"
)

func productForm() model.Form {
	return model.Form{
		ID: "1",
		Fields: []model.FieldDescriptor{
			{ID: "20", Type: model.FieldTypeProduct, Label: "T-Shirt"},
			{ID: "21", Type: model.FieldTypeOption, Label: "Print", ProductField: "20"},
			{ID: "22", Type: model.FieldTypeQuantity, Label: "Qty", ProductField: "20"},
			{ID: "23", Type: model.FieldTypeProduct, Label: "Sticker Pack"},
			{ID: "24", Type: model.FieldTypeShipping, Label: "Shipping"},
			{ID: "25", Type: model.FieldTypeTotal, Label: "Total"},
		},
	}
}

func productEntry() *model.Entry {
	return testEntry(map[string]any{
		"20.1": "T-Shirt",
		"20.2": "$20.00",
		"21":   "Front Print|5",
		"22":   "2",
		"23":   "Sticker Pack|3.50",
		"24":   "Express|10",
	})
}

func TestAggregate_Totals(t *testing.T) {
	agg := NewAggregate(productForm(), productEntry(), Accessors{})

	lines := agg.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 product lines, got %d: %+v", len(lines), lines)
	}

	// (20 + 5 option) * 2 = 50, plus sticker pack 3.50.
	if got := agg.Subtotal(); got != 53.5 {
		t.Fatalf("subtotal = %v", got)
	}
	if got := agg.ShippingCost().Price; got != 10 {
		t.Fatalf("shipping = %v", got)
	}
	if got := agg.Total(); got != 63.5 {
		t.Fatalf("total = %v", got)
	}
}

func TestAggregate_SharedAcrossVariants(t *testing.T) {
	form := productForm()
	entry := productEntry()
	acc := Accessors{Form: form}
	agg := NewAggregate(form, entry, acc)

	totalField := newTotal(form.Fields[5], entry, acc)
	participant, ok := totalField.(ProductParticipant)
	if !ok {
		t.Fatal("total must participate in aggregation")
	}
	participant.SetAggregate(agg)
	if participant.Aggregate() != agg {
		t.Fatal("aggregate getter must return the injected instance")
	}

	if got := totalField.Value(); got != "$63.50" {
		t.Fatalf("total value = %v", got)
	}
}

func TestProduct_RowValue(t *testing.T) {
	form := productForm()
	entry := productEntry()
	acc := Accessors{Form: form}
	agg := NewAggregate(form, entry, acc)

	field := newProduct(form.Fields[0], entry, acc)
	field.(ProductParticipant).SetAggregate(agg)

	value, _ := field.Value().(map[string]any)
	if value["name"] != "T-Shirt" {
		t.Fatalf("name = %v", value["name"])
	}
	if value["subtotal"] != "$50.00" {
		t.Fatalf("subtotal = %v", value["subtotal"])
	}
}

func TestShipping_Value(t *testing.T) {
	form := productForm()
	entry := productEntry()
	acc := Accessors{Form: form}

	field := newShipping(form.Fields[4], entry, acc)
	if got := field.Value(); got != "Express ($10.00)" {
		t.Fatalf("shipping = %v", got)
	}
}

func TestSplitPriceValue(t *testing.T) {
	cases := []struct {
		in    string
		label string
		price float64
	}{
		{"Front Print|5", "Front Print", 5},
		{"Sticker Pack|3.50", "Sticker Pack", 3.5},
		{"$12.00", "", 12},
		{"Just a label", "Just a label", 0},
		{"", "", 0},
	}
	for _, tc := range cases {
		label, price := splitPriceValue(tc.in)
		if label != tc.label || price != tc.price {
			t.Fatalf("splitPriceValue(%q) = %q/%v, want %q/%v", tc.in, label, price, tc.label, tc.price)
		}
	}
}
