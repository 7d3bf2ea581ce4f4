package fields

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Aggregate computes totals across all product-family fields of one
// document. One instance is shared by every product variant in a render; the
// orchestrator injects it after construction through SetAggregate, so the
// relationship is explicit composition rather than inheritance.
type Aggregate struct {
	form  model.Form
	entry *model.Entry
	acc   Accessors

	computed bool
	lines    []ProductLine
	shipping ShippingLine
}

// ProductLine is one product row with its option adjustments applied.
type ProductLine struct {
	FieldID  string
	Name     string
	Price    float64
	Quantity float64
	Options  []OptionLine
}

// OptionLine is one option adjustment attached to a product.
type OptionLine struct {
	FieldLabel string
	Text       string
	Price      float64
}

// ShippingLine is the selected shipping method and cost.
type ShippingLine struct {
	FieldID string
	Name    string
	Price   float64
}

// NewAggregate builds the shared aggregator for one render pass.
func NewAggregate(form model.Form, entry *model.Entry, acc Accessors) *Aggregate {
	return &Aggregate{form: form, entry: entry, acc: acc}
}

// LineTotal is the option-adjusted row total.
func (l ProductLine) LineTotal() float64 {
	unit := l.Price
	for _, option := range l.Options {
		unit += option.Price
	}
	return unit * l.Quantity
}

// Lines returns every recorded product row in form order.
func (a *Aggregate) Lines() []ProductLine {
	a.compute()
	return a.lines
}

// ShippingCost returns the selected shipping line.
func (a *Aggregate) ShippingCost() ShippingLine {
	a.compute()
	return a.shipping
}

// Subtotal sums the option-adjusted product rows, excluding shipping.
func (a *Aggregate) Subtotal() float64 {
	a.compute()
	total := 0.0
	for _, line := range a.lines {
		total += line.LineTotal()
	}
	return total
}

// Total is subtotal plus shipping.
func (a *Aggregate) Total() float64 {
	return a.Subtotal() + a.ShippingCost().Price
}

// FormatPrice renders an amount with the configured currency symbol.
func (a *Aggregate) FormatPrice(amount float64) string {
	return fmt.Sprintf("%s%.2f", a.acc.currency(), amount)
}

func (a *Aggregate) compute() {
	if a.computed {
		return
	}
	a.computed = true

	for _, field := range a.form.Fields {
		switch field.Type {
		case model.FieldTypeProduct:
			if line, ok := a.productLine(field); ok {
				a.lines = append(a.lines, line)
			}
		case model.FieldTypeShipping:
			name, price := splitPriceValue(a.entry.String(field.ID))
			if name != "" || price != 0 {
				a.shipping = ShippingLine{FieldID: field.ID, Name: name, Price: price}
			}
		}
	}
}

// productLine assembles one product row. Single products record name, price,
// and quantity as "id.1"/"id.2"/"id.3" sub-values; choice-driven products
// record "Name|Price" under the bare id. Linked option and quantity fields
// override the row's adjustments.
func (a *Aggregate) productLine(field model.FieldDescriptor) (ProductLine, bool) {
	line := ProductLine{FieldID: field.ID, Name: field.Label, Quantity: 1}
	recorded := false

	if name := a.entry.String(field.ID + ".1"); name != "" {
		line.Name = name
		recorded = true
	}
	if price := a.entry.String(field.ID + ".2"); price != "" {
		line.Price, _ = model.ToNumber(price)
		recorded = true
	}
	if quantity := a.entry.String(field.ID + ".3"); quantity != "" {
		line.Quantity, _ = model.ToNumber(quantity)
	}

	if !recorded {
		raw := a.entry.String(field.ID)
		if raw == "" {
			return ProductLine{}, false
		}
		name, price := splitPriceValue(raw)
		if name != "" {
			line.Name = name
		}
		line.Price = price
	}

	for _, candidate := range a.form.Fields {
		if candidate.ProductField != field.ID {
			continue
		}
		switch candidate.Type {
		case model.FieldTypeOption:
			line.Options = append(line.Options, a.optionLines(candidate)...)
		case model.FieldTypeQuantity:
			if quantity := a.entry.String(candidate.ID); quantity != "" {
				line.Quantity, _ = model.ToNumber(quantity)
			}
		}
	}

	if line.Quantity == 0 {
		return ProductLine{}, false
	}
	return line, true
}

func (a *Aggregate) optionLines(field model.FieldDescriptor) []OptionLine {
	var raw []string
	if value, ok := a.entry.Value(field.ID); ok {
		switch v := value.(type) {
		case []string:
			raw = v
		case []any:
			for _, item := range v {
				raw = append(raw, model.Stringify(item))
			}
		default:
			raw = []string{model.Stringify(value)}
		}
	}
	for _, input := range field.Inputs {
		if value := a.entry.String(input.ID); value != "" {
			raw = append(raw, value)
		}
	}

	out := make([]OptionLine, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item) == "" {
			continue
		}
		text, price := splitPriceValue(item)
		out = append(out, OptionLine{FieldLabel: field.Label, Text: text, Price: price})
	}
	return out
}

// splitPriceValue parses the "Label|Price" convention used by product-family
// recorded values. A missing delimiter means the whole value is the label.
func splitPriceValue(raw string) (string, float64) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0
	}
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) == 1 {
		if price, ok := model.ToNumber(parts[0]); ok {
			return "", price
		}
		return parts[0], 0
	}
	price, _ := model.ToNumber(parts[1])
	return strings.TrimSpace(parts[0]), price
}

// ProductParticipant is implemented by variants that consume the shared
// aggregator.
type ProductParticipant interface {
	SetAggregate(*Aggregate)
	Aggregate() *Aggregate
}

// productBase adds the aggregator reference to the common field base.
type productBase struct {
	base
	agg *Aggregate
}

func (f *productBase) SetAggregate(agg *Aggregate) { f.agg = agg }

func (f *productBase) Aggregate() *Aggregate { return f.agg }

// aggregate returns the injected aggregator, building a private one from the
// accessors when the orchestrator did not share an instance.
func (f *productBase) aggregate() *Aggregate {
	if f.agg == nil {
		f.agg = NewAggregate(f.acc.Form, f.entry, f.acc)
	}
	return f.agg
}

// product renders one product row: name, unit price, quantity, row total.
type product struct {
	productBase
}

func newProduct(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &product{productBase{base: newBase(field, entry, acc)}}
}

func (f *product) line() (ProductLine, bool) {
	for _, line := range f.aggregate().Lines() {
		if line.FieldID == f.field.ID {
			return line, true
		}
	}
	return ProductLine{}, false
}

func (f *product) Value() any {
	return f.memo(func() any {
		line, ok := f.line()
		if !ok {
			return map[string]any(nil)
		}
		return map[string]any{
			"name":     line.Name,
			"price":    f.aggregate().FormatPrice(line.Price),
			"quantity": line.Quantity,
			"subtotal": f.aggregate().FormatPrice(line.LineTotal()),
		}
	})
}

func (f *product) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *product) HTML() (string, error) {
	line, ok := f.line()
	if !ok {
		return f.wrap(""), nil
	}
	agg := f.aggregate()
	markup := fmt.Sprintf("%s &times; %v &mdash; %s",
		escape(line.Name), line.Quantity, html.EscapeString(agg.FormatPrice(line.LineTotal())))
	return f.wrap(markup), nil
}

// productOption renders the option adjustments recorded for its product.
type productOption struct {
	productBase
}

func newProductOption(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &productOption{productBase{base: newBase(field, entry, acc)}}
}

func (f *productOption) Value() any {
	return f.memo(func() any {
		options := f.aggregate().optionLines(f.field)
		out := make([]string, 0, len(options))
		for _, option := range options {
			out = append(out, option.Text)
		}
		return out
	})
}

func (f *productOption) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *productOption) HTML() (string, error) {
	items, _ := f.Value().([]string)
	return f.wrap(escape(strings.Join(items, ", "))), nil
}

// quantity renders the recorded quantity for its product.
type quantity struct {
	productBase
}

func newQuantity(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &quantity{productBase{base: newBase(field, entry, acc)}}
}

func (f *quantity) Value() any {
	return f.memo(func() any {
		return f.entry.String(f.field.ID)
	})
}

func (f *quantity) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *quantity) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// shipping renders the selected method and cost.
type shipping struct {
	productBase
}

func newShipping(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &shipping{productBase{base: newBase(field, entry, acc)}}
}

func (f *shipping) Value() any {
	return f.memo(func() any {
		line := f.aggregate().ShippingCost()
		if line.Name == "" && line.Price == 0 {
			return ""
		}
		if line.Name == "" {
			return f.aggregate().FormatPrice(line.Price)
		}
		return fmt.Sprintf("%s (%s)", line.Name, f.aggregate().FormatPrice(line.Price))
	})
}

func (f *shipping) IsEmpty() bool { return isEmptyValue(f.Value()) }

func (f *shipping) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}

// total renders the aggregate document total.
type total struct {
	productBase
}

func newTotal(field model.FieldDescriptor, entry *model.Entry, acc Accessors) Field {
	return &total{productBase{base: newBase(field, entry, acc)}}
}

func (f *total) Value() any {
	return f.memo(func() any {
		return f.aggregate().FormatPrice(f.aggregate().Total())
	})
}

func (f *total) IsEmpty() bool { return false }

func (f *total) HTML() (string, error) {
	return f.wrap(escape(model.Stringify(f.Value()))), nil
}
