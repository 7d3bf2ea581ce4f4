package conditional

import (
	"testing"

	"github.com/goliatone/go-docgen/pkg/model"
)

func entryWith(values map[string]any) *model.Entry {
	return &model.Entry{ID: "1", FormID: "1", Values: values}
}

func TestMatch_EmptyRuleSetAlwaysProduces(t *testing.T) {
	if !Match(nil, entryWith(nil), model.Form{}) {
		t.Fatal("nil logic must match")
	}
	if !Match(&model.ConditionalLogic{Action: model.ActionShow}, entryWith(nil), model.Form{}) {
		t.Fatal("empty rule set must match")
	}
}

func TestMatch_Operators(t *testing.T) {
	entry := entryWith(map[string]any{
		"1": "Option 3 Value",
		"2": "42",
		"3": []string{"First Choice", "Third Choice"},
	})

	cases := []struct {
		name   string
		rule   model.Rule
		expect bool
	}{
		{"is match", model.Rule{FieldID: "1", Operator: model.OperatorIs, Value: "Option 3 Value"}, true},
		{"is case folded", model.Rule{FieldID: "1", Operator: model.OperatorIs, Value: "option 3 value"}, true},
		{"is miss", model.Rule{FieldID: "1", Operator: model.OperatorIs, Value: "Other"}, false},
		{"isnot", model.Rule{FieldID: "1", Operator: model.OperatorIsNot, Value: "Other"}, true},
		{"greater", model.Rule{FieldID: "2", Operator: model.OperatorGreater, Value: "40"}, true},
		{"greater non numeric", model.Rule{FieldID: "1", Operator: model.OperatorGreater, Value: "40"}, false},
		{"less", model.Rule{FieldID: "2", Operator: model.OperatorLess, Value: "40"}, false},
		{"contains", model.Rule{FieldID: "1", Operator: model.OperatorContains, Value: "3 val"}, true},
		{"starts_with", model.Rule{FieldID: "1", Operator: model.OperatorStartsWith, Value: "Option"}, true},
		{"ends_with", model.Rule{FieldID: "1", Operator: model.OperatorEndsWith, Value: "Value"}, true},
		{"multi value is", model.Rule{FieldID: "3", Operator: model.OperatorIs, Value: "Third Choice"}, true},
		{"missing field", model.Rule{FieldID: "99", Operator: model.OperatorIs, Value: "x"}, false},
		{"missing field isnot", model.Rule{FieldID: "99", Operator: model.OperatorIsNot, Value: "x"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logic := &model.ConditionalLogic{
				Action: model.ActionShow,
				Logic:  model.LogicAll,
				Rules:  []model.Rule{tc.rule},
			}
			if got := Match(logic, entry, model.Form{}); got != tc.expect {
				t.Fatalf("Match = %v, want %v", got, tc.expect)
			}
		})
	}
}

func TestMatch_HideInverts(t *testing.T) {
	entry := entryWith(map[string]any{"1": "yes"})
	logic := &model.ConditionalLogic{
		Action: model.ActionHide,
		Logic:  model.LogicAll,
		Rules:  []model.Rule{{FieldID: "1", Operator: model.OperatorIs, Value: "yes"}},
	}

	if Match(logic, entry, model.Form{}) {
		t.Fatal("hide + matching rules must not produce the document")
	}

	logic.Rules[0].Value = "no"
	if !Match(logic, entry, model.Form{}) {
		t.Fatal("hide + non-matching rules must produce the document")
	}
}

func TestMatch_AnyVersusAll(t *testing.T) {
	entry := entryWith(map[string]any{"1": "a", "2": "b"})
	rules := []model.Rule{
		{FieldID: "1", Operator: model.OperatorIs, Value: "a"},
		{FieldID: "2", Operator: model.OperatorIs, Value: "nope"},
	}

	all := &model.ConditionalLogic{Action: model.ActionShow, Logic: model.LogicAll, Rules: rules}
	if Match(all, entry, model.Form{}) {
		t.Fatal("all-logic with one failing rule must not match")
	}

	any := &model.ConditionalLogic{Action: model.ActionShow, Logic: model.LogicAny, Rules: rules}
	if !Match(any, entry, model.Form{}) {
		t.Fatal("any-logic with one passing rule must match")
	}
}

func TestMatch_CompositeFieldJoinsInputs(t *testing.T) {
	form := model.Form{Fields: []model.FieldDescriptor{{
		ID:   "2",
		Type: model.FieldTypeName,
		Inputs: []model.SubInput{
			{ID: "2.2", Label: "Prefix"},
			{ID: "2.3", Label: "First"},
			{ID: "2.6", Label: "Last"},
		},
	}}}
	entry := entryWith(map[string]any{"2.3": "Jane", "2.6": "Doe"})

	logic := &model.ConditionalLogic{
		Action: model.ActionShow,
		Rules:  []model.Rule{{FieldID: "2", Operator: model.OperatorContains, Value: "doe"}},
	}
	if !Match(logic, entry, form) {
		t.Fatal("composite rule should see joined input values")
	}
}
