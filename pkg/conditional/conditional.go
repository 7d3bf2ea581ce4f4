// Package conditional evaluates a profile's conditional-logic rule set
// against the values recorded on an entry. The rules decide whether a
// document is produced at all, so evaluation is forgiving: unknown fields
// compare as empty strings and malformed numbers fall back to string
// comparison.
package conditional

import (
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// Match reports whether the rule set resolves to "produce the document".
// A nil or empty rule set always matches. The action type inverts the rule
// outcome: show + match, or hide + no-match, both mean produce.
func Match(logic *model.ConditionalLogic, entry *model.Entry, form model.Form) bool {
	if logic == nil || len(logic.Rules) == 0 {
		return true
	}

	matched := evaluateRules(logic, entry, form)
	if logic.Action == model.ActionHide {
		return !matched
	}
	return matched
}

func evaluateRules(logic *model.ConditionalLogic, entry *model.Entry, form model.Form) bool {
	all := logic.Logic != model.LogicAny

	for _, rule := range logic.Rules {
		ok := evaluateRule(rule, entry, form)
		if all && !ok {
			return false
		}
		if !all && ok {
			return true
		}
	}
	return all
}

func evaluateRule(rule model.Rule, entry *model.Entry, form model.Form) bool {
	value := resolveRuleValue(rule.FieldID, entry, form)

	switch rule.Operator {
	case model.OperatorIs, "":
		return equalsLoose(value, rule.Value)
	case model.OperatorIsNot:
		return !equalsLoose(value, rule.Value)
	case model.OperatorGreater:
		left, right, ok := bothNumbers(value, rule.Value)
		return ok && left > right
	case model.OperatorLess:
		left, right, ok := bothNumbers(value, rule.Value)
		return ok && left < right
	case model.OperatorContains:
		return strings.Contains(fold(value), fold(rule.Value))
	case model.OperatorStartsWith:
		return strings.HasPrefix(fold(value), fold(rule.Value))
	case model.OperatorEndsWith:
		return strings.HasSuffix(fold(value), fold(rule.Value))
	default:
		return false
	}
}

// resolveRuleValue reads the rule's target value from the entry. Choice
// fields record option values, and multi-value fields match when any recorded
// item satisfies an equality rule, so the raw value is kept as recorded.
func resolveRuleValue(fieldID string, entry *model.Entry, form model.Form) string {
	if raw, ok := entry.Value(fieldID); ok {
		return model.Stringify(raw)
	}

	// Composite fields have no value under the bare id; join their inputs so
	// contains-style rules can still see the recorded text.
	if field, ok := form.Field(fieldID); ok && len(field.Inputs) > 0 {
		parts := make([]string, 0, len(field.Inputs))
		for _, input := range field.Inputs {
			if part := entry.String(input.ID); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func equalsLoose(value, target string) bool {
	if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
		return true
	}
	// Multi-value entries are stringified with ", " separators; an equality
	// rule matches when any single item equals the target.
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

func bothNumbers(value, target string) (float64, float64, bool) {
	left, okLeft := model.ToNumber(value)
	right, okRight := model.ToNumber(target)
	return left, right, okLeft && okRight
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
