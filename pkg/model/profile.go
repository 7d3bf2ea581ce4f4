package model

import "time"

// DefaultAccessWindow bounds anonymous access to freshly submitted entries.
const DefaultAccessWindow = 30 * time.Minute

// RuleOperator compares one entry value against a conditional rule target.
type RuleOperator string

const (
	OperatorIs         RuleOperator = "is"
	OperatorIsNot      RuleOperator = "isnot"
	OperatorGreater    RuleOperator = ">"
	OperatorLess       RuleOperator = "<"
	OperatorContains   RuleOperator = "contains"
	OperatorStartsWith RuleOperator = "starts_with"
	OperatorEndsWith   RuleOperator = "ends_with"
)

// Rule is a single conditional-logic comparison against a field value.
type Rule struct {
	FieldID  string       `json:"fieldId"`
	Operator RuleOperator `json:"operator"`
	Value    string       `json:"value"`
}

// RuleAction decides whether a matching rule set shows or hides the document.
type RuleAction string

const (
	ActionShow RuleAction = "show"
	ActionHide RuleAction = "hide"
)

// RuleLogic selects whether all rules or any rule must match.
type RuleLogic string

const (
	LogicAll RuleLogic = "all"
	LogicAny RuleLogic = "any"
)

// ConditionalLogic is the rule set a profile evaluates against entry values
// before a document may be produced.
type ConditionalLogic struct {
	Action RuleAction `json:"actionType"`
	Logic  RuleLogic  `json:"logicType"`
	Rules  []Rule     `json:"rules"`
}

// Profile is one named document-generation configuration attached to a form.
// The settings collaborator owns it; the pipeline treats it as an immutable
// value for the duration of a request.
type Profile struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Active        bool              `json:"active"`
	Template      string            `json:"template"`
	Filename      string            `json:"filename"`
	Conditional   *ConditionalLogic `json:"conditionalLogic,omitempty"`
	Notifications []string          `json:"notification,omitempty"`
	// Privileges lists capabilities that may view the document besides the
	// entry owner.
	Privileges    []string `json:"security,omitempty"`
	PublicAccess  bool     `json:"public_access,omitempty"`
	RestrictOwner bool     `json:"restrict_owner,omitempty"`
	// AccessWindow overrides DefaultAccessWindow for anonymous access; zero
	// means the default applies.
	AccessWindow time.Duration `json:"access_window,omitempty"`
	// Theme optionally names a go-theme bundle whose tokens are exposed to
	// the document template.
	Theme string `json:"theme,omitempty"`
	// Settings carries template-specific configuration values validated
	// against the template's configuration schema.
	Settings map[string]any `json:"settings,omitempty"`
}

// Window returns the effective anonymous-access window.
func (p Profile) Window() time.Duration {
	if p.AccessWindow > 0 {
		return p.AccessWindow
	}
	return DefaultAccessWindow
}

// Actor identifies an authenticated caller.
type Actor struct {
	ID           string
	Capabilities []string
}

// Can reports whether the actor holds the named capability.
func (a *Actor) Can(capability string) bool {
	if a == nil {
		return false
	}
	for _, held := range a.Capabilities {
		if held == capability {
			return true
		}
	}
	return false
}

// Caller captures the identity signals of one document request: the
// authenticated actor, if any, and the originating address used to match
// anonymous callers against the entry owner.
type Caller struct {
	Actor    *Actor
	SourceIP string
}

// Authenticated reports whether the caller carries an actor identity.
func (c Caller) Authenticated() bool {
	return c.Actor != nil && c.Actor.ID != ""
}
