// Package access decides whether a document may be produced for a given
// entry and profile. The decision runs as a left-fold over an ordered list of
// checks; each check receives the prior result and either carries it through,
// denies, or redirects. Redirects are a control path of their own: they fire
// even when an earlier check already denied, and they stop the fold.
package access

import "fmt"

// ErrorKind classifies a denial for the caller's response mapping.
type ErrorKind string

const (
	// KindAccessDenied maps to a 403-equivalent response.
	KindAccessDenied ErrorKind = "access_denied"
	// KindTimeoutExpired maps to an expired-link message.
	KindTimeoutExpired ErrorKind = "timeout_expired"
)

// CodeConditionalLogic is the sub-code attached when the profile's
// conditional rules reject the entry.
const CodeConditionalLogic = "conditional_logic"

// CapabilityElevated marks actors allowed to see private diagnostic detail
// and to view documents for entries they do not own.
const CapabilityElevated = "manage_documents"

// Error is a terminal denial from the chain. Detail is private diagnostic
// text shown only to elevated actors.
type Error struct {
	Kind   ErrorKind
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("access: %s (%s)", e.Kind, e.Code)
	}
	return fmt.Sprintf("access: %s", e.Kind)
}

// Message returns user-facing text. Non-elevated callers always receive the
// generic public wording for the kind.
func (e *Error) Message(elevated bool) string {
	if elevated && e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindTimeoutExpired:
		return "This link has expired."
	default:
		return "You do not have access to this document."
	}
}

// Redirect instructs the caller to send the client to an authentication step
// instead of rendering or erroring.
type Redirect struct {
	Target string
}

// Result is the outcome threaded through the chain: pass, denial, or
// redirect. The zero value is a pass.
type Result struct {
	err      *Error
	redirect *Redirect
}

// Passed constructs a passing result.
func Passed() Result { return Result{} }

// Deny constructs a denial result.
func Deny(kind ErrorKind, code, detail string) Result {
	return Result{err: &Error{Kind: kind, Code: code, Detail: detail}}
}

// RedirectTo constructs a redirect result.
func RedirectTo(target string) Result {
	return Result{redirect: &Redirect{Target: target}}
}

// OK reports whether the result carries neither denial nor redirect.
func (r Result) OK() bool { return r.err == nil && r.redirect == nil }

// Err returns the denial, if any.
func (r Result) Err() *Error { return r.err }

// Redirect returns the redirect directive, if any.
func (r Result) Redirect() *Redirect { return r.redirect }
