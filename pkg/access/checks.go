package access

import (
	"fmt"
	"time"

	"github.com/goliatone/go-docgen/pkg/conditional"
	"github.com/goliatone/go-docgen/pkg/model"
)

// Input bundles the request state every check evaluates against. Now is the
// evaluation timestamp so timeout checks stay deterministic under test.
type Input struct {
	Profile model.Profile
	Form    model.Form
	Entry   *model.Entry
	Caller  model.Caller
	Now     time.Time
}

// CheckFunc receives the prior result and the request input and returns the
// next result in the fold.
type CheckFunc func(prior Result, in Input) Result

// Check is one named rule in the ordered chain. Redirecting checks run even
// when an earlier check already produced an error, and a redirect they emit
// interrupts the fold immediately.
type Check struct {
	Name        string
	Priority    int
	Redirecting bool
	Run         CheckFunc
}

// Canonical check names, also used by the public-access bypass set.
const (
	CheckPublicAccess     = "public_access"
	CheckActive           = "active"
	CheckConditional      = "conditional"
	CheckOwnerRestriction = "owner_restriction"
	CheckLoggedOutTimeout = "logged_out_timeout"
	CheckAuthLoggedOut    = "auth_logged_out_user"
	CheckUserCapability   = "user_capability"
)

// SigninTarget is the redirect destination for callers that must
// authenticate before viewing a document.
const SigninTarget = "signin"

// DefaultChecks returns the built-in chain in priority order.
func DefaultChecks() []Check {
	return []Check{
		{Name: CheckPublicAccess, Priority: 10, Run: publicAccess},
		{Name: CheckActive, Priority: 20, Run: active},
		{Name: CheckConditional, Priority: 30, Run: conditionalLogic},
		{Name: CheckOwnerRestriction, Priority: 40, Redirecting: true, Run: ownerRestriction},
		{Name: CheckLoggedOutTimeout, Priority: 50, Run: loggedOutTimeout},
		{Name: CheckAuthLoggedOut, Priority: 60, Redirecting: true, Run: authLoggedOutUser},
		{Name: CheckUserCapability, Priority: 70, Run: userCapability},
	}
}

// publicBypass lists the checks a publicly accessible profile removes from
// the evaluation entirely. Removal, not pass-through: the checks are never
// invoked for that evaluation.
var publicBypass = map[string]struct{}{
	CheckOwnerRestriction: {},
	CheckLoggedOutTimeout: {},
	CheckAuthLoggedOut:    {},
	CheckUserCapability:   {},
}

// publicAccess carries the prior result. The bypass itself is applied by the
// chain when it assembles the per-evaluation check list, since a check cannot
// remove its successors from inside the fold.
func publicAccess(prior Result, _ Input) Result {
	return prior
}

func active(prior Result, in Input) Result {
	if in.Profile.Active {
		return prior
	}
	return Deny(KindAccessDenied, "", fmt.Sprintf("document profile %q is inactive", in.Profile.ID))
}

func conditionalLogic(prior Result, in Input) Result {
	if conditional.Match(in.Profile.Conditional, in.Entry, in.Form) {
		return prior
	}
	return Deny(KindAccessDenied, CodeConditionalLogic,
		fmt.Sprintf("conditional logic on profile %q rejected entry %s", in.Profile.ID, in.Entry.ID))
}

// ownerRestriction redirects anonymous callers to authentication when the
// profile limits viewing to the entry owner.
func ownerRestriction(prior Result, in Input) Result {
	if !in.Profile.RestrictOwner {
		return prior
	}
	if in.Caller.Authenticated() {
		return prior
	}
	return RedirectTo(SigninTarget)
}

// loggedOutTimeout expires anonymous access once the profile window has
// elapsed since the entry was created. It only applies to the entry owner's
// own signal: a mismatched source address is the next check's concern.
func loggedOutTimeout(prior Result, in Input) Result {
	if in.Caller.Authenticated() {
		return prior
	}
	if in.Entry.IP == "" || in.Caller.SourceIP != in.Entry.IP {
		return prior
	}
	elapsed := in.Now.Sub(in.Entry.DateCreated)
	if elapsed <= in.Profile.Window() {
		return prior
	}
	return Deny(KindTimeoutExpired, "",
		fmt.Sprintf("entry %s created %s ago exceeds the %s anonymous window", in.Entry.ID, elapsed.Round(time.Second), in.Profile.Window()))
}

// authLoggedOutUser requires anonymous callers inside the window to present
// the entry owner's recorded signal, else sends them to authenticate.
func authLoggedOutUser(prior Result, in Input) Result {
	if in.Caller.Authenticated() {
		return prior
	}
	if in.Entry.IP != "" && in.Caller.SourceIP == in.Entry.IP {
		return prior
	}
	return RedirectTo(SigninTarget)
}

// userCapability requires authenticated callers to own the entry or hold a
// granted capability.
func userCapability(prior Result, in Input) Result {
	actor := in.Caller.Actor
	if actor == nil {
		return prior
	}
	if in.Entry.CreatedBy != "" && actor.ID == in.Entry.CreatedBy {
		return prior
	}
	if actor.Can(CapabilityElevated) {
		return prior
	}
	for _, capability := range in.Profile.Privileges {
		if actor.Can(capability) {
			return prior
		}
	}
	return Deny(KindAccessDenied, "",
		fmt.Sprintf("actor %s neither owns entry %s nor holds a granted capability", actor.ID, in.Entry.ID))
}
