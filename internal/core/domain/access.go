package domain

// Decision is the outcome of an access check for a view.
type Decision string

const (
	// DecisionPending means the identity check is still in flight; callers
	// show a neutral loading state and render neither content nor redirect.
	DecisionPending                  Decision = "pending"
	DecisionAllow                    Decision = "allow"
	DecisionRedirectHome             Decision = "redirect_home"
	DecisionRedirectCitizenDashboard Decision = "redirect_citizen_dashboard"
)

// Redirect targets for the two redirect decisions.
const (
	HomePath              = "/"
	CitizenDashboardPath  = "/dashboard"
	ProviderDashboardPath = "/admin"
)

// SessionState is the input of the access guard.
type SessionState struct {
	Loading       bool
	Authenticated bool
	// Role is empty when it could not be determined.
	Role Role
}

// Authorize decides whether a view may be shown for the given session.
// It is a pure function and must be re-evaluated whenever the session or
// role changes.
func Authorize(s SessionState, requireProvider bool) Decision {
	switch {
	case s.Loading:
		return DecisionPending
	case !s.Authenticated:
		return DecisionRedirectHome
	case requireProvider && !s.Role.IsProvider():
		return DecisionRedirectCitizenDashboard
	default:
		return DecisionAllow
	}
}

// RedirectTarget returns the path a redirect decision points at, or "".
func (d Decision) RedirectTarget() string {
	switch d {
	case DecisionRedirectHome:
		return HomePath
	case DecisionRedirectCitizenDashboard:
		return CitizenDashboardPath
	}
	return ""
}

// LandingPath is where a freshly signed-in principal with role r is sent.
func LandingPath(r Role) string {
	if r.IsProvider() {
		return ProviderDashboardPath
	}
	return CitizenDashboardPath
}
