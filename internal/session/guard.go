package session

// Policy is a view's authentication requirement
type Policy int

const (
	Public      Policy = iota
	RequireAuth        // protected views
	ForbidAuth         // sign-in and sign-up
)

// Action is the outcome of a guard check
type Action int

const (
	Render Action = iota
	Wait
	Redirect
)

// Decision tells a view what to do
type Decision struct {
	Action Action
	To     Route // set when Action is Redirect
}

// GuardOption adjusts a guard check
type GuardOption func(*guardOptions)

type guardOptions struct {
	redirectTo Route
}

// RedirectTo overrides the default redirect target
func RedirectTo(r Route) GuardOption {
	return func(o *guardOptions) { o.redirectTo = r }
}

// Guard decides whether a view with policy may render in state. No redirect
// is decided while the session is loading.
func Guard(policy Policy, state State, opts ...GuardOption) Decision {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}

	if state.IsLoading {
		return Decision{Action: Wait}
	}

	switch {
	case policy == RequireAuth && !state.IsAuthenticated:
		return redirect(o.redirectTo, RouteSignIn)
	case policy == ForbidAuth && state.IsAuthenticated:
		return redirect(o.redirectTo, RouteDashboard)
	default:
		return Decision{Action: Render}
	}
}

func redirect(override, fallback Route) Decision {
	if override != "" {
		return Decision{Action: Redirect, To: override}
	}
	return Decision{Action: Redirect, To: fallback}
}
