package session

import "sync"

// Route names a screen
type Route string

const (
	RouteSignIn    Route = "/signin"
	RouteSignUp    Route = "/signup"
	RouteDashboard Route = "/dashboard"
)

// Navigator switches the visible screen
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(to Route)

func (f NavigatorFunc) Navigate(to Route) { f(to) }

type nopNavigator struct{}

func (nopNavigator) Navigate(Route) {}

// RouteRecorder remembers every navigation request
type RouteRecorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *RouteRecorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

// Routes returns the requested routes in order
func (r *RouteRecorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}
