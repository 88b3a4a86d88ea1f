package workflow

import (
	"context"

	"github.com/bistrograph/bistrograph/event"
)

// Condition determines if a route should be taken.
type Condition[S any] func(ctx context.Context, state *S) bool

// Route represents a conditional path in a router.
type Route[S any] struct {
	Name      string
	Condition Condition[S]
	Step      Step[S]
}

// Router selects and executes a step based on conditions.
type Router[S any] struct {
	name         string
	routes       []Route[S]
	defaultRoute Step[S]
}

// NewRouter creates a conditional router.
// Routes are evaluated in declaration order; first match wins, even when
// later conditions would also match. Default route is used if no conditions
// match (can be nil, in which case no match is an error).
func NewRouter[S any](name string, routes []Route[S], defaultRoute Step[S]) *Router[S] {
	return &Router[S]{
		name:         name,
		routes:       routes,
		defaultRoute: defaultRoute,
	}
}

// Name returns the router name.
func (r *Router[S]) Name() string { return r.name }

// Run evaluates conditions and executes the matching step.
func (r *Router[S]) Run(ctx context.Context, state *S, opts ...Option) error {
	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	var selectedStep Step[S]
	var selectedName string

	for _, route := range r.routes {
		if route.Condition(ctx, state) {
			selectedStep = route.Step
			selectedName = route.Name
			break
		}
	}

	if selectedStep == nil {
		if r.defaultRoute == nil {
			return &StepError{StepName: r.name, Err: ErrNoRouteMatched}
		}
		selectedStep = r.defaultRoute
		selectedName = "default"
	}

	event.Emit(options.Events, event.Event{
		Type:      event.RouteSelected,
		StepName:  r.name,
		RouteName: selectedName,
	})

	return selectedStep.Run(ctx, state, opts...)
}

// Selected evaluates the router's conditions without executing any step and
// returns the name of the route that would run. Useful in tests.
func (r *Router[S]) Selected(ctx context.Context, state *S) (string, bool) {
	for _, route := range r.routes {
		if route.Condition(ctx, state) {
			return route.Name, true
		}
	}
	if r.defaultRoute != nil {
		return "default", true
	}
	return "", false
}
