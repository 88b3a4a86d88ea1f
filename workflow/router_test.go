package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistrograph/bistrograph/event"
)

type routeState struct {
	Topic  string
	Result string
}

func routeStep(result string) Step[routeState] {
	return NewFuncStep(result, func(ctx context.Context, s *routeState) error {
		s.Result = result
		return nil
	})
}

func topicIs(topic string) Condition[routeState] {
	return func(ctx context.Context, s *routeState) bool {
		return s.Topic == topic
	}
}

func TestRouter(t *testing.T) {
	routes := []Route[routeState]{
		{Name: "menu", Condition: topicIs("menu"), Step: routeStep("menu-handler")},
		{Name: "wine", Condition: topicIs("wine"), Step: routeStep("wine-handler")},
	}

	t.Run("executes matching route", func(t *testing.T) {
		router := NewRouter("route", routes, routeStep("fallback"))

		state := &routeState{Topic: "wine"}
		err := router.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, "wine-handler", state.Result)
	})

	t.Run("first match wins when multiple conditions hold", func(t *testing.T) {
		always := func(ctx context.Context, s *routeState) bool { return true }
		router := NewRouter("route", []Route[routeState]{
			{Name: "first", Condition: always, Step: routeStep("first")},
			{Name: "second", Condition: always, Step: routeStep("second")},
		}, nil)

		state := &routeState{}
		err := router.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, "first", state.Result)
	})

	t.Run("falls back to default route", func(t *testing.T) {
		router := NewRouter("route", routes, routeStep("fallback"))

		state := &routeState{Topic: "weather"}
		err := router.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, "fallback", state.Result)
	})

	t.Run("no match and no default is an error", func(t *testing.T) {
		router := NewRouter("route", routes, nil)

		state := &routeState{Topic: "weather"}
		err := router.Run(context.Background(), state)
		assert.ErrorIs(t, err, ErrNoRouteMatched)
	})

	t.Run("emits route selected event", func(t *testing.T) {
		router := NewRouter("route", routes, nil)

		var got []event.Event
		sink := func(e event.Event) { got = append(got, e) }

		state := &routeState{Topic: "menu"}
		err := router.Run(context.Background(), state, WithEvents(sink))
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, event.RouteSelected, got[0].Type)
		assert.Equal(t, "menu", got[0].RouteName)
	})

	t.Run("selected reports route without running", func(t *testing.T) {
		router := NewRouter("route", routes, nil)

		state := &routeState{Topic: "wine"}
		name, ok := router.Selected(context.Background(), state)
		require.True(t, ok)
		assert.Equal(t, "wine", name)
		assert.Empty(t, state.Result)
	})
}
