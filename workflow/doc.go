// Package workflow provides composable patterns for orchestrating AI-powered
// pipelines over a user-defined state struct.
//
// The package implements three core patterns:
//   - Chain: sequential execution where steps share mutable state
//   - Router: conditional branching based on predicates, first match wins
//   - Loop: iterative execution until a condition is met
//
// All workflow types implement the Step[S] interface, enabling arbitrary
// nesting and composition. The generic type parameter S is your state struct.
//
// # State Model
//
// Define your own state struct to hold workflow data:
//
//	type AskState struct {
//	    Question string
//	    Context  []string
//	    Answer   string
//	}
//
// State is passed by pointer and mutated in place. After workflow completion,
// access results directly from your state fields.
//
// # Basic Usage
//
//	chain := workflow.NewChain("ask",
//	    workflow.NewFuncStep("retrieve", func(ctx context.Context, s *AskState) error {
//	        s.Context = lookup(s.Question)
//	        return nil
//	    }),
//	    generateStep,
//	)
//
//	wf := workflow.New("ask-pipeline", chain)
//	state := &AskState{Question: "What is on the menu?"}
//	result, err := wf.Run(ctx, state)
//	fmt.Println(state.Answer)
//
// # Observing Execution
//
// Pass an event sink to watch steps, routes and loop iterations:
//
//	ch, sink := event.NewChannel()
//	go wf.Run(ctx, state, workflow.WithEvents(sink))
//	for e := range ch {
//	    fmt.Println(e.Type, e.StepName)
//	}
package workflow
