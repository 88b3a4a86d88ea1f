// Command bistrograph runs the restaurant Q&A flows from the terminal.
//
// Usage:
//
//	bistrograph -flow linear
//	bistrograph -flow routed -q "스테이크 가격 알려주세요"
//	bistrograph -flow rag -q "스테이크에 어울리는 와인은?"
//	bistrograph -flow react -q "와인 리스트 보여주세요"
//	bistrograph -flow tools -q "오늘 뭐가 맛있어요?"
//	bistrograph -flow mcp          (serve the search tools over MCP stdio)
//
// Provider selection follows the environment: LLM_PROVIDER, or the first of
// ANTHROPIC_API_KEY / OPENAI_API_KEY / GOOGLE_API_KEY that is set. A .env
// file in the working directory is loaded if present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/client"
	"github.com/bistrograph/bistrograph/event"
	"github.com/bistrograph/bistrograph/mcp"
	"github.com/bistrograph/bistrograph/restaurant"
	"github.com/bistrograph/bistrograph/retrieve"
	"github.com/bistrograph/bistrograph/tool"
	"github.com/bistrograph/bistrograph/websearch"
)

func main() {
	godotenv.Load()

	flow := flag.String("flow", "routed", "flow to run: linear, routed, rag, react, tools, mcp")
	query := flag.String("q", "", "customer question (not used by linear)")
	session := flag.String("session", "", "session/thread id for rag and react flows")
	dataDir := flag.String("data", "data", "directory holding restaurant_menu.txt and restaurant_wine.txt")
	verbose := flag.Bool("v", false, "print step and tool events")
	flag.Parse()

	retriever, err := loadIndex(*dataDir)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}

	if *flow == "mcp" {
		registry := tool.NewRegistry()
		if err := restaurant.RegisterSearchTools(registry, retriever); err != nil {
			log.Fatalf("register tools: %v", err)
		}
		if err := mcp.ServeStdio(registry, mcp.WithName("bistrograph-tools")); err != nil {
			log.Fatalf("mcp server: %v", err)
		}
		return
	}

	ctx := context.Background()
	c, err := client.FromEnv(ctx)
	if err != nil {
		log.Fatalf("configure provider: %v", err)
	}

	opts := []restaurant.ServiceOption{restaurant.WithRetriever(retriever)}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		opts = append(opts, restaurant.WithWebSearch(websearch.NewTavilyClient(key)))
	}
	if *verbose {
		opts = append(opts, restaurant.WithEvents(printEvents))
	}

	svc, err := restaurant.NewService(c, opts...)
	if err != nil {
		log.Fatalf("build service: %v", err)
	}

	switch *flow {
	case "linear":
		state, err := svc.RunLinear(ctx)
		exitOn(err)
		fmt.Printf("선호: %s\n메뉴: %s (%d원)\n\n%s\n", state.Preference, state.MenuItem, state.Price, state.Answer)

	case "routed":
		state, err := svc.RunRouted(ctx, *query)
		exitOn(err)
		fmt.Printf("[%s, menu-related=%v]\n\n%s\n", state.Stage, state.IsMenuRelated, state.Answer)

	case "rag":
		state, err := svc.RunQualityGatedRAG(ctx, *query, *session)
		exitOn(err)
		fmt.Printf("[%s, attempts=%d/%d, score=%.2f, session=%s]\n\n%s\n",
			state.Stage, state.Attempts, state.MaxAttempts, state.BestScore(), state.SessionKey, state.Answer)
		if state.Stage == restaurant.StageFailed {
			fmt.Printf("\nfailure: %s\n", state.FailureReason)
		}

	case "react":
		state, err := svc.RunReAct(ctx, *query, *session)
		exitOn(err)
		fmt.Printf("[%s, iterations=%d, tools=%d, thread=%s]\n\n%s\n",
			state.Stage, state.Iterations, len(state.ToolCalls), state.ThreadID, state.FinalAnswer)

	case "tools":
		answer, err := svc.RunToolCalling(ctx, *query)
		exitOn(err)
		fmt.Println(answer)

	default:
		log.Fatalf("unknown flow %q", *flow)
	}
}

// loadIndex builds the document index from the data directory.
func loadIndex(dir string) (*retrieve.Retriever, error) {
	r := retrieve.NewRetriever()
	if _, err := r.LoadFile(dir+"/restaurant_menu.txt", ai.DocumentTypeMenu); err != nil {
		return nil, err
	}
	if _, err := r.LoadFile(dir+"/restaurant_wine.txt", ai.DocumentTypeWine); err != nil {
		return nil, err
	}
	return r, nil
}

func printEvents(e event.Event) {
	switch e.Type {
	case event.StepStart:
		fmt.Fprintf(os.Stderr, "→ %s\n", e.StepName)
	case event.RouteSelected:
		fmt.Fprintf(os.Stderr, "⇒ route %s\n", e.RouteName)
	case event.LoopIteration:
		fmt.Fprintf(os.Stderr, "↻ iteration %d\n", e.Iteration)
	case event.ToolCallStart:
		fmt.Fprintf(os.Stderr, "⚙ %s(%s)\n", e.ToolCall.Name, e.ToolCall.Arguments)
	case event.CheckpointSaved:
		fmt.Fprintf(os.Stderr, "✓ checkpoint %s\n", e.Message)
	case event.RunError:
		fmt.Fprintf(os.Stderr, "✗ %v\n", e.Error)
	}
}

func exitOn(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
