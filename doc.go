// Package bistrograph provides the shared wire types for the bistrograph
// restaurant workflow library: conversation messages, retrieval documents,
// tool definitions and categorized errors.
//
// The interesting machinery lives in the subpackages:
//   - workflow: composable Step/Chain/Router/Loop execution engine
//   - restaurant: the five restaurant Q&A pipelines built on the engine
//   - retrieve: TF-IDF document search over the restaurant corpus
//   - grade: LLM-based answer quality evaluation
//   - memory: thread-scoped session state with checkpointing
//   - tool: tool registry and built-in restaurant/web tools
//   - client, provider: unified chat client over OpenAI/Anthropic/Google
package bistrograph
