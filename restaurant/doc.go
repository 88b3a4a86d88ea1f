// Package restaurant implements the restaurant Q&A pipelines on top of the
// workflow engine. Five flows of escalating sophistication share the same
// building blocks:
//
//   - RunLinear: a fixed three-step menu recommendation chain.
//   - RunRouted: a conditional flow that routes menu questions through
//     retrieval and everything else through plain generation.
//   - RunQualityGatedRAG: retrieval-augmented generation with an LLM judge
//     gating a bounded retry loop.
//   - RunReAct: a reasoning/acting agent that calls tools based on a
//     free-text action protocol, with per-cycle checkpoints.
//   - RunToolCalling: an agent using the provider's native tool-call channel.
//
// All flows are synchronous, capture failures in the returned state instead
// of panicking, and fall back to canned answers when the model is
// unreachable.
package restaurant
