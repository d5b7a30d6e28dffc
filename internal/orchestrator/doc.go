// Package orchestrator coordinates task classification, routing, and
// execution across heterogeneous LLM backends.
//
// # Architecture
//
// A request flows through four stages:
//
//   - Classify (internal/classifier): derive a task type, complexity
//     score, and recommended backend list from the prompt and files.
//   - Route (internal/router): turn the classification into a primary
//     backend plus an ordered fallback chain, honoring configured routing
//     rules or falling back to the classifier's recommendations.
//   - Execute with retry/fallback: walk the candidate list, retrying a
//     retryable failure against the same candidate before moving on, and
//     forwarding streamed chunks to the caller as they arrive.
//   - Aggregate (parallel mode only): fan out to several backends at once
//     and multiplex or concatenate their output.
//
// # Streaming commitment
//
// Once a chunk from a candidate's stream has reached the caller, a later
// failure on that same stream becomes a terminal execution error rather
// than triggering a silent fallback — re-issuing against another backend
// after partial output has already been shown would produce a disjoint
// continuation the caller cannot make sense of.
package orchestrator
