// Package agent runs the conversation between the user, the model and the
// local tools.
//
// # The loop
//
// A Loop takes one user message and keeps calling the model until it answers
// with plain text:
//
//	loop := agent.New(client, registry, logger)
//	reply := loop.Process(ctx, conv, "what is in this directory?")
//
// Each round sends the full conversation and the registry's tool definitions.
// When the reply requests tools, the assistant turn is recorded, the tools are
// executed one at a time in the order requested, and each result is recorded
// as a tool message carrying the id of the call it answers. The next round then
// lets the model see those results.
//
// At most MaxToolRounds model calls are made per user message. When the cap is
// reached the loop records and returns StoppedReply. An empty final reply is
// recorded as NoResponse.
//
// # Failures
//
// Run never returns an error. A failed model call becomes an "Error: ..."
// assistant reply so the user sees it in the chat. Tool failures, unknown tool
// names and tool panics are turned into textual tool results by the registry,
// so the model can react to them.
//
// # Concurrency
//
// Run appends to the conversation it is given and must be the only writer.
// Front ends that keep the UI responsive run it on a Fork of the conversation
// and merge the fork back on their own goroutine; see agent/terminal.
//
// # Subpackages
//
// agent/terminal: the full-screen interactive runtime.
package agent
