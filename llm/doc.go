// Package llm provides a small provider-agnostic completion client built on
// top of gollm.
//
// The iteration loop only ever needs one operation: send a system prompt and a
// user prompt, block until the model returns its full text. This package wraps
// that operation with provider routing, a typed error hierarchy, and retry
// with exponential backoff, so the caller can treat the model as an opaque
// complete(prompt) -> text function while still getting sane behavior on rate
// limits and transient server errors.
//
// # Quick Start
//
//	client, err := llm.NewClientFromEnv("openai")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Complete(ctx, llm.Request{
//	    Model:    "gpt-4o-mini",
//	    Messages: []llm.Message{llm.SystemMessage(sys), llm.UserMessage(user)},
//	})
package llm
