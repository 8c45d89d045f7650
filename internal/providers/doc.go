// Package providers implements the Completer interface for chat-completion
// endpoints.
//
// OpenRouter is the default. OpenAI, Ollama and LM Studio share the same
// OpenAI-compatible client; Anthropic has its own.
//
// Each Complete call makes exactly one HTTP attempt. Non-success statuses
// come back as *StatusError with the response body verbatim, and a success
// body that cannot be decoded comes back as *DecodeError. Tests point the
// clients at httptest servers through the baseURL and client fields.
//
// Use [New] to obtain a Completer from [Settings].
package providers
