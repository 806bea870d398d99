// Package model defines the minimal language-model contract used by agents.
// The model is treated as an opaque text-completion service with optional
// function/tool calling; provider adapters (openai, anthropic) normalize
// their SDKs into the Request/Response shapes defined here.
package model
