// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (web search, page fetching, file storage,
// long-term memory) with schema described arguments and consistent error
// handling.
package tool

import (
	"context"
	"fmt"
)

// Error codes used to categorize tool failures. Agents treat VALIDATION_ERROR
// and RATE_LIMITED as recoverable observations rather than run aborts.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeRateLimit  = "RATE_LIMITED"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with agents to enable function calling, allowing
// agents to perform actions beyond text generation such as web searches,
// file operations, or memory access.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation and LLM function calling.
	Parameters() map[string]interface{}

	// Call executes the tool with structured arguments.
	// Arguments are parsed from the model's JSON output before dispatch.
	Call(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
	Err     error  `json:"-"`       // Underlying cause, if any
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// PathTraversalError indicates a file path that resolves outside the
// tool's confined root directory.
type PathTraversalError struct {
	Path string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("path %q escapes the storage root", e.Path)
}

// stringArg extracts a required string argument from the parsed arguments map.
func stringArg(tool string, args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", NewToolError(tool, fmt.Sprintf("missing required argument %q", key), CodeValidation)
	}
	s, ok := raw.(string)
	if !ok {
		return "", NewToolError(tool, fmt.Sprintf("argument %q must be a string", key), CodeValidation)
	}
	return s, nil
}
