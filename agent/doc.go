// Package agent implements the tool-using reasoning loop that drives both
// the research and summary roles. An agent repeatedly asks its model for the
// next step, dispatches requested tool calls, feeds observations back, and
// finishes when the model produces a final answer that passes output
// validation or the role's iteration budget is exhausted.
package agent
