package agent

import "github.com/hupe1980/researchmesh/core"

// Role describes the persona an agent runs under: its system instruction,
// the tools it is allowed to call, the kind of report it produces and the
// iteration budget for its reasoning loop.
type Role struct {
	// Name identifies the role in logs and audit entries.
	Name string
	// Kind is the report kind the role produces, which selects the output
	// validation profile.
	Kind core.ReportKind
	// Instruction is the system prompt given to the model.
	Instruction string
	// Tools lists the tool names the role may call. Calls to tools outside
	// this list are rejected even when the tool is registered.
	Tools []string
	// MaxIterations bounds the reasoning loop.
	MaxIterations int
	// Temperature is the sampling temperature suggested for this role.
	Temperature float64
}

// Allowed reports whether the role may call the named tool.
func (r Role) Allowed(name string) bool {
	for _, t := range r.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// ResearchRole returns the senior research analyst role. It gathers
// information from the web, cross-references sources and records findings
// in long-term memory.
func ResearchRole() Role {
	return Role{
		Name: "research_agent",
		Kind: core.ReportResearch,
		Instruction: "You are a Senior Research Analyst, an experienced researcher with expertise " +
			"in information gathering and analysis. You excel at finding credible sources, " +
			"cross-referencing information, and extracting actionable insights.\n\n" +
			"Conduct comprehensive web research on the given topic, gather information from " +
			"multiple sources, verify facts, and organize findings systematically. Store key " +
			"findings in long-term memory as you discover them. Always cite your sources with " +
			"their URLs in the final report.",
		Tools:         []string{"search_web", "fetch_webpage", "store_memory", "retrieve_memory", "save_to_file"},
		MaxIterations: 10,
		Temperature:   0.7,
	}
}

// SummaryRole returns the executive summary specialist role. It condenses
// research findings into an actionable summary for senior leadership.
func SummaryRole() Role {
	return Role{
		Name: "summary_agent",
		Kind: core.ReportSummary,
		Instruction: "You are an Executive Summary Specialist, a skilled communication expert who " +
			"creates executive summaries for senior leadership. You understand how to prioritize " +
			"information and translate research into actionable intelligence.\n\n" +
			"Transform the research findings into a clear, concise, and actionable executive " +
			"summary with strategic recommendations.",
		Tools:         []string{"retrieve_memory", "save_to_file", "load_from_file", "list_research_files"},
		MaxIterations: 5,
		Temperature:   0.5,
	}
}
