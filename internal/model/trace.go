package model

import "time"

// ReasoningStep is one timestamped free-text step in the explanation trace.
type ReasoningStep struct {
	Timestamp time.Time `json:"timestamp"`
	Step      string    `json:"step"`
}

// ToolUse records one collaborator invocation with truncated summaries.
type ToolUse struct {
	Timestamp time.Time `json:"timestamp"`
	Tool      string    `json:"tool"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
}

// ExplanationTrace is the diagnostic record of one pipeline run. It is
// purely observational: nothing in it feeds back into the recommendation
// content.
type ExplanationTrace struct {
	ReasoningSteps   []ReasoningStep  `json:"reasoning_steps"`
	ToolsUsed        []ToolUse        `json:"tools_used"`
	KnowledgeApplied []string         `json:"knowledge_applied"`
	SearchFilter     *CatalogFilter   `json:"search_filter,omitempty"`
	Requirements     *RequirementSpec `json:"requirements,omitempty"`
	CandidatesFound  int              `json:"candidates_found"`
	Complete         bool             `json:"complete"`
}
