// Package trace accumulates the per-query explanation record. One Tracer is
// created per pipeline run, so concurrent queries never share an accumulator.
package trace

import (
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
)

const (
	// Display budgets for tool-use summaries. Full values go to the
	// structured log, not the trace.
	maxInputSummary  = 100
	maxOutputSummary = 200
)

// Tracer collects reasoning steps, tool invocations, and knowledge
// applications during a single pipeline run.
type Tracer struct {
	mu        sync.Mutex
	steps     []model.ReasoningStep
	tools     []model.ToolUse
	knowledge []string
	filter    *model.CatalogFilter
	spec      *model.RequirementSpec
	found     int
	complete  bool
}

// New returns an empty Tracer for one query.
func New() *Tracer {
	return &Tracer{}
}

// AddStep appends a free-text reasoning step.
func (t *Tracer) AddStep(step string) {
	t.mu.Lock()
	t.steps = append(t.steps, model.ReasoningStep{
		Timestamp: time.Now().UTC(),
		Step:      step,
	})
	t.mu.Unlock()
	zap.L().Debug("reasoning step", zap.String("step", step))
}

// AddToolUse records a collaborator invocation. Input and output summaries
// are truncated to fixed display budgets.
func (t *Tracer) AddToolUse(tool, input, output string) {
	t.mu.Lock()
	t.tools = append(t.tools, model.ToolUse{
		Timestamp: time.Now().UTC(),
		Tool:      tool,
		Input:     truncate(input, maxInputSummary),
		Output:    truncate(output, maxOutputSummary),
	})
	t.mu.Unlock()
}

// AddKnowledge tags a knowledge-base application, e.g. "Artist: Jimmy Page".
func (t *Tracer) AddKnowledge(tag string) {
	t.mu.Lock()
	t.knowledge = append(t.knowledge, tag)
	t.mu.Unlock()
}

// Knowledge returns the knowledge tags applied so far, in order.
func (t *Tracer) Knowledge() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.knowledge))
	copy(out, t.knowledge)
	return out
}

// SetRequirements attaches the requirement spec computed for this query.
func (t *Tracer) SetRequirements(spec model.RequirementSpec) {
	t.mu.Lock()
	t.spec = &spec
	t.mu.Unlock()
}

// SetFilter attaches the catalog filter used for retrieval.
func (t *Tracer) SetFilter(filter model.CatalogFilter) {
	t.mu.Lock()
	t.filter = &filter
	t.mu.Unlock()
}

// SetCandidates records how many listings retrieval produced.
func (t *Tracer) SetCandidates(n int) {
	t.mu.Lock()
	t.found = n
	t.mu.Unlock()
}

// Finish marks the run complete.
func (t *Tracer) Finish() {
	t.mu.Lock()
	t.complete = true
	t.mu.Unlock()
}

// Snapshot returns a copy of the accumulated trace.
func (t *Tracer) Snapshot() model.ExplanationTrace {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := model.ExplanationTrace{
		ReasoningSteps:   make([]model.ReasoningStep, len(t.steps)),
		ToolsUsed:        make([]model.ToolUse, len(t.tools)),
		KnowledgeApplied: make([]string, len(t.knowledge)),
		CandidatesFound:  t.found,
		Complete:         t.complete,
	}
	copy(out.ReasoningSteps, t.steps)
	copy(out.ToolsUsed, t.tools)
	copy(out.KnowledgeApplied, t.knowledge)

	if t.filter != nil {
		f := *t.filter
		out.SearchFilter = &f
	}
	if t.spec != nil {
		s := *t.spec
		out.Requirements = &s
	}
	return out
}

// truncate cuts at a rune boundary so a multi-byte character straddling
// the limit is dropped whole.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
