package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/catalog"
	"github.com/fretsource/guitar-scout/internal/config"
	"github.com/fretsource/guitar-scout/internal/knowledge"
	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/store"
	"github.com/fretsource/guitar-scout/internal/trace"
	"github.com/fretsource/guitar-scout/pkg/anthropic"
)

// Pipeline wires the recommendation steps together. One Pipeline serves
// many queries concurrently; all per-query state lives in the Tracer.
type Pipeline struct {
	llm      anthropic.Client
	kb       *knowledge.Base
	primary  catalog.Source
	fallback catalog.Source
	runs     store.Store
	aiCfg    config.AnthropicConfig
	cfg      config.PipelineConfig
}

// Options collects the pipeline's collaborators. Fallback and Runs are
// optional.
type Options struct {
	LLM       anthropic.Client
	Knowledge *knowledge.Base
	Primary   catalog.Source
	Fallback  catalog.Source
	Runs      store.Store
	AI        config.AnthropicConfig
	Pipeline  config.PipelineConfig
}

// New builds a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		llm:      opts.LLM,
		kb:       opts.Knowledge,
		primary:  opts.Primary,
		fallback: opts.Fallback,
		runs:     opts.Runs,
		aiCfg:    opts.AI,
		cfg:      opts.Pipeline,
	}
}

// Run executes the full flow for one query. It never fails on query
// content: every step has a degraded path, and the trace records which
// paths were taken. Only the final QueryRun's status distinguishes a
// clean run from a degraded one.
func (p *Pipeline) Run(ctx context.Context, query string) *model.QueryRun {
	tr := trace.New()
	tr.AddStep(fmt.Sprintf("Starting comprehensive guitar search for: '%s'", query))

	run := p.createRun(ctx, query)

	spec, specDegraded := p.analyzeIntent(ctx, query, tr)
	filter := p.planStrategy(spec, tr)
	listings, retrievalDegraded := p.retrieve(ctx, filter, tr)
	result, recDegraded := p.recommend(ctx, query, spec, listings, tr)

	tr.AddStep("Guitar search and analysis completed successfully")
	tr.Finish()

	status := model.QueryRunComplete
	if specDegraded || retrievalDegraded || recDegraded {
		status = model.QueryRunDegraded
	}

	snapshot := tr.Snapshot()
	run.Status = status
	run.Result = &result
	run.Trace = &snapshot

	p.completeRun(ctx, run)
	return run
}

func (p *Pipeline) createRun(ctx context.Context, query string) *model.QueryRun {
	if p.runs == nil {
		return &model.QueryRun{Query: query, Status: model.QueryRunRunning}
	}
	run, err := p.runs.CreateRun(ctx, query)
	if err != nil {
		zap.L().Warn("pipeline: create run failed", zap.Error(err))
		return &model.QueryRun{Query: query, Status: model.QueryRunRunning}
	}
	return run
}

func (p *Pipeline) completeRun(ctx context.Context, run *model.QueryRun) {
	if p.runs == nil || run.ID == "" {
		return
	}
	if err := p.runs.CompleteRun(ctx, run.ID, run.Status, run.Result, run.Trace); err != nil {
		zap.L().Warn("pipeline: complete run failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}
