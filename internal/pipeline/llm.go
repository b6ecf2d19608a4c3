// Package pipeline runs the four-step recommendation flow: intent
// analysis, search strategy, retrieval, and constrained re-ranking.
package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/fretsource/guitar-scout/internal/resilience"
	"github.com/fretsource/guitar-scout/pkg/anthropic"
)

const consultantSystemPrompt = `You are an expert guitar consultant. You analyze instrument requests precisely, respect stated technical specifications, and answer in the exact format asked for.`

// complete sends one prompt to the given model and returns the response
// text. Transient API failures are retried with backoff.
func (p *Pipeline) complete(ctx context.Context, model string, maxTokens int64, prompt string) (string, error) {
	temp := p.aiCfg.Temperature

	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.LogRetries("anthropic", "create message")

	resp, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       model,
			MaxTokens:   maxTokens,
			System:      anthropic.BuildCachedSystemBlocks(consultantSystemPrompt),
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temp,
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "pipeline: complete")
	}

	resp.Usage.LogUsage(model, "pipeline")
	return extractText(resp), nil
}

func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
