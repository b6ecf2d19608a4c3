package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/trace"
)

const intentPrompt = `Analyze this user request:

"%s"

Expert Knowledge Available:
%s

Extract and infer the following (use the expert knowledge to fill gaps):

1. Budget: Explicit or implied price range
2. Musical Style: Genre mentioned or inferred from artists (if the user mentions specific technical specs like 'ash body, pau ferro fretboard', do NOT assume blues or a generic genre - focus on the technical requirements)
3. Skill Level: Stated or inferred from context
4. Artist References: Any musicians mentioned
5. Guitar Features: Specific requirements (body wood, neck wood, fretboard, pickups, bridge type, etc.)
6. Use Case: Where/how they'll use it (home, gigging, etc.)

IMPORTANT: Pay close attention to technical specifications. If the user mentions specific guitar parts or woods (ash body, pau ferro fretboard, quartersawn neck, specific pickup brands, bridge types), capture these precisely in required_features.

Return JSON format:
{
    "budget_min": <number>,
    "budget_max": <number>,
    "budget_flexibility": <0.1-0.3>,
    "musical_style": "<genre or 'custom/technical' if focus is on specs>",
    "skill_level": "<beginner/intermediate/advanced/professional>",
    "artist_reference": "<artist name if mentioned>",
    "guitar_type": "<electric/acoustic/bass>",
    "required_features": ["<feature1>", "<feature2>"],
    "preferred_brands": ["<brand1>", "<brand2>"],
    "use_cases": ["<use1>", "<use2>"],
    "priority_factors": ["<factor1>", "<factor2>"],
    "confidence": <0.0-1.0>
}`

const dynamicKnowledgePrompt = `Analyze this guitar request and provide relevant expertise:

"%s"

Provide expert knowledge in these areas if relevant:
1. Artists/musicians mentioned or implied
2. Musical genres/styles mentioned or implied
3. Guitar features or specifications mentioned
4. Price range considerations
5. Skill level implications

Format your response as expert knowledge sections. Be specific and actionable.
If you identify artists not commonly known, provide their guitar preferences.
If you identify genres, provide typical guitar recommendations for those genres.

Focus on practical, specific information that would help in guitar selection.`

// analyzeIntent turns the free-text query into a RequirementSpec. The
// second return reports whether the hardcoded fallback spec was used.
func (p *Pipeline) analyzeIntent(ctx context.Context, query string, tr *trace.Tracer) (model.RequirementSpec, bool) {
	tr.AddStep(fmt.Sprintf("Analyzing user query for guitar requirements: '%s'", query))

	knowledgeCtx := p.relevantKnowledge(ctx, query, tr)

	prompt := fmt.Sprintf(intentPrompt, query, knowledgeCtx)
	text, err := p.complete(ctx, p.aiCfg.FastModel, p.aiCfg.FastMaxTokens, prompt)
	if err != nil {
		zap.L().Error("pipeline: intent analysis failed", zap.Error(err))
		return p.fallbackSpec(tr), true
	}

	var spec model.RequirementSpec
	if err := json.Unmarshal([]byte(cleanJSON(text)), &spec); err != nil {
		zap.L().Error("pipeline: intent parse failed", zap.Error(err))
		return p.fallbackSpec(tr), true
	}

	spec.WidenBudget(p.cfg.BudgetFloor)

	tr.AddToolUse("UserIntentAnalysis", query,
		fmt.Sprintf("Identified %s style, budget $%.0f-$%.0f", orUnknown(spec.MusicalStyle), spec.BudgetMin, spec.BudgetMax))
	tr.AddStep(fmt.Sprintf("User wants: %s guitar, budget $%.0f-$%.0f, skill level: %s",
		orUnknown(spec.MusicalStyle), spec.BudgetMin, spec.BudgetMax, orUnknown(string(spec.SkillLevel))))
	tr.SetRequirements(spec)

	return spec, false
}

// fallbackSpec is the conservative default used when extraction fails.
// The query still gets a real answer, just a generic one.
func (p *Pipeline) fallbackSpec(tr *trace.Tracer) model.RequirementSpec {
	tr.AddStep("Intent analysis unavailable, using general-purpose requirements")
	spec := model.RequirementSpec{
		BudgetMin:    400,
		BudgetMax:    1200,
		MusicalStyle: "rock",
		SkillLevel:   model.SkillIntermediate,
		GuitarType:   model.GuitarTypeElectric,
		Confidence:   0.5,
	}
	tr.SetRequirements(spec)
	return spec
}

// relevantKnowledge assembles prompt context from the static tables, or
// asks the fast model for ad hoc expertise when no table matches.
func (p *Pipeline) relevantKnowledge(ctx context.Context, query string, tr *trace.Tracer) string {
	var parts []string

	for _, artist := range p.kb.ArtistsMentioned(query) {
		if rendered, ok := p.kb.ArtistContext(artist); ok {
			parts = append(parts, rendered)
			tr.AddKnowledge("Artist: " + titleCase(artist))
		}
	}
	for _, genre := range p.kb.GenresMentioned(query) {
		if rendered, ok := p.kb.GenreContext(genre); ok {
			parts = append(parts, rendered)
			tr.AddKnowledge("Genre: " + titleCase(genre))
		}
	}
	for _, feature := range p.kb.FeaturesMentioned(query) {
		parts = append(parts, feature.Context())
		tr.AddKnowledge("Feature: " + titleCase(feature.Name))
	}

	if len(parts) == 0 {
		if dynamic := p.dynamicKnowledge(ctx, query, tr); dynamic != "" {
			parts = append(parts, dynamic)
		}
	}

	if len(parts) == 0 {
		return "Analyzing query for relevant guitar expertise..."
	}
	return strings.Join(parts, "\n\n")
}

func (p *Pipeline) dynamicKnowledge(ctx context.Context, query string, tr *trace.Tracer) string {
	text, err := p.complete(ctx, p.aiCfg.FastModel, p.aiCfg.FastMaxTokens, fmt.Sprintf(dynamicKnowledgePrompt, query))
	if err != nil {
		zap.L().Error("pipeline: dynamic knowledge generation failed", zap.Error(err))
		return ""
	}
	tr.AddKnowledge("Dynamic Analysis: Generated contextual guitar expertise")
	return "DYNAMIC EXPERTISE ANALYSIS:\n" + text
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
