package model

// GuitarType enumerates the broad instrument categories the analyzer emits.
type GuitarType string

const (
	GuitarTypeElectric GuitarType = "electric"
	GuitarTypeAcoustic GuitarType = "acoustic"
	GuitarTypeBass     GuitarType = "bass"
)

// SkillLevel enumerates player skill levels. Empty means unknown.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillProfessional SkillLevel = "professional"
)

// RequirementSpec is the structured interpretation of a user's free-text
// request, produced once per query by the intent analyzer and immutable
// afterwards. JSON tags match the extraction schema sent to the model.
type RequirementSpec struct {
	BudgetMin         float64    `json:"budget_min"`
	BudgetMax         float64    `json:"budget_max"`
	BudgetFlexibility float64    `json:"budget_flexibility"`
	MusicalStyle      string     `json:"musical_style"`
	SkillLevel        SkillLevel `json:"skill_level"`
	ArtistReference   string     `json:"artist_reference,omitempty"`
	GuitarType        GuitarType `json:"guitar_type"`
	RequiredFeatures  []string   `json:"required_features,omitempty"`
	PreferredBrands   []string   `json:"preferred_brands,omitempty"`
	UseCases          []string   `json:"use_cases,omitempty"`
	PriorityFactors   []string   `json:"priority_factors,omitempty"`
	Confidence        float64    `json:"confidence"`
}

// WidenBudget applies the budget invariants: a point budget (min == max)
// becomes an asymmetric ±20% band, a proper range is stretched by the
// spec's flexibility fraction, and both bounds are clamped to floor.
// A single number from extraction is never treated as an exact target.
func (s *RequirementSpec) WidenBudget(floor float64) {
	if s.BudgetMax <= 0 {
		return
	}

	flex := s.BudgetFlexibility
	if flex < 0.1 || flex > 0.3 {
		flex = 0.2
	}

	if s.BudgetMin == s.BudgetMax {
		target := s.BudgetMax
		s.BudgetMin = target * 0.8
		s.BudgetMax = target * 1.2
	} else {
		if s.BudgetMin <= 0 {
			s.BudgetMin = floor * 3
		}
		s.BudgetMin = s.BudgetMin * (1 - flex)
		s.BudgetMax = s.BudgetMax * (1 + flex)
	}

	if s.BudgetMin < floor {
		s.BudgetMin = floor
	}
	if s.BudgetMax < s.BudgetMin {
		s.BudgetMax = s.BudgetMin
	}
}
