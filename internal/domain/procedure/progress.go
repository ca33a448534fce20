package procedure

import (
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Requirement Progress
// Operator and assistant counts advance independently; an extra operator
// realization never satisfies an assistant requirement.
// ═══════════════════════════════════════════════════════════════════════════

// RequirementProgress is the counted state of one procedure requirement.
type RequirementProgress struct {
	RequirementID shared.RequirementID
	Code          string
	Name          string

	RequiredOperator  int
	RequiredAssistant int

	DoneOperator  int
	DoneAssistant int

	SimulatedOperator  int
	SimulatedAssistant int
}

// RemainingOperator is the outstanding operator count.
func (p RequirementProgress) RemainingOperator() int {
	if p.DoneOperator >= p.RequiredOperator {
		return 0
	}
	return p.RequiredOperator - p.DoneOperator
}

// RemainingAssistant is the outstanding assistant count.
func (p RequirementProgress) RemainingAssistant() int {
	if p.DoneAssistant >= p.RequiredAssistant {
		return 0
	}
	return p.RequiredAssistant - p.DoneAssistant
}

// IsComplete reports whether both role counts are satisfied.
func (p RequirementProgress) IsComplete() bool {
	return p.RemainingOperator() == 0 && p.RemainingAssistant() == 0
}

// Percent is the averaged completion of both roles, each clamped so surplus
// in one role cannot mask a shortfall in the other.
func (p RequirementProgress) Percent() shared.Percent {
	switch {
	case p.RequiredOperator > 0 && p.RequiredAssistant > 0:
		a := shared.NewPercent(float64(p.DoneOperator), float64(p.RequiredOperator))
		b := shared.NewPercent(float64(p.DoneAssistant), float64(p.RequiredAssistant))
		return shared.Percent((a.Float64() + b.Float64()) / 2).Clamp()
	case p.RequiredOperator > 0:
		return shared.NewPercent(float64(p.DoneOperator), float64(p.RequiredOperator))
	case p.RequiredAssistant > 0:
		return shared.NewPercent(float64(p.DoneAssistant), float64(p.RequiredAssistant))
	default:
		return 1
	}
}

// CountProgress folds realizations into the requirement's progress. Only
// realizations matching the requirement's code count.
func CountProgress(req *Requirement, realizations []*Realization) RequirementProgress {
	p := RequirementProgress{
		RequirementID:     req.ID,
		Code:              req.Code,
		Name:              req.Name,
		RequiredOperator:  req.RequiredOperator,
		RequiredAssistant: req.RequiredAssistant,
	}
	for _, r := range realizations {
		if r.Code != req.Code {
			continue
		}
		switch r.Role {
		case shared.RoleOperator:
			p.DoneOperator++
			if r.Simulated {
				p.SimulatedOperator++
			}
		case shared.RoleAssistant:
			p.DoneAssistant++
			if r.Simulated {
				p.SimulatedAssistant++
			}
		}
	}
	return p
}

// CountAllProgress computes the progress of every requirement.
func CountAllProgress(reqs []*Requirement, realizations []*Realization) []RequirementProgress {
	out := make([]RequirementProgress, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, CountProgress(req, realizations))
	}
	return out
}

// TotalsByRole sums satisfied counts across requirements, capped at each
// requirement's required count so surplus does not inflate the module totals.
func TotalsByRole(reqs []*Requirement, realizations []*Realization) (operator, assistant int) {
	for _, req := range reqs {
		p := CountProgress(req, realizations)
		operator += min(p.DoneOperator, p.RequiredOperator)
		assistant += min(p.DoneAssistant, p.RequiredAssistant)
	}
	return operator, assistant
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
