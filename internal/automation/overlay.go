package automation

import (
	"fmt"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/fusion"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// OverlayRule is an operator-supplied restriction compiled on top of the
// staged policy. Overlay rules can only further deny commands; they can never
// loosen the base policy.
type OverlayRule struct {
	Name       string   `mapstructure:"name"`
	Expression string   `mapstructure:"expression"`
	Deny       []string `mapstructure:"deny"`
	ReasonAr   string   `mapstructure:"reason_ar"`
	ReasonEn   string   `mapstructure:"reason_en"`
}

type overlayRule struct {
	name     string
	program  *vm.Program
	deny     map[Command]struct{}
	reasonAr string
	reasonEn string
}

// NewGateWithOverlay compiles the overlay rules once at construction time.
// A rule that fails to compile is rejected outright; a half-working policy
// set is worse than none.
func NewGateWithOverlay(logger *zap.Logger, rules []OverlayRule) (*Gate, error) {
	gate := &Gate{logger: logger, overlay: make([]overlayRule, 0, len(rules))}
	for _, rule := range rules {
		program, err := expr.Compile(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile overlay rule %q: %w", rule.Name, err)
		}
		deny := make(map[Command]struct{}, len(rule.Deny))
		for _, cmd := range rule.Deny {
			deny[Command(cmd)] = struct{}{}
		}
		gate.overlay = append(gate.overlay, overlayRule{
			name:     rule.Name,
			program:  program,
			deny:     deny,
			reasonAr: rule.ReasonAr,
			reasonEn: rule.ReasonEn,
		})
	}
	return gate, nil
}

func (g *Gate) applyOverlay(decisions []Decision, scenario signal.Scenario, severity signal.Severity, lockEnabled, containmentEnabled bool, matched []fusion.Trajectory) []Decision {
	if len(g.overlay) == 0 {
		return decisions
	}

	topRisk, topConfidence := 0.0, 0.0
	if len(matched) > 0 {
		topRisk, topConfidence = matched[0].RiskScore, matched[0].Confidence
	}
	env := map[string]interface{}{
		"scenario":            string(scenario),
		"severity":            severity.String(),
		"lock_enabled":        lockEnabled,
		"containment_enabled": containmentEnabled,
		"risk_score":          topRisk,
		"confidence":          topConfidence,
		"trajectory_count":    len(matched),
	}

	for _, rule := range g.overlay {
		out, err := vm.Run(rule.program, env)
		if err != nil {
			if g.logger != nil {
				g.logger.Warn("overlay rule evaluation failed",
					zap.String("rule", rule.name),
					zap.Error(err))
			}
			continue
		}
		triggered, ok := out.(bool)
		if !ok || !triggered {
			continue
		}
		for i := range decisions {
			if _, denied := rule.deny[decisions[i].Command]; denied {
				decisions[i].Allowed = false
				decisions[i].ReasonAr = rule.reasonAr
				decisions[i].ReasonEn = rule.reasonEn
			}
		}
	}
	return decisions
}
