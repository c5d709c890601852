package engine

import (
	"fmt"
	"strings"

	"github.com/gridtwin/gridtwin/pkg/types"
)

// healthBand labels a 0..100 health score for operators.
func healthBand(percent int) string {
	switch {
	case percent >= 80:
		return "Healthy"
	case percent >= 60:
		return "Watch"
	default:
		return "Critical"
	}
}

// Narrate renders the plain-text diagnostic summary for one scored run:
// overall band, per-subsystem status in registry order, the dominant deficit
// contributors, and the predicted faults with their library metadata. Pure
// formatting; deterministic for a given pack and fault list.
func Narrate(t types.EquipmentType, pack types.ScorePack, faults []types.FaultPrediction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s DIAGNOSTIC SUMMARY\n", strings.ToUpper(t.DisplayName()))
	overall := types.Percent(pack.ComponentHealth)
	fmt.Fprintf(&b, "Overall health: %d%% (%s)\n", overall, healthBand(overall))

	b.WriteString("\nSubsystem status:\n")
	for _, s := range pack.Subsystems {
		p := types.Percent(s.Score)
		fmt.Fprintf(&b, "  - %s: %d%% (%s)\n", s.Name, p, healthBand(p))
	}

	if factors := impactFactors(pack); len(factors) > 0 {
		parts := make([]string, 0, 2)
		for _, f := range factors {
			parts = append(parts, fmt.Sprintf("%s (%d%% of deficit)", f.Factor, f.SharePercent))
			if len(parts) == 2 {
				break
			}
		}
		fmt.Fprintf(&b, "\nDominant factors: %s.\n", strings.Join(parts, ", "))
	}

	b.WriteString("\n")
	if len(faults) == 0 {
		b.WriteString("No critical faults predicted over the simulated horizon.\n")
		return b.String()
	}
	b.WriteString("Predicted faults:\n")
	for i, f := range faults {
		fmt.Fprintf(&b, "  %d. %s [%s] - probability %d%%, expected within ~%.0fh.\n",
			i+1, f.FaultType, f.Severity, types.Percent(f.Probability), f.TimeToFailureHours)
		if f.Cause != "" {
			fmt.Fprintf(&b, "     Cause: %s.\n", f.Cause)
		}
		var meta []string
		if f.AffectedPart != "" {
			meta = append(meta, "Affected: "+f.AffectedPart+".")
		}
		if f.RecommendedAction != "" {
			meta = append(meta, "Action: "+f.RecommendedAction+".")
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "     %s\n", strings.Join(meta, " "))
		}
	}
	return b.String()
}
