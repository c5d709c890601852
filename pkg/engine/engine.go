// Package engine orchestrates one simulation run end to end: it assembles
// the initial state from the type baseline, nameplate-derived signals and
// live telemetry, steps the per-type model across the horizon, and folds the
// final state into scores, fault predictions and a diagnostic narrative.
// The engine performs no I/O; the context only carries the logger.
package engine

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/gridtwin/gridtwin/pkg/equipment"
	"github.com/gridtwin/gridtwin/pkg/log"
	"github.com/gridtwin/gridtwin/pkg/registry"
	"github.com/gridtwin/gridtwin/pkg/types"
)

// DefaultDurationHours is the horizon used when a request leaves it unset.
const DefaultDurationHours = 24

// minSteps keeps short horizons from collapsing into a trivial trajectory.
const minSteps = 12

// Request describes one simulation run.
type Request struct {
	EquipmentType types.EquipmentType

	// LiveReadings is the latest telemetry snapshot keyed by parameter name.
	// Unusable entries (null, non-finite, unparsable) fall back to the
	// baseline and are logged, never rejected.
	LiveReadings map[string]any

	// AssetSpec optionally seeds parameters from nameplate data. Live
	// readings win on key conflicts.
	AssetSpec *types.AssetSpecification

	// DurationHours is the simulated horizon. Zero or negative means
	// DefaultDurationHours.
	DurationHours float64

	// Seed pins the run's randomness for reproducible trajectories. Nil
	// draws a fresh stream per run.
	Seed *uint64

	// Rand overrides Seed when set; tests use it to share one stream
	// across runs.
	Rand *rand.Rand
}

func (r Request) rng() *rand.Rand {
	if r.Rand != nil {
		return r.Rand
	}
	if r.Seed != nil {
		return rand.New(rand.NewPCG(*r.Seed, *r.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Run executes one simulation against reg's calibration. The only error is
// an unknown equipment type (*registry.ConfigurationError); every data
// problem in the request degrades to a logged gap.
func Run(ctx context.Context, reg *registry.Registry, req Request) (*types.SimulationResult, error) {
	model, err := equipment.ForType(reg, req.EquipmentType)
	if err != nil {
		return nil, err
	}

	duration := req.DurationHours
	if !(duration > 0) || math.IsInf(duration, 0) {
		duration = DefaultDurationHours
	}
	rng := req.rng()

	readings, gaps := types.CoerceReadings(req.LiveReadings)
	for _, g := range gaps {
		log.Ctx(ctx).WarnContext(ctx, "live reading unusable, falling back to baseline",
			slog.String("parameter", g.Key),
			slog.Any("value", g.Value),
			slog.String("reason", g.Reason))
	}

	state := model.Baseline().Merged(model.DeriveSignals(req.AssetSpec), readings)

	steps := stepCount(duration)
	timeline := make([]types.TimelinePoint, 0, steps+1)
	timeline = append(timeline, point(0, state, model))
	for i := 1; i <= steps; i++ {
		state = model.Step(state, float64(i)/float64(steps), duration, rng)
		timeline = append(timeline, point(duration*float64(i)/float64(steps), state, model))
	}

	pack := model.Score(state)
	faults := model.PredictFaults(state, duration, rng)

	tn := reg.Tuning()
	aging := clamp01(state.NumberOr("agingFactor", tn.DefaultAgingFactor))
	prob := clamp01(tn.FaultBlend.Risk*pack.FaultRisk +
		tn.FaultBlend.Stress*pack.StressIndicator +
		tn.FaultBlend.Aging*aging)

	return &types.SimulationResult{
		EquipmentType:    model.Type(),
		Timeline:         timeline,
		FinalState:       state.Clone(),
		HealthScores:     healthScores(pack),
		FaultPredictions: faults,
		Diagnosis:        Narrate(model.Type(), pack, faults),
		TrueHealth:       pack.ComponentHealth,
		StressScore:      pack.StressIndicator,
		AgingFactor:      aging,
		FaultProbability: prob,
		ImpactFactors:    impactFactors(pack),
	}, nil
}

// stepCount sizes the trajectory at one step per simulated hour, floored at
// minSteps so sub-day horizons still produce a usable curve.
func stepCount(durationHours float64) int {
	n := int(math.Floor(durationHours))
	if n < minSteps {
		return minSteps
	}
	return n
}

func point(t float64, st types.ParameterState, m equipment.Model) types.TimelinePoint {
	return types.TimelinePoint{
		Time:        t,
		State:       st,
		HealthScore: types.Percent(m.Score(st).ComponentHealth),
	}
}

func healthScores(pack types.ScorePack) types.HealthScores {
	subs := make(map[string]int, len(pack.Subsystems))
	for _, s := range pack.Subsystems {
		subs[s.Name] = types.Percent(s.Score)
	}
	return types.HealthScores{Overall: types.Percent(pack.ComponentHealth), Subsystems: subs}
}

// impactFactors apportions the health deficit across subsystems by weighted
// shortfall, largest share first. A perfectly healthy pack has no factors.
func impactFactors(pack types.ScorePack) []types.ImpactFactor {
	var total float64
	for _, s := range pack.Subsystems {
		total += (1 - s.Score) * s.Weight
	}
	if total <= 0 {
		return nil
	}
	out := make([]types.ImpactFactor, 0, len(pack.Subsystems))
	for _, s := range pack.Subsystems {
		share := types.Percent((1 - s.Score) * s.Weight / total)
		if share == 0 {
			continue
		}
		out = append(out, types.ImpactFactor{Factor: s.Name, SharePercent: share})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SharePercent > out[j].SharePercent
	})
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
