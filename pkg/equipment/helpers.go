package equipment

import (
	"math"
	"math/rand/v2"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// smoothToward moves cur a fraction of the way to target. factor is the
// per-step convergence rate in (0,1].
func smoothToward(cur, target, factor float64) float64 {
	return cur + (target-cur)*factor
}

// oscillate is one full sine cycle over the run, scaled to amplitude.
func oscillate(progress, amplitude float64) float64 {
	return math.Sin(progress*2*math.Pi) * amplitude
}

// jitter is zero-centered uniform noise in [-scale/2, scale/2).
func jitter(rng *rand.Rand, scale float64) float64 {
	return (rng.Float64() - 0.5) * scale
}

func avg(vals ...float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// worse scores a reading that degrades as it rises: 1 at or below safe,
// 0 once it exceeds safe by span.
func worse(value, safe, span float64) float64 {
	return clamp01(1 - (value-safe)/span)
}

// better scores a reading that degrades as it falls: 0 at or below floor,
// 1 once it reaches floor plus span.
func better(value, floor, span float64) float64 {
	return clamp01((value - floor) / span)
}
