package waveform

import (
	"fmt"
	"math"
	"sort"
)

// SubcarrierPlan is the fixed partition of occupied FFT bins into data
// and pilot sets. DC (bin 0) and the guard bands are never occupied.
type SubcarrierPlan struct {
	FFTSize   int
	EdgeGuard int
	DataBins  []int
	PilotBins []int
}

// BuildPlan splits usedTones occupied bins of an fftSize transform into
// data and pilot bins. The positive half starts at bin 1+edgeGuard; the
// negative half mirrors it at fftSize-(1+edgeGuard) downward. Pilot bins
// are picked approximately evenly across the sorted occupied set;
// rounding can collapse neighbouring picks, so the selected pilot count
// may come out below the request. That is accepted, not an error.
func BuildPlan(fftSize, usedTones, edgeGuard, numPilots int) (*SubcarrierPlan, error) {
	if fftSize <= 0 {
		return nil, fmt.Errorf("%w: fft size %d must be positive", ErrInvalidConfig, fftSize)
	}
	if edgeGuard < 0 {
		return nil, fmt.Errorf("%w: edge guard %d must be >= 0", ErrInvalidConfig, edgeGuard)
	}
	if usedTones <= 0 || usedTones%2 != 0 {
		return nil, fmt.Errorf("%w: used tones %d must be positive and even", ErrInvalidConfig, usedTones)
	}
	if maxUsed := fftSize - 2 - 2*edgeGuard; usedTones > maxUsed {
		return nil, fmt.Errorf("%w: %d used tones exceed capacity %d for fft size %d, guard %d",
			ErrInvalidConfig, usedTones, maxUsed, fftSize, edgeGuard)
	}

	half := usedTones / 2
	used := make([]int, 0, usedTones)
	for i := 0; i < half; i++ {
		used = append(used, 1+edgeGuard+i)
	}
	for i := 0; i < half; i++ {
		used = append(used, fftSize-(1+edgeGuard+i))
	}
	sort.Ints(used)

	if numPilots < 0 {
		numPilots = 0
	}
	if numPilots > usedTones {
		numPilots = usedTones
	}

	plan := &SubcarrierPlan{FFTSize: fftSize, EdgeGuard: edgeGuard}
	if numPilots == 0 {
		plan.DataBins = used
		plan.PilotBins = []int{}
		return plan, nil
	}

	// Evenly spaced index positions over the sorted occupied bins,
	// rounded to nearest and deduplicated.
	isPilot := make(map[int]bool, numPilots)
	for i := 0; i < numPilots; i++ {
		pos := 0
		if numPilots > 1 {
			pos = int(math.Round(float64(i) * float64(usedTones-1) / float64(numPilots-1)))
		}
		isPilot[used[pos]] = true
	}

	plan.DataBins = make([]int, 0, usedTones-len(isPilot))
	plan.PilotBins = make([]int, 0, len(isPilot))
	for _, bin := range used {
		if isPilot[bin] {
			plan.PilotBins = append(plan.PilotBins, bin)
		} else {
			plan.DataBins = append(plan.DataBins, bin)
		}
	}
	return plan, nil
}

// UsedTones returns the total occupied bin count.
func (p *SubcarrierPlan) UsedTones() int {
	return len(p.DataBins) + len(p.PilotBins)
}
