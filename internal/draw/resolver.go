// Package draw determines the outcome of one play of a prize wheel or
// quiz: which segment the animation lands on and whether it pays out.
// Everything here is pure; decrementing stored stock and recording the
// participation is the caller's job.
package draw

import (
	"errors"
	"math"

	"campaignkit/internal/models"
)

// ErrNoSegments signals a draw was requested against a campaign with an
// empty segment list. There is nothing to land on, so the caller must
// not invoke the resolver in this state.
var ErrNoSegments = errors.New("draw requires at least one segment")

// DetermineWinningSegment runs one draw over the request snapshot.
//
// Prizes out of stock or outside their schedule window at PlayTime are
// excluded. If no prize is eligible or all eligible weights are zero the
// draw is a structural loss and lands on a losing segment. Otherwise a
// standard weighted selection picks the winning prize, and one of the
// segments referencing it is chosen uniformly. Malformed weights
// (negative, NaN, Inf) are clamped to zero rather than rejected: this is
// user-authored content and a live campaign must never crash on it.
func DetermineWinningSegment(req models.DrawRequest, rng RandomSource) (models.DrawResult, error) {
	if len(req.Segments) == 0 {
		return models.DrawResult{}, ErrNoSegments
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	eligible := eligiblePrizes(req)
	total := 0.0
	for _, p := range eligible {
		total += clampWeight(p.Probability)
	}
	if len(eligible) == 0 || total == 0 {
		return structuralLoss(req.Segments, rng), nil
	}

	// Weighted walk in stable slice order; first prize whose cumulative
	// weight reaches r wins. Reproducible given a seeded source.
	r := rng.Float64() * total
	cum := 0.0
	winner := eligible[len(eligible)-1]
	for _, p := range eligible {
		cum += clampWeight(p.Probability)
		if cum >= r {
			winner = p
			break
		}
	}

	segment, ok := segmentForPrize(req.Segments, winner.ID, rng)
	if !ok {
		// No segment references the winning prize. Degrade to a loss
		// instead of failing the play.
		return structuralLoss(req.Segments, rng), nil
	}
	prize := winner
	return models.DrawResult{Won: true, Prize: &prize, Segment: segment}, nil
}

// ConsumePrize returns a copy of the prize with one unit of stock
// removed. Unlimited prizes pass through unchanged; stock never goes
// below zero.
func ConsumePrize(p models.Prize) models.Prize {
	if p.Unlimited() {
		return p
	}
	if p.RemainingStock > 0 {
		p.RemainingStock--
	}
	return p
}

// eligiblePrizes filters the snapshot to prizes that can still be won at
// the requested play time.
func eligiblePrizes(req models.DrawRequest) []models.Prize {
	out := make([]models.Prize, 0, len(req.Prizes))
	for _, p := range req.Prizes {
		if !p.Unlimited() && p.RemainingStock <= 0 {
			continue
		}
		if p.Schedule != nil && !p.Schedule.Contains(req.PlayTime) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func clampWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}

// structuralLoss picks the segment to land on when no prize can be won.
// Preference order: a losing segment with no prize reference, then any
// losing segment, then any segment at all.
func structuralLoss(segments []models.Segment, rng RandomSource) models.DrawResult {
	var losing []models.Segment
	var prizeless []models.Segment
	for _, s := range segments {
		if s.IsWinning {
			continue
		}
		losing = append(losing, s)
		if s.PrizeID == "" {
			prizeless = append(prizeless, s)
		}
	}
	pool := segments
	if len(prizeless) > 0 {
		pool = prizeless
	} else if len(losing) > 0 {
		pool = losing
	}
	return models.DrawResult{Won: false, Segment: pool[rng.IntN(len(pool))]}
}

// segmentForPrize chooses uniformly among the segments referencing the
// winning prize, so wheels can show several slices for one prize.
func segmentForPrize(segments []models.Segment, prizeID string, rng RandomSource) (models.Segment, bool) {
	var matches []models.Segment
	for _, s := range segments {
		if s.PrizeID == prizeID {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return models.Segment{}, false
	}
	return matches[rng.IntN(len(matches))], true
}
