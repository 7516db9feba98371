// Package rating implements the preference score transform: a pure conversion
// between the user-facing 0-100 display score and an internal logistic (Elo)
// rating, plus the deterministic pairwise update rule applied after each
// comparison.
package rating

import (
	"errors"
	"math"
)

// Error types for transform configuration
var (
	ErrInvalidKFactor = errors.New("k-factor must be positive")
)

// Scale constants. Display scores 0..100 map linearly onto internal ratings
// 1000..2000, ten internal points per display unit.
const (
	MinDisplay = 0
	MaxDisplay = 100

	MinInternal = 1000.0
	MaxInternal = 2000.0

	internalPerDisplay = (MaxInternal - MinInternal) / float64(MaxDisplay-MinDisplay)
)

// DefaultKFactor is the step size for one comparison outcome, in display
// points. A win between two evenly rated items moves each side by half of it.
const DefaultKFactor = 28.0

// ToInternal converts a display score to the internal logistic rating.
func ToInternal(display int) float64 {
	return MinInternal + float64(display)*internalPerDisplay
}

// ToDisplay converts an internal rating back to a display score, clamped to
// [0, 100] and rounded to the nearest integer.
func ToDisplay(internal float64) int {
	display := (internal - MinInternal) / internalPerDisplay
	return clamp(int(math.Round(display)))
}

// ExpectedWin returns the probability that an item rated winnerInternal beats
// one rated loserInternal, on the standard logistic curve with a 400-point
// scale.
func ExpectedWin(winnerInternal, loserInternal float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (loserInternal-winnerInternal)/400.0))
}

// Update applies one comparison outcome to the two participants' display
// scores and returns the new values. The win expectation comes from the
// internal ratings; the K-step lands on the display scale, so K=28 between
// two 50s yields 64 and 36.
//
// The winner's score never decreases and the loser's never increases; at a
// clamp boundary the movement is absorbed by the clamp, not by a different
// formula.
func Update(winnerDisplay, loserDisplay int, k float64) (newWinner, newLoser int, err error) {
	if k <= 0 {
		return 0, 0, ErrInvalidKFactor
	}

	expected := ExpectedWin(ToInternal(winnerDisplay), ToInternal(loserDisplay))

	newWinner = clamp(int(math.Round(float64(winnerDisplay) + k*(1.0-expected))))
	newLoser = clamp(int(math.Round(float64(loserDisplay) - k*expected)))
	return newWinner, newLoser, nil
}

// clamp forces a display score into [MinDisplay, MaxDisplay].
func clamp(display int) int {
	if display < MinDisplay {
		return MinDisplay
	}
	if display > MaxDisplay {
		return MaxDisplay
	}
	return display
}
