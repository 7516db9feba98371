package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleConversion(t *testing.T) {
	t.Run("display endpoints", func(t *testing.T) {
		assert.Equal(t, 1000.0, ToInternal(0))
		assert.Equal(t, 1500.0, ToInternal(50))
		assert.Equal(t, 2000.0, ToInternal(100))
	})

	t.Run("round trip identity", func(t *testing.T) {
		for display := MinDisplay; display <= MaxDisplay; display++ {
			assert.Equal(t, display, ToDisplay(ToInternal(display)),
				"round trip broke at %d", display)
		}
	})

	t.Run("out of range internal clamps", func(t *testing.T) {
		assert.Equal(t, 0, ToDisplay(900.0))
		assert.Equal(t, 100, ToDisplay(2100.0))
	})

	t.Run("fractional internal rounds to nearest", func(t *testing.T) {
		assert.Equal(t, 50, ToDisplay(1504.9))
		assert.Equal(t, 51, ToDisplay(1505.0))
	})
}

func TestExpectedWin(t *testing.T) {
	t.Run("equal ratings", func(t *testing.T) {
		assert.InDelta(t, 0.5, ExpectedWin(1500, 1500), 1e-9)
	})

	t.Run("favorite and underdog sum to one", func(t *testing.T) {
		p := ExpectedWin(1700, 1300)
		q := ExpectedWin(1300, 1700)
		assert.InDelta(t, 1.0, p+q, 1e-9)
		assert.Greater(t, p, 0.5)
	})

	t.Run("400 point gap", func(t *testing.T) {
		// 10/11 is the classic figure for a 400-point favorite.
		assert.InDelta(t, 10.0/11.0, ExpectedWin(1900, 1500), 1e-9)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("evenly rated pair splits the step", func(t *testing.T) {
		winner, loser, err := Update(50, 50, 28)
		require.NoError(t, err)
		assert.Equal(t, 64, winner)
		assert.Equal(t, 36, loser)
	})

	t.Run("upset moves more than expected win", func(t *testing.T) {
		upWinner, _, err := Update(30, 70, 28)
		require.NoError(t, err)
		favWinner, _, err := Update(70, 30, 28)
		require.NoError(t, err)

		assert.Greater(t, upWinner-30, favWinner-70,
			"the underdog's win should move its score further")
	})

	t.Run("winner never decreases and loser never increases", func(t *testing.T) {
		for w := MinDisplay; w <= MaxDisplay; w += 5 {
			for l := MinDisplay; l <= MaxDisplay; l += 5 {
				newW, newL, err := Update(w, l, DefaultKFactor)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, newW, w, "winner dropped from %d vs %d", w, l)
				assert.LessOrEqual(t, newL, l, "loser rose from %d vs %d", w, l)
			}
		}
	})

	t.Run("clamped at the top", func(t *testing.T) {
		winner, loser, err := Update(100, 0, 28)
		require.NoError(t, err)
		assert.Equal(t, 100, winner)
		assert.Equal(t, 0, loser)
	})

	t.Run("near boundary partial step", func(t *testing.T) {
		winner, _, err := Update(95, 95, 28)
		require.NoError(t, err)
		assert.Equal(t, 100, winner, "a 14-point step from 95 stops at the cap")
	})

	t.Run("rejects non-positive k", func(t *testing.T) {
		_, _, err := Update(50, 50, 0)
		assert.ErrorIs(t, err, ErrInvalidKFactor)

		_, _, err = Update(50, 50, -5)
		assert.ErrorIs(t, err, ErrInvalidKFactor)
	})

	t.Run("results stay in display range", func(t *testing.T) {
		for w := MinDisplay; w <= MaxDisplay; w += 10 {
			for l := MinDisplay; l <= MaxDisplay; l += 10 {
				newW, newL, err := Update(w, l, 64)
				require.NoError(t, err)
				assert.True(t, newW >= MinDisplay && newW <= MaxDisplay)
				assert.True(t, newL >= MinDisplay && newL <= MaxDisplay)
			}
		}
	})
}

func TestUpdateStepArithmetic(t *testing.T) {
	// Away from the clamp boundaries the applied steps are exact mirrors of
	// the expected-win probability.
	w, l := 60, 40
	expected := ExpectedWin(ToInternal(w), ToInternal(l))

	newW, newL, err := Update(w, l, 28)
	require.NoError(t, err)

	assert.Equal(t, int(math.Round(float64(w)+28*(1-expected))), newW)
	assert.Equal(t, int(math.Round(float64(l)-28*expected)), newL)
}
