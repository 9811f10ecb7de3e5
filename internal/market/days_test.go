package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTradingDays_WednesdayLookback(t *testing.T) {
	// Wednesday 2024-06-12
	wednesday := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

	days := TradingDays(wednesday, 3, nil)

	require.Len(t, days, 3)
	assert.Equal(t, date(2024, time.June, 10), days[0]) // Monday
	assert.Equal(t, date(2024, time.June, 11), days[1]) // Tuesday
	assert.Equal(t, date(2024, time.June, 12), days[2]) // Wednesday
}

func TestTradingDays_WeekendFallsBackToFriday(t *testing.T) {
	saturday := date(2024, time.June, 15)
	sunday := date(2024, time.June, 16)
	friday := date(2024, time.June, 14)

	require.Equal(t, []time.Time{friday}, TradingDays(saturday, 1, nil))
	require.Equal(t, []time.Time{friday}, TradingDays(sunday, 1, nil))
}

func TestTradingDays_Properties(t *testing.T) {
	now := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)

	for _, n := range []int{1, 2, 5, 10, 23} {
		days := TradingDays(now, n, nil)

		require.Len(t, days, n, "n=%d", n)
		for i, d := range days {
			assert.NotEqual(t, time.Saturday, d.Weekday())
			assert.NotEqual(t, time.Sunday, d.Weekday())
			if i > 0 {
				assert.True(t, days[i-1].Before(d), "dates must be strictly increasing")
			}
		}
		assert.False(t, days[len(days)-1].After(now), "last date must not be in the future")
	}
}

func TestTradingDays_CrossesWeekend(t *testing.T) {
	// Monday 2024-06-17 looking back 2 days must skip the weekend.
	monday := date(2024, time.June, 17)

	days := TradingDays(monday, 2, nil)

	require.Len(t, days, 2)
	assert.Equal(t, date(2024, time.June, 14), days[0]) // previous Friday
	assert.Equal(t, date(2024, time.June, 17), days[1])
}

func TestTradingDays_NonPositive(t *testing.T) {
	now := time.Now()
	assert.Nil(t, TradingDays(now, 0, nil))
	assert.Nil(t, TradingDays(now, -3, nil))
}
