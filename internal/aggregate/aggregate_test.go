package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"cake-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inc(name string, delivered bool, at time.Time) domain.Incident {
	return domain.Incident{PersonName: name, CakeDelivered: delivered, CreatedAt: at}
}

func randomIncidents(r *rand.Rand, n int) []domain.Incident {
	names := []string{"Alex", "Sam", "Rosa", "Kim", "alex", "Sam "}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Incident, n)
	for i := range out {
		out[i] = inc(names[r.Intn(len(names))], r.Intn(2) == 0, base.Add(time.Duration(r.Intn(300*24))*time.Hour))
	}
	return out
}

func TestLeaderboard_TotalsAreConsistent(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		incidents := randomIncidents(r, r.Intn(40))

		board := Leaderboard(incidents, 0)

		sum := 0
		for _, p := range board {
			assert.Equal(t, p.Owed+p.Delivered, p.Total, p.Name)
			sum += p.Total
		}
		assert.Equal(t, len(incidents), sum)
	}
}

func TestLeaderboard_OrderedByOwedDescending(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		board := Leaderboard(randomIncidents(r, 30), 0)
		for i := 1; i < len(board); i++ {
			assert.GreaterOrEqual(t, board[i-1].Owed, board[i].Owed)
		}
	}
}

func TestLeaderboard_TiesKeepFirstSeenOrder(t *testing.T) {
	now := time.Now()
	incidents := []domain.Incident{
		inc("Rosa", false, now),
		inc("Kim", false, now),
		inc("Alex", false, now),
		inc("Alex", false, now),
		inc("Sam", true, now),
		inc("Kim", true, now),
	}

	board := Leaderboard(incidents, 0)

	names := make([]string, len(board))
	for i, p := range board {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Alex", "Rosa", "Kim", "Sam"}, names)
	assert.Equal(t, domain.PersonStats{Name: "Kim", Total: 2, Owed: 1, Delivered: 1, DeliveryRate: 50}, board[2])
}

func TestLeaderboard_ExactNameMatchOnly(t *testing.T) {
	now := time.Now()
	board := Leaderboard([]domain.Incident{inc("Alex", false, now), inc("alex", false, now), inc("Alex ", false, now)}, 0)
	assert.Len(t, board, 3)
}

func TestLeaderboard_Limit(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	incidents := randomIncidents(r, 100)

	assert.Len(t, Leaderboard(incidents, 5), 5)
	assert.Len(t, Leaderboard(incidents, 0), 6)
	assert.Empty(t, Leaderboard(nil, 5))
}

func TestLeaderboard_IsPure(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	incidents := randomIncidents(r, 25)
	snapshot := append([]domain.Incident(nil), incidents...)

	first := Leaderboard(incidents, 5)
	second := Leaderboard(incidents, 5)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, incidents)
}

func TestPersonRanking_OrderedByTotal(t *testing.T) {
	now := time.Now()
	incidents := []domain.Incident{
		inc("Alex", false, now),
		inc("Sam", true, now),
		inc("Sam", true, now),
		inc("Sam", false, now),
		inc("Rosa", true, now),
		inc("Rosa", true, now),
	}

	ranking := PersonRanking(incidents, 10)

	require.Len(t, ranking, 3)
	assert.Equal(t, "Sam", ranking[0].Name)
	assert.Equal(t, 67, ranking[0].DeliveryRate)
	assert.Equal(t, "Rosa", ranking[1].Name)
	assert.Equal(t, 100, ranking[1].DeliveryRate)
	assert.Equal(t, "Alex", ranking[2].Name)
	assert.Equal(t, 0, ranking[2].DeliveryRate)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	s := Summarize([]domain.Incident{
		inc("Alex", false, now),
		inc("Sam", true, now),
		inc("Sam", false, now),
	})
	assert.Equal(t, 3, s.TotalIncidents)
	assert.Equal(t, 2, s.TotalOwed)
	assert.Equal(t, 1, s.TotalDelivered)
	assert.Equal(t, 33, s.DeliveryRate)

	assert.Equal(t, domain.Summary{}, Summarize(nil))
}

func TestActiveDebtors(t *testing.T) {
	assert.Equal(t, 2, ActiveDebtors([]domain.PersonStats{{Owed: 1}, {Owed: 0}, {Owed: 3}}))
	assert.Equal(t, 0, ActiveDebtors(nil))
}

func TestStartOfWeek(t *testing.T) {
	// 2026-10-15 is a Thursday
	thu := time.Date(2026, 10, 15, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), StartOfWeek(thu))

	mon := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mon, StartOfWeek(mon))

	sun := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, mon, StartOfWeek(sun))
}

func TestWeeklySeries_DenseMondayWeeks(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	series := WeeklySeries(nil, 3, now, time.UTC)

	// 2026-07-01 is a Wednesday, so the first bucket starts Monday 2026-06-29
	require.Len(t, series, 16)
	assert.Equal(t, time.Date(2026, 6, 29, 0, 0, 0, 0, time.UTC), series[0].WeekStart)
	assert.Equal(t, "Jun 29", series[0].Week)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), series[len(series)-1].WeekStart)

	for i, b := range series {
		assert.Equal(t, time.Monday, b.WeekStart.Weekday())
		assert.Equal(t, 0, b.Total)
		assert.Equal(t, b.WeekStart.AddDate(0, 0, 7).Add(-time.Nanosecond), b.WeekEnd)
		if i > 0 {
			assert.Equal(t, series[i-1].WeekStart.AddDate(0, 0, 7), b.WeekStart)
		}
	}
}

func TestWeeklySeries_CountsInclusiveBoundaries(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	firstMonday := time.Date(2026, 6, 29, 0, 0, 0, 0, time.UTC)

	incidents := []domain.Incident{
		inc("Alex", false, firstMonday.Add(-time.Nanosecond)),
		inc("Alex", false, firstMonday),
		inc("Sam", true, firstMonday.AddDate(0, 0, 7).Add(-time.Nanosecond)),
		inc("Sam", false, firstMonday.AddDate(0, 0, 7)),
		inc("Rosa", true, time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)),
	}

	series := WeeklySeries(incidents, 3, now, time.UTC)

	type counts struct{ Delivered, Owed, Total int }
	got := make([]counts, len(series))
	for i, b := range series {
		got[i] = counts{b.Delivered, b.Owed, b.Total}
	}
	want := make([]counts, 16)
	want[0] = counts{Delivered: 1, Owed: 1, Total: 2}
	want[1] = counts{Owed: 1, Total: 1}
	want[15] = counts{Delivered: 1, Total: 1}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("weekly counts mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklySeries_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, loc)
	// Sunday 20:00 UTC is already Monday 06:00 at UTC+10
	at := time.Date(2026, 10, 11, 20, 0, 0, 0, time.UTC)

	series := WeeklySeries([]domain.Incident{inc("Alex", false, at)}, 0, now, loc)

	last := series[len(series)-1]
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, loc), last.WeekStart)
	assert.Equal(t, 1, last.Owed)
}

func TestWeeklySeries_YearBoundary(t *testing.T) {
	now := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

	series := WeeklySeries(nil, 12, now, time.UTC)

	// 2025-02-01 is a Saturday
	assert.Equal(t, time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), series[0].WeekStart)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), series[len(series)-1].WeekStart)
}

func TestTimeRange(t *testing.T) {
	r, ok := ParseTimeRange("3months")
	assert.True(t, ok)
	assert.Equal(t, 3, r.MonthsBack())
	assert.Equal(t, "Last 3 Months", r.Label())

	r, ok = ParseTimeRange("1year")
	assert.True(t, ok)
	assert.Equal(t, 12, r.MonthsBack())

	r, ok = ParseTimeRange("forever")
	assert.False(t, ok)
	assert.Equal(t, DefaultTimeRange, r)
	assert.Equal(t, 6, r.MonthsBack())
	assert.Equal(t, "Last 6 Months", r.Label())
}
