package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cake-tracker/internal/aggregate"
	"cake-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultSizes = DashboardSizes{Leaderboard: 5, Recent: 10, Ranking: 10}

func TestDashboardService_AlexToggleLeavesLeaderboardTop(t *testing.T) {
	l, _ := seededLifecycle(t,
		domain.Incident{ID: "s1", PersonName: "Sam"},
	)
	svc := NewDashboardService(l, defaultSizes, time.UTC)
	ctx := context.Background()

	inc, err := l.Create(ctx, "Alex", "")
	require.NoError(t, err)
	_, err = l.Create(ctx, "Alex", "")
	require.NoError(t, err)

	d := svc.Dashboard()
	require.NotEmpty(t, d.Leaderboard)
	assert.Equal(t, "Alex", d.Leaderboard[0].Name)
	assert.Equal(t, 2, d.Leaderboard[0].Owed)
	assert.Equal(t, "Alex", d.Summary.TopDebtor)

	for _, row := range l.Incidents() {
		if row.PersonName == "Alex" {
			_, err := l.ToggleDelivered(ctx, row.ID, true)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, inc.ID, l.Incidents()[1].ID)

	d = svc.Dashboard()
	assert.Equal(t, "Sam", d.Leaderboard[0].Name)
	assert.Equal(t, 1, d.Summary.ActiveDebtors)
	assert.Equal(t, 2, d.Summary.TotalDelivered)
	assert.Equal(t, 67, d.Summary.DeliveryRate)
}

func TestDashboardService_Limits(t *testing.T) {
	var seed []domain.Incident
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		seed = append(seed, domain.Incident{
			PersonName: fmt.Sprintf("p%02d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	l, _ := seededLifecycle(t, seed...)
	svc := NewDashboardService(l, defaultSizes, time.UTC)

	d := svc.Dashboard()
	assert.Len(t, d.Leaderboard, 5)
	assert.Len(t, d.Recent, 10)
	assert.Equal(t, "p13", d.Recent[0].PersonName)
	assert.Equal(t, 5, d.Summary.ActiveDebtors)
	assert.Equal(t, 14, d.Summary.TotalIncidents)

	s := svc.Stats(aggregate.Range3Months)
	assert.Len(t, s.People, 10)
}

func TestDashboardService_EmptyList(t *testing.T) {
	l, _ := seededLifecycle(t)
	svc := NewDashboardService(l, defaultSizes, time.UTC)

	d := svc.Dashboard()
	require.NotNil(t, d.Leaderboard)
	require.NotNil(t, d.Recent)
	assert.Empty(t, d.Leaderboard)
	assert.Empty(t, d.Recent)
	assert.Equal(t, 0, d.Summary.DeliveryRate)
	assert.Empty(t, d.Summary.TopDebtor)
}

func TestDashboardService_Stats(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	l, _ := seededLifecycle(t,
		domain.Incident{PersonName: "Alex", CakeDelivered: true, CreatedAt: now.AddDate(0, 0, -20)},
		domain.Incident{PersonName: "Alex", CreatedAt: now.AddDate(0, 0, -2)},
		domain.Incident{PersonName: "Sam", CreatedAt: now.AddDate(0, 0, -1)},
		domain.Incident{PersonName: "Old", CreatedAt: now.AddDate(-2, 0, 0)},
	)
	svc := NewDashboardService(l, defaultSizes, time.UTC)
	svc.now = func() time.Time { return now }

	s := svc.Stats(aggregate.Range3Months)
	assert.Equal(t, aggregate.Range3Months, s.TimeRange)
	assert.Equal(t, aggregate.Range3Months.Label(), s.TimeRangeLabel)
	assert.Equal(t, "Alex", s.Summary.TopDebtor)
	assert.Equal(t, 4, s.Summary.TotalIncidents)
	assert.Equal(t, 3, s.Summary.ActiveDebtors)

	var inWindow int
	for _, b := range s.Weekly {
		inWindow += b.Total
	}
	// the two-year-old incident falls outside every bucket
	assert.Equal(t, 3, inWindow)
	assert.True(t, aggregate.StartOfWeek(now).Equal(s.Weekly[len(s.Weekly)-1].WeekStart))
}

func TestDashboardService_ExportData(t *testing.T) {
	l, _ := seededLifecycle(t,
		domain.Incident{PersonName: "Alex"},
		domain.Incident{PersonName: "Sam"},
		domain.Incident{PersonName: "Sam"},
	)
	svc := NewDashboardService(l, DashboardSizes{Leaderboard: 1}, time.UTC)

	incidents, board := svc.ExportData()
	assert.Len(t, incidents, 3)
	require.Len(t, board, 2)
	assert.Equal(t, "Sam", board[0].Name)
}
