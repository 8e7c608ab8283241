package service

import (
	"time"

	"cake-tracker/internal/aggregate"
	"cake-tracker/internal/domain"
)

// DashboardSizes how many rows each view shows
type DashboardSizes struct {
	Leaderboard int
	Recent      int
	Ranking     int
}

// DashboardService 首页与统计页的派生视图，每次请求基于当前列表重新计算
type DashboardService struct {
	lifecycle *IncidentLifecycle
	sizes     DashboardSizes
	loc       *time.Location
	now       func() time.Time
}

func NewDashboardService(lifecycle *IncidentLifecycle, sizes DashboardSizes, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{lifecycle: lifecycle, sizes: sizes, loc: loc, now: time.Now}
}

type Dashboard struct {
	Summary     domain.Summary       `json:"summary"`
	Leaderboard []domain.PersonStats `json:"leaderboard"`
	Recent      []domain.Incident    `json:"recent"`
}

type Stats struct {
	TimeRange      aggregate.TimeRange  `json:"time_range"`
	TimeRangeLabel string               `json:"time_range_label"`
	Summary        domain.Summary       `json:"summary"`
	People         []domain.PersonStats `json:"people"`
	Weekly         []domain.WeekBucket  `json:"weekly"`
}

func (s *DashboardService) Dashboard() Dashboard {
	incidents := s.lifecycle.Incidents()

	board := aggregate.Leaderboard(incidents, s.sizes.Leaderboard)
	summary := aggregate.Summarize(incidents)
	summary.ActiveDebtors = aggregate.ActiveDebtors(board)
	if len(board) > 0 && board[0].Owed > 0 {
		summary.TopDebtor = board[0].Name
	}

	recent := incidents
	if s.sizes.Recent > 0 && len(recent) > s.sizes.Recent {
		recent = recent[:s.sizes.Recent]
	}

	return Dashboard{Summary: summary, Leaderboard: board, Recent: recent}
}

func (s *DashboardService) Stats(r aggregate.TimeRange) Stats {
	incidents := s.lifecycle.Incidents()

	people := aggregate.PersonRanking(incidents, s.sizes.Ranking)
	summary := aggregate.Summarize(incidents)
	summary.ActiveDebtors = aggregate.ActiveDebtors(aggregate.Leaderboard(incidents, 0))
	if len(people) > 0 {
		summary.TopDebtor = people[0].Name
	}

	return Stats{
		TimeRange:      r,
		TimeRangeLabel: r.Label(),
		Summary:        summary,
		People:         people,
		Weekly:         aggregate.WeeklySeries(incidents, r.MonthsBack(), s.now(), s.loc),
	}
}

// ExportData returns every incident and the full owed leaderboard.
func (s *DashboardService) ExportData() ([]domain.Incident, []domain.PersonStats) {
	incidents := s.lifecycle.Incidents()
	return incidents, aggregate.Leaderboard(incidents, 0)
}
