// Package aggregate derives the dashboard and statistics views from a fully
// loaded incident list. Every function here is pure: the same incidents and
// parameters always produce the same output.
package aggregate

import (
	"math"
	"sort"
	"time"

	"cake-tracker/internal/domain"
)

// groupByPerson groups by exact person_name, in first-seen order.
func groupByPerson(incidents []domain.Incident) []domain.PersonStats {
	index := map[string]int{}
	stats := []domain.PersonStats{}
	for _, inc := range incidents {
		i, ok := index[inc.PersonName]
		if !ok {
			i = len(stats)
			index[inc.PersonName] = i
			stats = append(stats, domain.PersonStats{Name: inc.PersonName})
		}
		stats[i].Total++
		if inc.CakeDelivered {
			stats[i].Delivered++
		} else {
			stats[i].Owed++
		}
	}
	for i := range stats {
		stats[i].DeliveryRate = percent(stats[i].Delivered, stats[i].Total)
	}
	return stats
}

func truncate(stats []domain.PersonStats, limit int) []domain.PersonStats {
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// Leaderboard ranks people by outstanding cake debt, highest first. Ties keep
// first-seen order. limit <= 0 returns everyone.
func Leaderboard(incidents []domain.Incident, limit int) []domain.PersonStats {
	stats := groupByPerson(incidents)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Owed > stats[j].Owed
	})
	return truncate(stats, limit)
}

// PersonRanking ranks people by total incidents, highest first (stats page).
func PersonRanking(incidents []domain.Incident, limit int) []domain.PersonStats {
	stats := groupByPerson(incidents)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})
	return truncate(stats, limit)
}

// Summarize computes the headline totals. ActiveDebtors and TopDebtor depend
// on which ranking a page shows, so callers fill them in.
func Summarize(incidents []domain.Incident) domain.Summary {
	s := domain.Summary{TotalIncidents: len(incidents)}
	for _, inc := range incidents {
		if inc.CakeDelivered {
			s.TotalDelivered++
		} else {
			s.TotalOwed++
		}
	}
	s.DeliveryRate = percent(s.TotalDelivered, s.TotalIncidents)
	return s
}

// ActiveDebtors counts entries that still owe at least one cake.
func ActiveDebtors(stats []domain.PersonStats) int {
	n := 0
	for _, p := range stats {
		if p.Owed > 0 {
			n++
		}
	}
	return n
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// WeekLabelLayout formats WeekBucket.Week.
const WeekLabelLayout = "Jan 02"

// StartOfWeek returns Monday 00:00 of the week containing t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// WeeklySeries buckets incidents by created_at into Monday-starting weeks,
// from the week containing the first day of the month monthsBack months
// before now, through the week containing now. The series is dense: weeks
// without incidents are present with zero counts.
func WeeklySeries(incidents []domain.Incident, monthsBack int, now time.Time, loc *time.Location) []domain.WeekBucket {
	if loc == nil {
		loc = time.Local
	}
	if monthsBack < 0 {
		monthsBack = 0
	}
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, loc)

	buckets := []domain.WeekBucket{}
	for ws := StartOfWeek(start); !ws.After(now); ws = ws.AddDate(0, 0, 7) {
		buckets = append(buckets, domain.WeekBucket{
			Week:      ws.Format(WeekLabelLayout),
			WeekStart: ws,
			WeekEnd:   ws.AddDate(0, 0, 7).Add(-time.Nanosecond),
		})
	}
	if len(buckets) == 0 {
		return buckets
	}

	first := buckets[0].WeekStart
	last := buckets[len(buckets)-1].WeekEnd
	for _, inc := range incidents {
		at := inc.CreatedAt
		if at.Before(first) || at.After(last) {
			continue
		}
		// first bucket whose end is not before the incident
		i := sort.Search(len(buckets), func(i int) bool {
			return !buckets[i].WeekEnd.Before(at)
		})
		b := &buckets[i]
		b.Total++
		if inc.CakeDelivered {
			b.Delivered++
		} else {
			b.Owed++
		}
	}

	return buckets
}
