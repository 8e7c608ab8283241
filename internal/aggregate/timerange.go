package aggregate

// TimeRange is the stats page window selector.
type TimeRange string

const (
	Range3Months TimeRange = "3months"
	Range6Months TimeRange = "6months"
	Range1Year   TimeRange = "1year"

	DefaultTimeRange = Range6Months
)

// ParseTimeRange accepts the three known ranges; anything else yields the default and false.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch TimeRange(s) {
	case Range3Months, Range6Months, Range1Year:
		return TimeRange(s), true
	}
	return DefaultTimeRange, false
}

func (r TimeRange) MonthsBack() int {
	switch r {
	case Range3Months:
		return 3
	case Range1Year:
		return 12
	default:
		return 6
	}
}

func (r TimeRange) Label() string {
	switch r {
	case Range3Months:
		return "Last 3 Months"
	case Range1Year:
		return "Last 1 Year"
	default:
		return "Last 6 Months"
	}
}
