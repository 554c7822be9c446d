package simulator

import (
	"math"
	"time"
)

// Pattern shapes the base utilization for a given point in time.
type Pattern interface {
	Apply(base float64, at time.Time) float64
	Name() string
}

var (
	PatternSteady Pattern = &SteadyPattern{}
	PatternDaily  Pattern = &DailyPattern{}
	PatternWeekly Pattern = &WeeklyPattern{}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "weekly":
		return PatternWeekly
	case "gradual_rise":
		return &GradualRisePattern{}
	default:
		return PatternSteady
	}
}

// SteadyPattern keeps load constant
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(base float64, at time.Time) float64 {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern follows a business-hours traffic cycle
type DailyPattern struct{}

func (p *DailyPattern) Apply(base float64, at time.Time) float64 {
	hour := at.Hour()

	// Peak hours 9-11 and 14-16, quiet overnight
	var modifier float64
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour >= 0 && hour <= 6:
		modifier = 0.6
	default:
		modifier = 1.0
	}

	return clamp(base * modifier)
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// WeeklyPattern adds weekend reduction on top of the daily cycle
type WeeklyPattern struct{}

func (p *WeeklyPattern) Apply(base float64, at time.Time) float64 {
	weekday := at.Weekday()

	if weekday == time.Saturday || weekday == time.Sunday {
		return clamp(base * 0.5)
	}

	return PatternDaily.Apply(base, at)
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// GradualRisePattern ramps load up over a week, for testing trend
// handling.
type GradualRisePattern struct{}

func (p *GradualRisePattern) Apply(base float64, at time.Time) float64 {
	weekStart := at.Truncate(24 * time.Hour).AddDate(0, 0, -int(at.Weekday()))
	elapsed := at.Sub(weekStart).Hours()
	rise := 1.0 + math.Min(elapsed/168, 1.0)*0.5

	return clamp(base * rise)
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
