package lookup

import (
	"fmt"
	"slices"
	"strings"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

// Recommendation levels.
const (
	LevelExcellent      = "excellent"
	LevelGood           = "good"
	LevelFair           = "fair"
	LevelNotRecommended = "not_recommended"
)

// fallbackWeather applies when the profiles file carries no default calendar.
var fallbackWeather = WeatherCalendar{
	BestMonths:       []string{"April", "May", "September", "October"},
	GoodMonths:       []string{"March", "June", "November"},
	AvoidMonths:      []string{"December", "January", "February"},
	Info:             "Generally pleasant weather for travel",
	PeakSeason:       "April-October",
	TemperatureRange: "Variable",
	Rainfall:         "Seasonal variation",
}

// WeatherAdvice is the answer to a weather question.
type WeatherAdvice struct {
	City           string          `json:"city"`
	Country        string          `json:"country"`
	Month          string          `json:"travel_month,omitempty"`
	Level          string          `json:"recommendation_level,omitempty"`
	Recommendation string          `json:"recommendation"`
	Details        WeatherCalendar `json:"weather_details"`
	Tips           []string        `json:"travel_tips"`
}

// WeatherRecommendation rates month for visiting city. An empty month returns
// the calendar with a general recommendation and no level.
func (s *Service) WeatherRecommendation(city, month string) (*WeatherAdvice, error) {
	c, err := s.city(city)
	if err != nil {
		return nil, err
	}

	normalized := ""
	if strings.TrimSpace(month) != "" {
		var ok bool
		if normalized, ok = ParseMonth(month); !ok {
			return nil, domainerrors.NewValidationError(
				"invalid month, must be one of: "+strings.Join(Months, ", "), month)
		}
	}

	cal := s.defaultWeather
	if c.profile != nil && c.profile.Weather != nil {
		cal = *c.profile.Weather
	}

	advice := &WeatherAdvice{
		City:    c.name,
		Country: c.country,
		Month:   normalized,
		Details: cal,
		Tips: []string{
			fmt.Sprintf("Peak season: %s - expect higher prices and crowds", orDefault(cal.PeakSeason, "N/A")),
			"Best weather: " + strings.Join(cal.BestMonths, ", "),
			"Temperature range: " + orDefault(cal.TemperatureRange, "Variable"),
			"Book accommodations early during peak months",
		},
	}

	best := strings.Join(cal.BestMonths[:min(3, len(cal.BestMonths))], ", ")
	switch {
	case normalized == "":
		advice.Recommendation = fmt.Sprintf("The best months to visit %s are %s.", c.name, strings.Join(cal.BestMonths, ", "))
	case slices.Contains(cal.BestMonths, normalized):
		advice.Level = LevelExcellent
		advice.Recommendation = fmt.Sprintf("Excellent time to visit %s! %s is one of the best months.", c.name, normalized)
	case slices.Contains(cal.GoodMonths, normalized):
		advice.Level = LevelGood
		advice.Recommendation = fmt.Sprintf("Good time to visit %s. %s offers decent weather conditions.", c.name, normalized)
	case slices.Contains(cal.AvoidMonths, normalized):
		advice.Level = LevelNotRecommended
		advice.Recommendation = fmt.Sprintf("Not the ideal time for %s. Consider visiting during: %s", c.name, best)
	default:
		advice.Level = LevelFair
		advice.Recommendation = fmt.Sprintf("Fair time to visit %s, though %s would be better.", c.name, best)
	}
	return advice, nil
}

// ParseMonth accepts a full or three letter month name in any case.
func ParseMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, m := range Months {
		if strings.EqualFold(m, s) || (len(s) == 3 && strings.EqualFold(m[:3], s)) {
			return m, true
		}
	}
	return "", false
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
