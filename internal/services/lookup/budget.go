package lookup

import (
	"fmt"
	"slices"
	"strings"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

// Budget estimate limits and defaults.
const (
	MinBudgetDays = 1
	MaxBudgetDays = 30

	defaultMealCost       = 50
	defaultTransportCost  = 20
	defaultAttractionFee  = 20
	attractionsPerDay     = 2.5
	miscellaneousFraction = 0.15
	currencyUSD           = "USD"
)

var fallbackNightly = map[string]float64{
	CategoryLuxury:   400,
	CategoryMidRange: 150,
	CategoryBudget:   60,
}

// BudgetQuery asks for a trip cost estimate.
type BudgetQuery struct {
	City     string
	Days     int
	Category string
}

// CostLine is one component of a budget.
type CostLine struct {
	Total      float64 `json:"total"`
	Daily      float64 `json:"daily"`
	Percentage float64 `json:"percentage"`
	Category   string  `json:"category,omitempty"`
	PerItem    float64 `json:"avg_per_attraction,omitempty"`
}

// BudgetBreakdown splits an estimate by spending category.
type BudgetBreakdown struct {
	Accommodation  CostLine `json:"accommodation"`
	Attractions    CostLine `json:"attractions"`
	Meals          CostLine `json:"meals"`
	Transportation CostLine `json:"transportation"`
	Miscellaneous  CostLine `json:"miscellaneous"`
	Total          float64  `json:"total"`
}

// BudgetEstimate is the answer to a BudgetQuery.
type BudgetEstimate struct {
	City                  string             `json:"city"`
	Country               string             `json:"country"`
	DurationDays          int                `json:"duration_days"`
	AccommodationCategory string             `json:"accommodation_category"`
	Breakdown             BudgetBreakdown    `json:"budget_breakdown"`
	DailyAverage          float64            `json:"daily_average"`
	CategoryComparisons   map[string]float64 `json:"category_comparisons"`
	Tips                  []string           `json:"budget_tips"`
	Currency              string             `json:"currency"`
}

// EstimateBudget prices a stay of q.Days in q.City.
func (s *Service) EstimateBudget(q BudgetQuery) (*BudgetEstimate, error) {
	c, err := s.city(q.City)
	if err != nil {
		return nil, err
	}
	if q.Days < MinBudgetDays || q.Days > MaxBudgetDays {
		return nil, domainerrors.NewValidationError(
			fmt.Sprintf("duration must be between %d and %d days", MinBudgetDays, MaxBudgetDays),
			fmt.Sprint(q.Days))
	}
	category := strings.ToLower(strings.TrimSpace(q.Category))
	if category == "" {
		category = CategoryMidRange
	}
	if !slices.Contains(HotelCategories, category) {
		return nil, domainerrors.NewValidationError(
			"accommodation category must be one of: "+strings.Join(HotelCategories, ", "), q.Category)
	}

	days := float64(q.Days)
	nightly := s.nightlyRate(c, category)
	feePerAttraction := averageFee(c.attractions, q.Days*3)

	mealDaily, transportDaily := float64(defaultMealCost), float64(defaultTransportCost)
	if p := c.profile; p != nil {
		if p.MealCost > 0 {
			mealDaily = float64(p.MealCost)
		}
		if p.TransportCost > 0 {
			transportDaily = float64(p.TransportCost)
		}
	}

	accommodation := nightly * days
	attractions := feePerAttraction * days * attractionsPerDay
	meals := mealDaily * days
	transport := transportDaily * days
	subtotal := accommodation + attractions + meals + transport
	misc := subtotal * miscellaneousFraction
	total := subtotal + misc

	line := func(amount, daily float64) CostLine {
		return CostLine{Total: round(amount, 2), Daily: round(daily, 2), Percentage: round(amount/total*100, 1)}
	}

	b := BudgetBreakdown{
		Accommodation:  line(accommodation, accommodation/days),
		Attractions:    line(attractions, attractions/days),
		Meals:          line(meals, mealDaily),
		Transportation: line(transport, transportDaily),
		Miscellaneous:  line(misc, misc/days),
		Total:          round(total, 2),
	}
	b.Accommodation.Category = category
	b.Attractions.PerItem = round(feePerAttraction, 2)

	return &BudgetEstimate{
		City:                  c.name,
		Country:               c.country,
		DurationDays:          q.Days,
		AccommodationCategory: category,
		Breakdown:             b,
		DailyAverage:          round(total/days, 2),
		CategoryComparisons: map[string]float64{
			CategoryBudget:   round(total*0.7, 2),
			CategoryMidRange: round(total, 2),
			CategoryLuxury:   round(total*1.5, 2),
		},
		Tips: []string{
			fmt.Sprintf("Accommodation represents %s%% of your budget", formatNumber(b.Accommodation.Percentage)),
			"Consider visiting during off-peak season for 20-30% savings",
			fmt.Sprintf("Free attractions can reduce costs by $%s", formatNumber(round(attractions*0.3, 2))),
			fmt.Sprintf("Street food and local eateries can save $%s", formatNumber(round(meals*0.4, 2))),
		},
		Currency: currencyUSD,
	}, nil
}

// nightlyRate is the average price of the city's available hotels in category, or a
// base price scaled by the city's cost multiplier when it has none.
func (s *Service) nightlyRate(c *cityIndex, category string) float64 {
	var sum, n int
	for _, h := range c.hotels {
		if h.Category == category && h.Available {
			sum += h.PricePerNight
			n++
		}
	}
	if n > 0 {
		return float64(sum / n)
	}
	multiplier := 1.0
	if c.profile != nil && c.profile.PriceMultiplier > 0 {
		multiplier = c.profile.PriceMultiplier
	}
	return float64(int(fallbackNightly[category] * multiplier))
}

// averageFee averages the entry fee of the first limit attractions in rating order.
func averageFee(attractions []Attraction, limit int) float64 {
	if len(attractions) == 0 {
		return defaultAttractionFee
	}
	sample := attractions[:min(limit, len(attractions))]
	var sum int
	for _, a := range sample {
		sum += a.EntryFee
	}
	return float64(sum) / float64(len(sample))
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
