package lookup

import (
	"fmt"
	"slices"
	"strings"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

// Itinerary limits and defaults.
const (
	MinItineraryDays = 1
	MaxItineraryDays = 14

	baseDayCost       = 50
	minPerDay         = 2
	itineraryCurated  = "curated_template"
	itineraryCustom   = "custom_generated"
	itineraryTransfer = "Public transport + Walking"
)

var defaultMeals = []string{"Local breakfast", "Regional lunch", "Traditional dinner"}

// interestCategories maps interest keywords to attraction categories.
var interestCategories = []struct {
	keyword  string
	category string
}{
	{"histor", "Historical"},
	{"museum", "Museum"},
	{"art", "Museum"},
	{"cultur", "Cultural"},
	{"relig", "Religious"},
	{"church", "Religious"},
	{"temple", "Religious"},
	{"shop", "Shopping"},
	{"market", "Market"},
	{"food", "Market"},
	{"nature", "Nature"},
	{"park", "Nature"},
	{"architect", "Architecture"},
	{"entertain", "Entertainment"},
	{"nightlife", "Entertainment"},
	{"landmark", "Landmark"},
	{"sightseeing", "Landmark"},
}

// ItineraryQuery asks for a day-by-day plan.
type ItineraryQuery struct {
	City      string
	Days      int
	Budget    *int
	Interests string
}

// Itinerary is a day-by-day plan for one city.
type Itinerary struct {
	City                string         `json:"city"`
	Country             string         `json:"country"`
	DurationDays        int            `json:"duration_days"`
	Type                string         `json:"itinerary_type,omitempty"`
	Days                []DayPlan      `json:"itinerary"`
	TotalEstimatedCost  int            `json:"total_estimated_cost"`
	DailyAverageCost    float64        `json:"daily_average_cost"`
	AttractionsIncluded int            `json:"attractions_included,omitempty"`
	Customization       map[string]any `json:"customization,omitempty"`
	Budget              *int           `json:"budget,omitempty"`
	WithinBudget        *bool          `json:"within_budget,omitempty"`
	Notes               string         `json:"notes"`
}

// CreateItinerary returns the curated template for the requested length when
// one exists, otherwise a plan generated from the city's attractions.
func (s *Service) CreateItinerary(q ItineraryQuery) (*Itinerary, error) {
	c, err := s.city(q.City)
	if err != nil {
		return nil, err
	}
	if q.Days < MinItineraryDays || q.Days > MaxItineraryDays {
		return nil, domainerrors.NewValidationError(
			fmt.Sprintf("duration must be between %d and %d days", MinItineraryDays, MaxItineraryDays),
			fmt.Sprint(q.Days))
	}
	if q.Budget != nil && *q.Budget < 0 {
		return nil, domainerrors.NewValidationError("budget must not be negative", fmt.Sprint(*q.Budget))
	}

	it := &Itinerary{City: c.name, Country: c.country, DurationDays: q.Days, Days: []DayPlan{}}

	if plan, ok := c.templates[fmt.Sprintf("%d_days", q.Days)]; ok && len(plan) > 0 {
		it.Type = itineraryCurated
		it.Days = slices.Clone(plan)
		it.Notes = "This is a curated itinerary template based on popular attractions and activities."
	} else if len(c.attractions) < q.Days*minPerDay {
		it.Notes = fmt.Sprintf("Insufficient attraction data for %d days in %s. Try a shorter duration or a different destination.", q.Days, c.name)
	} else {
		it.Type = itineraryCustom
		it.Days, it.AttractionsIncluded = generateDays(c, q.Days, interestPriority(q.Interests))
		it.Customization = map[string]any{"interests": strings.TrimSpace(q.Interests), "variety_achieved": categoryCount(c.attractions)}
		it.Notes = "This is a custom itinerary generated from available attractions data."
	}

	for _, d := range it.Days {
		it.TotalEstimatedCost += d.EstimatedCost
	}
	it.DailyAverageCost = round(float64(it.TotalEstimatedCost)/float64(q.Days), 2)

	if q.Budget != nil {
		within := it.TotalEstimatedCost <= *q.Budget
		it.Budget = q.Budget
		it.WithinBudget = &within
	}
	return it, nil
}

// interestPriority lists the categories named by free-text interests in
// first-mention order.
func interestPriority(interests string) []string {
	text := strings.ToLower(interests)
	var out []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
		for _, ic := range interestCategories {
			if strings.HasPrefix(w, ic.keyword) && !slices.Contains(out, ic.category) {
				out = append(out, ic.category)
			}
		}
	}
	return out
}

func categoryCount(attractions []Attraction) int {
	seen := map[string]struct{}{}
	for _, a := range attractions {
		seen[a.Category] = struct{}{}
	}
	return len(seen)
}

// generateDays spreads attractions over days, taking one per category in
// turn for variety before filling remaining slots in rating order.
func generateDays(c *cityIndex, days int, priority []string) ([]DayPlan, int) {
	perDay := max(minPerDay, len(c.attractions)/days)

	var order []string
	byCategory := map[string][]Attraction{}
	for _, a := range c.attractions {
		if _, ok := byCategory[a.Category]; !ok {
			order = append(order, a.Category)
		}
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}
	// Preferred categories go first, the rest keep their best-rated order.
	slices.SortStableFunc(order, func(a, b string) int {
		ia, ib := slices.Index(priority, a), slices.Index(priority, b)
		if ia < 0 {
			ia = len(priority)
		}
		if ib < 0 {
			ib = len(priority)
		}
		return ia - ib
	})

	used := map[string]bool{}
	next := func(pool []Attraction) (Attraction, bool) {
		for _, a := range pool {
			if !used[a.ID] {
				return a, true
			}
		}
		return Attraction{}, false
	}

	plans := make([]DayPlan, 0, days)
	for day := 1; day <= days; day++ {
		var picked []Attraction
		for _, cat := range order {
			if len(picked) >= perDay {
				break
			}
			if a, ok := next(byCategory[cat]); ok {
				picked = append(picked, a)
				used[a.ID] = true
			}
		}
		for len(picked) < perDay {
			a, ok := next(c.attractions)
			if !ok {
				break
			}
			picked = append(picked, a)
			used[a.ID] = true
		}

		plan := DayPlan{
			Day:            day,
			Title:          fmt.Sprintf("Day %d - %s Exploration", day, c.name),
			Activities:     make([]string, 0, len(picked)),
			Attractions:    picked,
			Meals:          slices.Clone(defaultMeals),
			EstimatedCost:  baseDayCost,
			Transportation: itineraryTransfer,
		}
		for _, a := range picked {
			plan.Activities = append(plan.Activities, a.Name)
			plan.EstimatedCost += a.EntryFee
			plan.DurationHours += a.DurationHours
		}
		plans = append(plans, plan)
	}
	return plans, len(used)
}
