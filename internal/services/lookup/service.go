// Package lookup answers travel queries over read-only hotel, attraction,
// itinerary and city datasets loaded once at startup.
package lookup

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

// ErrUnknownCity is wrapped by every error about a destination missing from the datasets.
var ErrUnknownCity = errors.New("unknown city")

type cityIndex struct {
	name        string
	country     string
	hotels      []Hotel
	attractions []Attraction
	templates   map[string][]DayPlan
	profile     *CityProfile
}

// Service holds the immutable indices. All methods are safe for concurrent use.
type Service struct {
	cities         map[string]*cityIndex
	names          []string
	defaultWeather WeatherCalendar
}

// NewService indexes a dataset by city.
func NewService(ds *Dataset) (*Service, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if len(ds.Hotels) == 0 && len(ds.Attractions) == 0 {
		return nil, fmt.Errorf("dataset contains no hotels or attractions")
	}

	s := &Service{cities: make(map[string]*cityIndex)}
	city := func(name, country string) *cityIndex {
		key := normalizeCity(name)
		c, ok := s.cities[key]
		if !ok {
			c = &cityIndex{name: strings.TrimSpace(name), country: country}
			s.cities[key] = c
		}
		if c.country == "" {
			c.country = country
		}
		return c
	}

	for _, h := range ds.Hotels {
		if h.City == "" {
			return nil, fmt.Errorf("hotel %s has no city", h.ID)
		}
		c := city(h.City, h.Country)
		c.hotels = append(c.hotels, h)
	}
	for _, a := range ds.Attractions {
		if a.City == "" {
			return nil, fmt.Errorf("attraction %s has no city", a.ID)
		}
		c := city(a.City, a.Country)
		c.attractions = append(c.attractions, a)
	}

	// Templates and profiles only describe cities that have records.
	for name, templates := range ds.Templates {
		if c, ok := s.cities[normalizeCity(name)]; ok {
			c.templates = templates
		}
	}
	for i := range ds.Profiles {
		p := ds.Profiles[i]
		if c, ok := s.cities[normalizeCity(p.City)]; ok {
			c.profile = &p
		}
	}

	for _, c := range s.cities {
		slices.SortFunc(c.hotels, compareHotels)
		slices.SortFunc(c.attractions, compareAttractions)
		s.names = append(s.names, c.name)
	}
	slices.Sort(s.names)

	if ds.DefaultWeather != nil {
		s.defaultWeather = *ds.DefaultWeather
	} else {
		s.defaultWeather = fallbackWeather
	}
	return s, nil
}

// Hotels sort by rating descending, then price, name and id ascending.
func compareHotels(a, b Hotel) int {
	return cmp.Or(
		cmp.Compare(b.Rating, a.Rating),
		cmp.Compare(a.PricePerNight, b.PricePerNight),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID, b.ID),
	)
}

// Attractions sort by rating descending, then entry fee, name and id ascending.
func compareAttractions(a, b Attraction) int {
	return cmp.Or(
		cmp.Compare(b.Rating, a.Rating),
		cmp.Compare(a.EntryFee, b.EntryFee),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID, b.ID),
	)
}

func normalizeCity(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (s *Service) city(name string) (*cityIndex, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainerrors.NewValidationError("city is required", "")
	}
	c, ok := s.cities[normalizeCity(name)]
	if !ok {
		return nil, domainerrors.NewUnknownCityError(strings.TrimSpace(name), s.Cities(), ErrUnknownCity)
	}
	return c, nil
}

// Cities returns the known destination names in alphabetical order.
func (s *Service) Cities() []string {
	return slices.Clone(s.names)
}

// Destinations summarizes every known city, ordered by name.
func (s *Service) Destinations() []Destination {
	out := make([]Destination, 0, len(s.names))
	for _, name := range s.names {
		c := s.cities[normalizeCity(name)]
		out = append(out, Destination{
			City:                 c.name,
			Country:              c.country,
			HotelsAvailable:      len(c.hotels),
			AttractionsAvailable: len(c.attractions),
		})
	}
	return out
}

// HotelQuery filters hotels of one city.
type HotelQuery struct {
	City          string
	BudgetMax     *int
	Category      string
	AvailableOnly bool
}

// HotelStats summarizes a hotel result set.
type HotelStats struct {
	AveragePrice  int      `json:"average_price"`
	PriceRange    IntRange `json:"price_range"`
	AverageRating float64  `json:"average_rating"`
}

// IntRange is an inclusive range.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// HotelResults is the answer to a HotelQuery.
type HotelResults struct {
	City       string         `json:"city"`
	Country    string         `json:"country"`
	Found      int            `json:"hotels_found"`
	Hotels     []Hotel        `json:"hotels"`
	Statistics *HotelStats    `json:"statistics,omitempty"`
	Filters    map[string]any `json:"filters_applied"`
}

// SearchHotels returns the hotels of a city matching every filter. A known
// city without matches yields an empty result, not an error.
func (s *Service) SearchHotels(q HotelQuery) (*HotelResults, error) {
	c, err := s.city(q.City)
	if err != nil {
		return nil, err
	}
	if q.BudgetMax != nil && (*q.BudgetMax < 0 || *q.BudgetMax > 5000) {
		return nil, domainerrors.NewValidationError("budget_max must be between 0 and 5000 USD", fmt.Sprint(*q.BudgetMax))
	}
	category := strings.ToLower(strings.TrimSpace(q.Category))
	if category != "" && !slices.Contains(HotelCategories, category) {
		return nil, domainerrors.NewValidationError("invalid hotel category", q.Category)
	}

	hotels := []Hotel{}
	for _, h := range c.hotels {
		if q.BudgetMax != nil && h.PricePerNight > *q.BudgetMax {
			continue
		}
		if category != "" && h.Category != category {
			continue
		}
		if q.AvailableOnly && !h.Available {
			continue
		}
		hotels = append(hotels, h)
	}

	filters := map[string]any{"availability_check": q.AvailableOnly}
	if q.BudgetMax != nil {
		filters["budget_max"] = *q.BudgetMax
	}
	if category != "" {
		filters["category"] = category
	}

	return &HotelResults{
		City:       c.name,
		Country:    c.country,
		Found:      len(hotels),
		Hotels:     hotels,
		Statistics: hotelStats(hotels),
		Filters:    filters,
	}, nil
}

func hotelStats(hotels []Hotel) *HotelStats {
	if len(hotels) == 0 {
		return nil
	}
	stats := &HotelStats{PriceRange: IntRange{Min: hotels[0].PricePerNight, Max: hotels[0].PricePerNight}}
	var priceSum int
	var ratingSum float64
	for _, h := range hotels {
		priceSum += h.PricePerNight
		ratingSum += h.Rating
		stats.PriceRange.Min = min(stats.PriceRange.Min, h.PricePerNight)
		stats.PriceRange.Max = max(stats.PriceRange.Max, h.PricePerNight)
	}
	stats.AveragePrice = priceSum / len(hotels)
	stats.AverageRating = round(ratingSum/float64(len(hotels)), 1)
	return stats
}

// AttractionQuery filters attractions of one city.
type AttractionQuery struct {
	City        string
	Category    string
	MaxEntryFee *int
}

// AttractionStats summarizes an attraction result set.
type AttractionStats struct {
	AverageEntryFee int     `json:"average_entry_fee"`
	FreeAttractions int     `json:"free_attractions"`
	AverageDuration float64 `json:"average_duration"`
	AverageRating   float64 `json:"average_rating"`
}

// AttractionResults is the answer to an AttractionQuery.
type AttractionResults struct {
	City        string           `json:"city"`
	Country     string           `json:"country"`
	Found       int              `json:"attractions_found"`
	Attractions []Attraction     `json:"attractions"`
	Statistics  *AttractionStats `json:"statistics,omitempty"`
	Filters     map[string]any   `json:"filters_applied"`
}

// GetAttractions returns the attractions of a city matching every filter.
func (s *Service) GetAttractions(q AttractionQuery) (*AttractionResults, error) {
	c, err := s.city(q.City)
	if err != nil {
		return nil, err
	}
	category := matchFold(AttractionCategories, q.Category)
	if q.Category != "" && category == "" {
		return nil, domainerrors.NewValidationError("invalid attraction category", q.Category)
	}
	if q.MaxEntryFee != nil && *q.MaxEntryFee < 0 {
		return nil, domainerrors.NewValidationError("max_entry_fee must not be negative", fmt.Sprint(*q.MaxEntryFee))
	}

	attractions := []Attraction{}
	for _, a := range c.attractions {
		if category != "" && a.Category != category {
			continue
		}
		if q.MaxEntryFee != nil && a.EntryFee > *q.MaxEntryFee {
			continue
		}
		attractions = append(attractions, a)
	}

	filters := map[string]any{}
	if category != "" {
		filters["category"] = category
	}
	if q.MaxEntryFee != nil {
		filters["max_entry_fee"] = *q.MaxEntryFee
	}

	return &AttractionResults{
		City:        c.name,
		Country:     c.country,
		Found:       len(attractions),
		Attractions: attractions,
		Statistics:  attractionStats(attractions),
		Filters:     filters,
	}, nil
}

func attractionStats(attractions []Attraction) *AttractionStats {
	if len(attractions) == 0 {
		return nil
	}
	stats := &AttractionStats{}
	var feeSum int
	var durationSum, ratingSum float64
	for _, a := range attractions {
		feeSum += a.EntryFee
		durationSum += a.DurationHours
		ratingSum += a.Rating
		if a.EntryFee == 0 {
			stats.FreeAttractions++
		}
	}
	n := float64(len(attractions))
	stats.AverageEntryFee = feeSum / len(attractions)
	stats.AverageDuration = round(durationSum/n, 1)
	stats.AverageRating = round(ratingSum/n, 1)
	return stats
}

// matchFold returns the element of options equal to v ignoring case, or "".
func matchFold(options []string, v string) string {
	v = strings.TrimSpace(v)
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o
		}
	}
	return ""
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
