package lookup

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
)

func intPtr(v int) *int { return &v }

func testDataset() *Dataset {
	return &Dataset{
		Hotels: []Hotel{
			{ID: "T1", Name: "Alpha", City: "Testville", Country: "Nowhere", Category: CategoryLuxury, PricePerNight: 500, Rating: 4.5, Available: true},
			{ID: "T2", Name: "Beta", City: "Testville", Country: "Nowhere", Category: CategoryLuxury, PricePerNight: 300, Rating: 4.5, Available: true},
			{ID: "T3", Name: "Gamma", City: "Testville", Country: "Nowhere", Category: CategoryMidRange, PricePerNight: 150, Rating: 4.0, Available: true},
			{ID: "T4", Name: "Delta", City: "Testville", Country: "Nowhere", Category: CategoryMidRange, PricePerNight: 100, Rating: 4.2, Available: false},
			{ID: "T5", Name: "Eps", City: "Testville", Country: "Nowhere", Category: CategoryBudget, PricePerNight: 50, Rating: 3.5, Available: true},
			{ID: "E1", Name: "Solo Inn", City: "Emptyburg", Country: "Elsewhere", Category: CategoryBudget, PricePerNight: 40, Rating: 3.0, Available: true},
		},
		Attractions: []Attraction{
			{ID: "A1", Name: "Old Fort", City: "Testville", Country: "Nowhere", Category: "Historical", EntryFee: 10, DurationHours: 2, Rating: 4.8},
			{ID: "A2", Name: "Art House", City: "Testville", Country: "Nowhere", Category: "Museum", EntryFee: 20, DurationHours: 3, Rating: 4.6},
			{ID: "A3", Name: "Cathedral", City: "Testville", Country: "Nowhere", Category: "Religious", EntryFee: 0, DurationHours: 1, Rating: 4.6},
			{ID: "A4", Name: "City Park", City: "Testville", Country: "Nowhere", Category: "Nature", EntryFee: 0, DurationHours: 2, Rating: 4.0},
			{ID: "A5", Name: "Bazaar", City: "Testville", Country: "Nowhere", Category: "Market", EntryFee: 5, DurationHours: 1.5, Rating: 4.2},
		},
		Templates: map[string]map[string][]DayPlan{
			"Testville": {
				"1_days": {{Day: 1, Title: "Highlights", Activities: []string{"Old Fort"}, EstimatedCost: 70, Transportation: "Walking"}},
			},
			"Atlantis": {
				"1_days": {{Day: 1, Title: "Underwater", EstimatedCost: 10}},
			},
		},
		Profiles: []CityProfile{
			{
				City:            "Testville",
				Country:         "Nowhere",
				MealCost:        40,
				TransportCost:   25,
				PriceMultiplier: 2.0,
				Weather: &WeatherCalendar{
					BestMonths:  []string{"April", "May", "June"},
					GoodMonths:  []string{"March"},
					AvoidMonths: []string{"January"},
					Info:        "Mild",
					PeakSeason:  "April-June",
				},
			},
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(testDataset())
	require.NoError(t, err)
	return s
}

func hotelIDs(hotels []Hotel) []string {
	ids := make([]string, 0, len(hotels))
	for _, h := range hotels {
		ids = append(ids, h.ID)
	}
	return ids
}

func attractionIDs(attractions []Attraction) []string {
	ids := make([]string, 0, len(attractions))
	for _, a := range attractions {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)

	_, err = NewService(&Dataset{})
	assert.Error(t, err)

	_, err = NewService(&Dataset{Hotels: []Hotel{{ID: "X1"}}})
	assert.Error(t, err)
}

func TestService_Destinations(t *testing.T) {
	s := newTestService(t)

	want := []Destination{
		{City: "Emptyburg", Country: "Elsewhere", HotelsAvailable: 1, AttractionsAvailable: 0},
		{City: "Testville", Country: "Nowhere", HotelsAvailable: 5, AttractionsAvailable: 5},
	}
	if diff := cmp.Diff(want, s.Destinations()); diff != "" {
		t.Errorf("Destinations() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Emptyburg", "Testville"}, s.Cities())
}

func TestSearchHotels_SortOrderAndStats(t *testing.T) {
	s := newTestService(t)

	res, err := s.SearchHotels(HotelQuery{City: "  testVILLE "})
	require.NoError(t, err)

	assert.Equal(t, "Testville", res.City)
	assert.Equal(t, []string{"T2", "T1", "T4", "T3", "T5"}, hotelIDs(res.Hotels))
	assert.Equal(t, 5, res.Found)
	require.NotNil(t, res.Statistics)
	assert.Equal(t, 220, res.Statistics.AveragePrice)
	assert.Equal(t, IntRange{Min: 50, Max: 500}, res.Statistics.PriceRange)
	assert.Equal(t, 4.1, res.Statistics.AverageRating)
}

func TestSearchHotels_Filters(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name  string
		query HotelQuery
		want  []string
	}{
		{"budget and category", HotelQuery{City: "Testville", BudgetMax: intPtr(400), Category: "Luxury"}, []string{"T2"}},
		{"available only", HotelQuery{City: "Testville", Category: CategoryMidRange, AvailableOnly: true}, []string{"T3"}},
		{"budget inclusive", HotelQuery{City: "Testville", BudgetMax: intPtr(100)}, []string{"T4", "T5"}},
		{"no match", HotelQuery{City: "Testville", BudgetMax: intPtr(10)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.SearchHotels(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hotelIDs(res.Hotels))
			for _, h := range res.Hotels {
				if tt.query.BudgetMax != nil {
					assert.LessOrEqual(t, h.PricePerNight, *tt.query.BudgetMax)
				}
			}
		})
	}
}

func TestSearchHotels_NoMatchHasNoStats(t *testing.T) {
	s := newTestService(t)

	res, err := s.SearchHotels(HotelQuery{City: "Testville", BudgetMax: intPtr(0)})
	require.NoError(t, err)
	assert.NotNil(t, res.Hotels)
	assert.Empty(t, res.Hotels)
	assert.Nil(t, res.Statistics)
}

func TestSearchHotels_Errors(t *testing.T) {
	s := newTestService(t)

	_, err := s.SearchHotels(HotelQuery{City: "Atlantis"})
	assert.True(t, errors.Is(err, ErrUnknownCity))
	de, ok := domainerrors.GetDomainError(err)
	require.True(t, ok)
	assert.Equal(t, domainerrors.ErrCodeUnknownCity, de.Code)
	assert.Equal(t, "Emptyburg, Testville", de.Details)

	_, err = s.SearchHotels(HotelQuery{City: ""})
	assert.True(t, domainerrors.IsValidation(err))

	_, err = s.SearchHotels(HotelQuery{City: "Testville", BudgetMax: intPtr(6000)})
	assert.True(t, domainerrors.IsValidation(err))

	_, err = s.SearchHotels(HotelQuery{City: "Testville", Category: "premium"})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestGetAttractions(t *testing.T) {
	s := newTestService(t)

	res, err := s.GetAttractions(AttractionQuery{City: "testville"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A3", "A2", "A5", "A4"}, attractionIDs(res.Attractions))

	want := &AttractionStats{AverageEntryFee: 7, FreeAttractions: 2, AverageDuration: 1.9, AverageRating: 4.4}
	if diff := cmp.Diff(want, res.Statistics); diff != "" {
		t.Errorf("statistics mismatch (-want +got):\n%s", diff)
	}

	res, err = s.GetAttractions(AttractionQuery{City: "Testville", Category: "museum"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, attractionIDs(res.Attractions))
	assert.Equal(t, "Museum", res.Filters["category"])

	res, err = s.GetAttractions(AttractionQuery{City: "Testville", MaxEntryFee: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "A5", "A4"}, attractionIDs(res.Attractions))

	res, err = s.GetAttractions(AttractionQuery{City: "Emptyburg"})
	require.NoError(t, err)
	assert.Empty(t, res.Attractions)
	assert.Nil(t, res.Statistics)
}

func TestGetAttractions_Errors(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetAttractions(AttractionQuery{City: "Nowhere City"})
	assert.ErrorIs(t, err, ErrUnknownCity)

	_, err = s.GetAttractions(AttractionQuery{City: "Testville", Category: "Casino"})
	assert.True(t, domainerrors.IsValidation(err))

	_, err = s.GetAttractions(AttractionQuery{City: "Testville", MaxEntryFee: intPtr(-1)})
	assert.True(t, domainerrors.IsValidation(err))
}
