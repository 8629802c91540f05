package dialogue

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwise/travel-agent/internal/services/intent"
	"github.com/tripwise/travel-agent/internal/services/lookup"
)

func TestWholeNumber(t *testing.T) {
	var v struct {
		N *wholeNumber `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n":400.0}`), &v))
	assert.Equal(t, 400, *v.N.intPtr())

	assert.Error(t, json.Unmarshal([]byte(`{"n":99.5}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"n":"3"}`), &v))

	var empty *wholeNumber
	assert.Nil(t, empty.intPtr())
}

func TestExecute(t *testing.T) {
	svc := testLookup(t)

	tests := []struct {
		name    string
		call    intent.FunctionCall
		outcome string
		check   func(t *testing.T, result any)
	}{
		{
			name:    "hotels default to available only",
			call:    intent.FunctionCall{Name: intent.FuncSearchHotels, Arguments: json.RawMessage(`{"city":"Paris","category":"mid-range"}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				r := result.(*lookup.HotelResults)
				for _, h := range r.Hotels {
					assert.True(t, h.Available, h.Name)
				}
			},
		},
		{
			name:    "hotels including unavailable",
			call:    intent.FunctionCall{Name: intent.FuncSearchHotels, Arguments: json.RawMessage(`{"city":"Paris","category":"mid-range","check_availability":false}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				assert.Equal(t, 2, result.(*lookup.HotelResults).Found)
			},
		},
		{
			name:    "attractions",
			call:    intent.FunctionCall{Name: intent.FuncGetAttractions, Arguments: json.RawMessage(`{"city":"Rome","max_entry_fee":0}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				for _, a := range result.(*lookup.AttractionResults).Attractions {
					assert.Zero(t, a.EntryFee)
				}
			},
		},
		{
			name:    "itinerary",
			call:    intent.FunctionCall{Name: intent.FuncCreateItinerary, Arguments: json.RawMessage(`{"city":"Paris","duration_days":3}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				assert.Len(t, result.(*lookup.Itinerary).Days, 3)
			},
		},
		{
			name:    "budget",
			call:    intent.FunctionCall{Name: intent.FuncEstimateBudget, Arguments: json.RawMessage(`{"city":"Bangkok","duration_days":5,"accommodation_category":"budget"}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				r := result.(*lookup.BudgetEstimate)
				assert.Equal(t, 5, r.DurationDays)
				assert.Positive(t, r.Breakdown.Total)
			},
		},
		{
			name:    "weather",
			call:    intent.FunctionCall{Name: intent.FuncCheckWeather, Arguments: json.RawMessage(`{"city":"Dubai","travel_month":"December"}`)},
			outcome: outcomeOK,
			check: func(t *testing.T, result any) {
				assert.Equal(t, "December", result.(*lookup.WeatherAdvice).Month)
			},
		},
		{
			name:    "unknown city",
			call:    intent.FunctionCall{Name: intent.FuncCheckWeather, Arguments: json.RawMessage(`{"city":"Gotham"}`)},
			outcome: outcomeUnknownCity,
			check: func(t *testing.T, result any) {
				fe := result.(*FunctionError)
				assert.Equal(t, svc.Cities(), fe.AvailableCities)
			},
		},
		{
			name:    "lookup validation",
			call:    intent.FunctionCall{Name: intent.FuncGetAttractions, Arguments: json.RawMessage(`{"city":"Rome","category":"Zoo"}`)},
			outcome: outcomeRejected,
			check: func(t *testing.T, result any) {
				fe := result.(*FunctionError)
				assert.NotEmpty(t, fe.Error)
				assert.Empty(t, fe.AvailableCities)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, outcome, err := execute(svc, tt.call)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)
			tt.check(t, result)
		})
	}
}

func TestExecute_UndecodableArguments(t *testing.T) {
	svc := testLookup(t)
	for _, call := range []intent.FunctionCall{
		{Name: intent.FuncCreateItinerary, Arguments: json.RawMessage(`{"city":"Rome","duration_days":2.5}`)},
		{Name: intent.FuncSearchHotels, Arguments: json.RawMessage(`{"city":"Rome","stars":5}`)},
		{Name: "book_flight", Arguments: json.RawMessage(`{}`)},
	} {
		_, outcome, err := execute(svc, call)
		assert.ErrorIs(t, err, intent.ErrInvalidFunctionArguments, call.Name)
		assert.Equal(t, outcomeRejected, outcome)
	}
}

func TestSummarize(t *testing.T) {
	svc := testLookup(t)

	hotels, err := svc.SearchHotels(lookup.HotelQuery{City: "Paris", Category: "luxury", BudgetMax: intPtr(400)})
	require.NoError(t, err)
	assert.Equal(t, "I found travel information for you! There is 1 hotel in Paris. Top pick: Hotel Lutetia at $380 per night, rated 4.7.", summarize(hotels))

	none, err := svc.SearchHotels(lookup.HotelQuery{City: "Paris", BudgetMax: intPtr(1)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summarize(none), "I couldn't find hotels in Paris"))

	assert.Equal(t, "No such place. Available destinations: A, B.",
		summarize(&FunctionError{Error: "No such place.", AvailableCities: []string{"A", "B"}}))
	assert.Equal(t, "Bad input", summarize(&FunctionError{Error: "Bad input"}))
	assert.Contains(t, summarize(struct{}{}), "Here are the details")
}

func TestOffTopicReply(t *testing.T) {
	assert.True(t, strings.HasPrefix(offTopicReply(1, "hi"), offTopicFirst))
	assert.Equal(t, offTopicSecond, offTopicReply(2, "hi"))
	assert.Equal(t, offTopicFinal, offTopicReply(3, "hi"))
	assert.Equal(t, offTopicFinal, offTopicReply(7, "hi"))
}

func TestClarifyingQuestion(t *testing.T) {
	assert.Contains(t, clarifyingQuestion(intent.FuncCheckWeather), "month")
	assert.Equal(t, clarifyDefault, clarifyingQuestion(""))
}

func intPtr(v int) *int { return &v }
