package dialogue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	domainerrors "github.com/tripwise/travel-agent/internal/domain/errors"
	"github.com/tripwise/travel-agent/internal/services/intent"
	"github.com/tripwise/travel-agent/internal/services/lookup"
)

// Function outcomes, used as metric labels.
const (
	outcomeOK          = "ok"
	outcomeUnknownCity = "unknown_city"
	outcomeRejected    = "rejected"
	outcomeFailed      = "failed"
)

// FunctionError is the result of a function the lookup service could not answer.
type FunctionError struct {
	Error           string   `json:"error"`
	AvailableCities []string `json:"available_cities,omitempty"`
	Suggestion      string   `json:"suggestion,omitempty"`
}

// wholeNumber decodes JSON numbers with no fractional part, so 400.0 is 400.
type wholeNumber int

func (n *wholeNumber) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("not a whole number: %s", b)
	}
	*n = wholeNumber(f)
	return nil
}

func (n *wholeNumber) intPtr() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

type hotelArgs struct {
	City              string       `json:"city"`
	BudgetMax         *wholeNumber `json:"budget_max"`
	Category          string       `json:"category"`
	CheckAvailability *bool        `json:"check_availability"`
}

type attractionArgs struct {
	City        string       `json:"city"`
	Category    string       `json:"category"`
	MaxEntryFee *wholeNumber `json:"max_entry_fee"`
}

type itineraryArgs struct {
	City         string       `json:"city"`
	DurationDays wholeNumber  `json:"duration_days"`
	Budget       *wholeNumber `json:"budget"`
	Interests    string       `json:"interests"`
}

type budgetArgs struct {
	City                  string      `json:"city"`
	DurationDays          wholeNumber `json:"duration_days"`
	AccommodationCategory string      `json:"accommodation_category"`
}

type weatherArgs struct {
	City        string `json:"city"`
	TravelMonth string `json:"travel_month"`
}

// decodeArgs strictly decodes function arguments into v.
func decodeArgs(fn string, raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &intent.ArgumentsError{Function: fn, Arguments: raw, Err: err}
	}
	return nil
}

// execute runs a validated function request against the lookup service.
// Lookup failures become a FunctionError result; only undecodable arguments
// are returned as errors.
func execute(svc *lookup.Service, call intent.FunctionCall) (any, string, error) {
	var (
		result any
		err    error
	)
	switch call.Name {
	case intent.FuncSearchHotels:
		var a hotelArgs
		if err := decodeArgs(call.Name, call.Arguments, &a); err != nil {
			return nil, outcomeRejected, err
		}
		availableOnly := true
		if a.CheckAvailability != nil {
			availableOnly = *a.CheckAvailability
		}
		result, err = svc.SearchHotels(lookup.HotelQuery{
			City:          a.City,
			BudgetMax:     a.BudgetMax.intPtr(),
			Category:      a.Category,
			AvailableOnly: availableOnly,
		})

	case intent.FuncGetAttractions:
		var a attractionArgs
		if err := decodeArgs(call.Name, call.Arguments, &a); err != nil {
			return nil, outcomeRejected, err
		}
		result, err = svc.GetAttractions(lookup.AttractionQuery{
			City:        a.City,
			Category:    a.Category,
			MaxEntryFee: a.MaxEntryFee.intPtr(),
		})

	case intent.FuncCreateItinerary:
		var a itineraryArgs
		if err := decodeArgs(call.Name, call.Arguments, &a); err != nil {
			return nil, outcomeRejected, err
		}
		result, err = svc.CreateItinerary(lookup.ItineraryQuery{
			City:      a.City,
			Days:      int(a.DurationDays),
			Budget:    a.Budget.intPtr(),
			Interests: a.Interests,
		})

	case intent.FuncEstimateBudget:
		var a budgetArgs
		if err := decodeArgs(call.Name, call.Arguments, &a); err != nil {
			return nil, outcomeRejected, err
		}
		result, err = svc.EstimateBudget(lookup.BudgetQuery{
			City:     a.City,
			Days:     int(a.DurationDays),
			Category: a.AccommodationCategory,
		})

	case intent.FuncCheckWeather:
		var a weatherArgs
		if err := decodeArgs(call.Name, call.Arguments, &a); err != nil {
			return nil, outcomeRejected, err
		}
		result, err = svc.WeatherRecommendation(a.City, a.TravelMonth)

	default:
		return nil, outcomeRejected, &intent.ArgumentsError{
			Function:  call.Name,
			Arguments: call.Arguments,
			Err:       fmt.Errorf("unknown function %q", call.Name),
		}
	}

	if err != nil {
		fe, outcome := functionError(svc, err)
		return fe, outcome, nil
	}
	return result, outcomeOK, nil
}

func functionError(svc *lookup.Service, err error) (*FunctionError, string) {
	if errors.Is(err, lookup.ErrUnknownCity) {
		msg := "No travel data is available for that destination."
		if de, ok := domainerrors.GetDomainError(err); ok {
			msg = "Sorry, " + de.Message + "."
		}
		return &FunctionError{
			Error:           msg,
			AvailableCities: svc.Cities(),
			Suggestion:      "Try one of the available destinations.",
		}, outcomeUnknownCity
	}
	if de, ok := domainerrors.GetDomainError(err); ok && de.Code == domainerrors.ErrCodeValidation {
		return &FunctionError{Error: de.Message}, outcomeRejected
	}
	return &FunctionError{Error: "Failed to complete the travel lookup. Please try again with valid parameters."}, outcomeFailed
}

// summarize phrases a function result without the language model.
func summarize(result any) string {
	const lead = "I found travel information for you! "
	switch r := result.(type) {
	case *lookup.HotelResults:
		if r.Found == 0 {
			return fmt.Sprintf("I couldn't find hotels in %s matching those filters. Try a higher budget or another category.", r.City)
		}
		top := r.Hotels[0]
		return lead + fmt.Sprintf("There %s %d %s in %s. Top pick: %s at $%d per night, rated %.1f.",
			plural(r.Found, "is", "are"), r.Found, plural(r.Found, "hotel", "hotels"), r.City,
			top.Name, top.PricePerNight, top.Rating)
	case *lookup.AttractionResults:
		if r.Found == 0 {
			return fmt.Sprintf("I couldn't find attractions in %s matching those filters.", r.City)
		}
		return lead + fmt.Sprintf("There %s %d %s in %s. Highest rated: %s.",
			plural(r.Found, "is", "are"), r.Found, plural(r.Found, "attraction", "attractions"), r.City,
			r.Attractions[0].Name)
	case *lookup.Itinerary:
		if len(r.Days) == 0 {
			return r.Notes
		}
		return lead + fmt.Sprintf("Here is a %d-day itinerary for %s with an estimated cost of $%d.",
			r.DurationDays, r.City, r.TotalEstimatedCost)
	case *lookup.BudgetEstimate:
		return lead + fmt.Sprintf("A %d-day %s trip to %s comes to about $%.0f, roughly $%.0f per day.",
			r.DurationDays, r.AccommodationCategory, r.City, r.Breakdown.Total, r.DailyAverage)
	case *lookup.WeatherAdvice:
		return lead + r.Recommendation
	case *FunctionError:
		if len(r.AvailableCities) > 0 {
			return fmt.Sprintf("%s Available destinations: %s.", r.Error, strings.Join(r.AvailableCities, ", "))
		}
		return r.Error
	}
	return lead + "Here are the details for your travel query."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
