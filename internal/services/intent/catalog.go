package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/tripwise/travel-agent/internal/services/lookup"
)

// Function names advertised to the language model.
const (
	FuncSearchHotels    = "search_hotels"
	FuncGetAttractions  = "get_attractions"
	FuncCreateItinerary = "create_itinerary"
	FuncEstimateBudget  = "get_travel_budget_estimate"
	FuncCheckWeather    = "check_weather_recommendation"
)

// Scope is reported alongside the catalog.
const Scope = "travel_planning_only"

// Function is one tool the language model may request.
type Function struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	resolved *jsonschema.Resolved
}

// ParametersMap renders the parameter schema as a generic JSON object.
func (f *Function) ParametersMap() map[string]any {
	data, err := json.Marshal(f.Parameters)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// Catalog is the closed set of functions. It is immutable once built.
type Catalog struct {
	functions []*Function
	byName    map[string]*Function
}

// NewCatalog resolves every function schema.
func NewCatalog(functions ...Function) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Function, len(functions))}
	for i := range functions {
		f := functions[i]
		if f.Name == "" {
			return nil, errors.New("function name is required")
		}
		if _, dup := c.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate function %q", f.Name)
		}
		if f.Parameters == nil {
			return nil, fmt.Errorf("function %q has no parameter schema", f.Name)
		}
		resolved, err := f.Parameters.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", f.Name, err)
		}
		f.resolved = resolved
		c.functions = append(c.functions, &f)
		c.byName[f.Name] = &f
	}
	return c, nil
}

// Functions returns the functions in advertised order.
func (c *Catalog) Functions() []*Function {
	out := make([]*Function, len(c.functions))
	copy(out, c.functions)
	return out
}

// Lookup finds a function by name.
func (c *Catalog) Lookup(name string) (*Function, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Validate checks raw arguments against the named function's schema. Empty
// arguments are treated as an empty object.
func (c *Catalog) Validate(name string, args json.RawMessage) error {
	f, ok := c.byName[name]
	if !ok {
		return &ArgumentsError{Function: name, Arguments: args, Err: fmt.Errorf("unknown function %q", name)}
	}
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return &ArgumentsError{Function: name, Arguments: args, Err: fmt.Errorf("arguments are not valid JSON: %w", err)}
	}
	if err := f.resolved.Validate(instance); err != nil {
		return &ArgumentsError{Function: name, Arguments: args, Err: err}
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// closed is the false schema; as additionalProperties it marshals to false
// and rejects properties the schema does not declare.
func closed() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// DefaultCatalog builds the travel function catalog.
func DefaultCatalog() *Catalog {
	city := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "string", Description: desc, MinLength: intPtr(1)}
	}

	c, err := NewCatalog(
		Function{
			Name:        FuncSearchHotels,
			Description: "Search for hotels and accommodations in travel destinations with advanced filtering options",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": city("The destination city for hotel search (e.g., Paris, Tokyo, New York)"),
					"budget_max": {
						Type:        "integer",
						Description: "Maximum budget per night in USD (0-5000)",
						Minimum:     ptr(0),
						Maximum:     ptr(5000),
					},
					"category": {
						Type:        "string",
						Description: "Hotel category preference",
						Enum:        anySlice(lookup.HotelCategories),
					},
					"check_availability": {
						Type:        "boolean",
						Description: "Whether to only return hotels that are currently available",
					},
				},
				Required:             []string{"city"},
				AdditionalProperties: closed(),
			},
		},
		Function{
			Name:        FuncGetAttractions,
			Description: "Find tourist attractions and points of interest for travel destinations",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": city("The travel destination city for attractions search"),
					"category": {
						Type:        "string",
						Description: "Category of attractions to explore",
						Enum:        anySlice(lookup.AttractionCategories),
					},
					"max_entry_fee": {
						Type:        "integer",
						Description: "Maximum entry fee budget for attractions in USD",
						Minimum:     ptr(0),
					},
				},
				Required:             []string{"city"},
				AdditionalProperties: closed(),
			},
		},
		Function{
			Name:        FuncCreateItinerary,
			Description: "Create detailed travel itineraries for specific destinations and durations",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": city("The travel destination city for itinerary planning"),
					"duration_days": {
						Type:        "integer",
						Description: "Number of days for the travel itinerary (1-14)",
						Minimum:     ptr(lookup.MinItineraryDays),
						Maximum:     ptr(lookup.MaxItineraryDays),
					},
					"budget": {
						Type:        "integer",
						Description: "Total budget for activities in USD",
						Minimum:     ptr(0),
					},
					"interests": {
						Type:        "string",
						Description: "Travel interests and preferences (e.g., history, culture, food, nature)",
					},
				},
				Required:             []string{"city", "duration_days"},
				AdditionalProperties: closed(),
			},
		},
		Function{
			Name:        FuncEstimateBudget,
			Description: "Calculate comprehensive travel budget estimates for trips",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": city("Travel destination city for budget calculation"),
					"duration_days": {
						Type:        "integer",
						Description: "Trip duration in days for budget planning (1-30)",
						Minimum:     ptr(lookup.MinBudgetDays),
						Maximum:     ptr(lookup.MaxBudgetDays),
					},
					"accommodation_category": {
						Type:        "string",
						Description: "Accommodation preference for budget calculation",
						Enum:        anySlice(lookup.HotelCategories),
					},
				},
				Required:             []string{"city", "duration_days"},
				AdditionalProperties: closed(),
			},
		},
		Function{
			Name:        FuncCheckWeather,
			Description: "Get weather-based travel timing recommendations for destinations",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": city("Travel destination city for weather advice"),
					"travel_month": {
						Type:        "string",
						Description: "Month of planned travel for weather recommendations",
						Enum:        anySlice(lookup.Months),
					},
				},
				Required:             []string{"city"},
				AdditionalProperties: closed(),
			},
		},
	)
	if err != nil {
		panic(fmt.Sprintf("intent: invalid built-in catalog: %v", err))
	}
	return c
}

func intPtr(v int) *int { return &v }
