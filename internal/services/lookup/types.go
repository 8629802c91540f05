package lookup

// Hotel categories.
const (
	CategoryLuxury   = "luxury"
	CategoryMidRange = "mid-range"
	CategoryBudget   = "budget"
)

// HotelCategories lists the valid hotel categories.
var HotelCategories = []string{CategoryLuxury, CategoryMidRange, CategoryBudget}

// AttractionCategories lists the valid attraction categories.
var AttractionCategories = []string{
	"Historical", "Museum", "Religious", "Landmark", "Shopping",
	"Cultural", "Entertainment", "Nature", "Architecture", "Market",
}

// Months lists the calendar months accepted by weather queries.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Hotel is one accommodation record.
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Category      string   `json:"category"`
	PricePerNight int      `json:"price_per_night"`
	Rating        float64  `json:"rating"`
	Amenities     []string `json:"amenities"`
	Address       string   `json:"address"`
	Available     bool     `json:"available"`
}

// Attraction is one point of interest.
type Attraction struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	Category      string  `json:"category"`
	EntryFee      int     `json:"entry_fee"`
	DurationHours float64 `json:"duration_hours"`
	Rating        float64 `json:"rating"`
	Description   string  `json:"description"`
	OpeningHours  string  `json:"opening_hours"`
}

// DayPlan is one day of an itinerary.
type DayPlan struct {
	Day            int          `json:"day"`
	Title          string       `json:"title"`
	Activities     []string     `json:"activities"`
	Attractions    []Attraction `json:"attraction_details,omitempty"`
	Meals          []string     `json:"meals"`
	EstimatedCost  int          `json:"estimated_cost"`
	DurationHours  float64      `json:"total_duration,omitempty"`
	Transportation string       `json:"transportation"`
}

// WeatherCalendar describes when a destination is worth visiting.
type WeatherCalendar struct {
	BestMonths       []string `json:"best_months" yaml:"best_months"`
	GoodMonths       []string `json:"good_months" yaml:"good_months"`
	AvoidMonths      []string `json:"avoid_months" yaml:"avoid_months"`
	Info             string   `json:"weather_info" yaml:"info"`
	PeakSeason       string   `json:"peak_season" yaml:"peak_season"`
	TemperatureRange string   `json:"temperature_range" yaml:"temperature_range"`
	Rainfall         string   `json:"rainfall_info" yaml:"rainfall"`
}

// CityProfile holds per destination cost and climate data.
type CityProfile struct {
	City            string           `yaml:"city"`
	Country         string           `yaml:"country"`
	MealCost        int              `yaml:"meal_cost"`
	TransportCost   int              `yaml:"transport_cost"`
	PriceMultiplier float64          `yaml:"price_multiplier"`
	Weather         *WeatherCalendar `yaml:"weather"`
}

// Destination summarizes the data held for one city.
type Destination struct {
	City                 string `json:"city"`
	Country              string `json:"country"`
	HotelsAvailable      int    `json:"hotels_available"`
	AttractionsAvailable int    `json:"attractions_available"`
}
