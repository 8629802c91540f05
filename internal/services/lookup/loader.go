package lookup

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset file names inside the data directory.
const (
	HotelsFile      = "travel_hotels.csv"
	AttractionsFile = "travel_attractions.csv"
	TemplatesFile   = "travel_itinerary_templates.json"
	ProfilesFile    = "travel_city_profiles.yaml"
)

// Dataset is the raw content of the travel data files.
type Dataset struct {
	Hotels         []Hotel
	Attractions    []Attraction
	Templates      map[string]map[string][]DayPlan
	Profiles       []CityProfile
	DefaultWeather *WeatherCalendar
}

type profilesFile struct {
	DefaultWeather *WeatherCalendar `yaml:"default_weather"`
	Cities         []CityProfile    `yaml:"cities"`
}

// Load reads every dataset from dir and builds the service indices.
func Load(dir string) (*Service, error) {
	ds, err := LoadDataset(dir)
	if err != nil {
		return nil, err
	}
	return NewService(ds)
}

// LoadDataset reads the dataset files from dir.
func LoadDataset(dir string) (*Dataset, error) {
	hotels, err := readHotels(filepath.Join(dir, HotelsFile))
	if err != nil {
		return nil, err
	}
	attractions, err := readAttractions(filepath.Join(dir, AttractionsFile))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Hotels: hotels, Attractions: attractions}

	if err := readJSON(filepath.Join(dir, TemplatesFile), &ds.Templates); err != nil {
		return nil, err
	}

	var profiles profilesFile
	data, err := os.ReadFile(filepath.Join(dir, ProfilesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read city profiles: %w", err)
	}
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse city profiles: %w", err)
	}
	ds.Profiles = profiles.Cities
	ds.DefaultWeather = profiles.DefaultWeather
	return ds, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// csvRows reads a CSV file with a header row and yields each record as a
// column-name keyed map. Missing required columns fail the whole file.
func csvRows(path string, required []string, fn func(row map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", filepath.Base(path), err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, col := range required {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), col)
		}
	}

	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
	}
}

func readHotels(path string) ([]Hotel, error) {
	var hotels []Hotel
	cols := []string{"hotel_id", "name", "city", "country", "category", "price_per_night", "rating", "amenities", "address", "availability"}
	err := csvRows(path, cols, func(row map[string]string) error {
		price, err := strconv.Atoi(row["price_per_night"])
		if err != nil {
			return fmt.Errorf("invalid price_per_night: %w", err)
		}
		rating, err := strconv.ParseFloat(row["rating"], 64)
		if err != nil {
			return fmt.Errorf("invalid rating: %w", err)
		}
		available, err := strconv.ParseBool(row["availability"])
		if err != nil {
			return fmt.Errorf("invalid availability: %w", err)
		}
		hotels = append(hotels, Hotel{
			ID:            row["hotel_id"],
			Name:          row["name"],
			City:          row["city"],
			Country:       row["country"],
			Category:      strings.ToLower(row["category"]),
			PricePerNight: price,
			Rating:        rating,
			Amenities:     splitList(row["amenities"]),
			Address:       row["address"],
			Available:     available,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hotels, nil
}

func readAttractions(path string) ([]Attraction, error) {
	var attractions []Attraction
	cols := []string{"attraction_id", "name", "city", "country", "category", "entry_fee", "duration_hours", "rating", "description", "opening_hours"}
	err := csvRows(path, cols, func(row map[string]string) error {
		fee, err := strconv.Atoi(row["entry_fee"])
		if err != nil {
			return fmt.Errorf("invalid entry_fee: %w", err)
		}
		duration, err := strconv.ParseFloat(row["duration_hours"], 64)
		if err != nil {
			return fmt.Errorf("invalid duration_hours: %w", err)
		}
		rating, err := strconv.ParseFloat(row["rating"], 64)
		if err != nil {
			return fmt.Errorf("invalid rating: %w", err)
		}
		attractions = append(attractions, Attraction{
			ID:            row["attraction_id"],
			Name:          row["name"],
			City:          row["city"],
			Country:       row["country"],
			Category:      row["category"],
			EntryFee:      fee,
			DurationHours: duration,
			Rating:        rating,
			Description:   row["description"],
			OpeningHours:  row["opening_hours"],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attractions, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
