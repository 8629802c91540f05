package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is a named group of terms.
type Category struct {
	Name     string   `yaml:"name"`
	Severity Severity `yaml:"severity,omitempty"`
	Terms    []string `yaml:"terms"`
}

// Vocabulary is the term set the guard matches against. Category order is
// significant: the first matching category names the verdict.
type Vocabulary struct {
	Travel    []Category `yaml:"travel"`
	Threats   []Category `yaml:"threats"`
	NonTravel []Category `yaml:"non_travel"`
	// Phrases are regular expressions that each add a fixed boost to the
	// relevance score when present.
	Phrases []string `yaml:"phrases"`
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Travel: []Category{
			{Name: "destinations", Terms: []string{
				"city", "country", "destination", "place", "location", "visit", "travel to",
				"paris", "london", "tokyo", "new york", "dubai", "barcelona", "rome",
				"bangkok", "sydney", "mumbai", "europe", "asia", "america", "africa",
			}},
			{Name: "accommodation", Terms: []string{
				"hotel", "hostel", "resort", "accommodation", "stay", "lodge", "inn",
				"apartment", "booking", "room", "suite", "bed and breakfast",
			}},
			{Name: "activities", Terms: []string{
				"attraction", "sightseeing", "tour", "museum", "landmark", "monument",
				"beach", "park", "temple", "church", "castle", "gallery", "zoo",
				"shopping", "restaurant", "nightlife", "entertainment",
			}},
			{Name: "transportation", Terms: []string{
				"flight", "plane", "airport", "train", "bus", "taxi", "car rental",
				"transportation", "metro", "subway", "ferry", "cruise",
			}},
			{Name: "planning", Terms: []string{
				"itinerary", "schedule", "plan", "trip", "vacation", "holiday", "journey",
				"budget", "cost", "price", "expense", "currency", "exchange",
				"visa", "passport", "weather", "climate", "season",
			}},
		},
		Threats: []Category{
			{Name: "high_threat", Severity: SeverityCritical, Terms: []string{
				"bomb", "terrorist", "kill", "murder", "attack", "violence", "weapon",
				"gun", "knife", "explosive", "threat", "harm", "destroy",
			}},
			{Name: "inappropriate", Severity: SeverityModerate, Terms: []string{
				"sex", "porn", "nude", "adult", "drug", "cocaine", "marijuana",
			}},
			{Name: "travel_illegal", Severity: SeverityModerate, Terms: []string{
				"visa fraud", "fake passport", "smuggling", "human trafficking",
				"drug trafficking", "money laundering", "illegal border",
			}},
		},
		NonTravel: []Category{
			{Name: "technology", Terms: []string{
				"programming", "coding", "software", "computer", "python", "javascript",
				"html", "css", "database", "api", "algorithm",
			}},
			{Name: "entertainment", Terms: []string{
				"movie", "tv show", "music", "song", "game", "sport", "celebrity", "news",
			}},
			{Name: "education", Terms: []string{
				"homework", "essay", "study", "exam", "math problem", "research paper",
			}},
			{Name: "general", Terms: []string{
				"hello", "hi", "how are you", "tell me a joke", "what do you think",
			}},
		},
		Phrases: []string{
			`\b(?:trip to|travel to|visit|vacation in|holiday in)\b`,
			`\b(?:hotel in|stay in|accommodation in)\b`,
			`\b(?:attractions in|things to do in)\b`,
			`\b(?:budget for|cost of).+(?:trip|travel|vacation)\b`,
			`\b(?:weather in|climate in|best time to visit)\b`,
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file and merges it into the
// defaults. Terms of a category that already exists are appended to it; new
// categories are added after the built-in ones.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var extra Vocabulary
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}

	v := DefaultVocabulary()
	v.Travel = mergeCategories(v.Travel, extra.Travel)
	v.Threats = mergeCategories(v.Threats, extra.Threats)
	v.NonTravel = mergeCategories(v.NonTravel, extra.NonTravel)
	v.Phrases = append(v.Phrases, extra.Phrases...)
	return v, nil
}

func mergeCategories(base, extra []Category) []Category {
	for _, e := range extra {
		merged := false
		for i := range base {
			if base[i].Name == e.Name {
				base[i].Terms = append(base[i].Terms, e.Terms...)
				if e.Severity != "" {
					base[i].Severity = e.Severity
				}
				merged = true
				break
			}
		}
		if !merged {
			base = append(base, e)
		}
	}
	return base
}
