package dialogue

import "github.com/tripwise/travel-agent/internal/services/intent"

// User facing texts.
const (
	ReplyLimitReached  = "Session limit reached. Please start a new chat for continued travel assistance."
	ReplySecurityReset = "Chat has been reset due to security violations. Let's start fresh with safe travel planning!"
	ReplySafety        = "I can only assist with safe travel planning. Please ask about hotels, attractions, itineraries, or travel advice."
	ReplyUnavailable   = "Travel planning service temporarily unavailable. Please try again."
	ReplyChatReset     = "Chat reset! Ready to help you plan your next adventure. Where would you like to travel?"

	offTopicFirst  = "I'm a travel planning assistant and can only help with travel-related queries. "
	offTopicSecond = "I'm specifically designed for travel planning only. Please ask about destinations, hotels, attractions, itineraries, or travel budgets."
	offTopicFinal  = "I can ONLY assist with travel planning. I cannot help with other topics. Please ask about: hotels, attractions, itineraries, travel budgets, or destination recommendations."

	clarifyDefault = "Could you tell me a bit more about your trip? For example, the destination, how many days, and your budget."
)

// TravelExamples are suggested to users who drift off topic.
var TravelExamples = []string{
	"Find luxury hotels in Paris under $400",
	"Create a 5-day Tokyo itinerary",
	"What's the budget for a Barcelona trip?",
	"Best attractions in London",
	"Weather in Dubai in December",
}

var suggestions = []string{
	"Try asking about hotels, attractions, or itineraries for your destination!",
	"I can help you plan trips - ask about destinations, budgets, or travel recommendations!",
	"Let's focus on travel planning - ask me about accommodations, activities, or trip costs!",
	"Ask me about travel topics like finding hotels, creating itineraries, or budgeting for trips!",
}

var clarifications = map[string]string{
	intent.FuncSearchHotels:    "Which city should I search for hotels in? You can also give a nightly budget of up to $5000 and a category: luxury, mid-range or budget.",
	intent.FuncGetAttractions:  "Which city's attractions would you like to explore? You can narrow it down by category, like Museum or Nature, or by a maximum entry fee.",
	intent.FuncCreateItinerary: "Which city should the itinerary cover, and for how many days (1 to 14)?",
	intent.FuncEstimateBudget:  "Which city should I budget for, for how many days (1 to 30), and in which accommodation category: luxury, mid-range or budget?",
	intent.FuncCheckWeather:    "Which city are you planning to visit, and in which month?",
}

// offTopicReply escalates with the number of warnings already given. The
// suggestion rotates with the message so repeated questions read differently.
func offTopicReply(warnings int, message string) string {
	switch {
	case warnings <= 1:
		return offTopicFirst + suggestions[len(message)%len(suggestions)]
	case warnings == 2:
		return offTopicSecond
	default:
		return offTopicFinal
	}
}

// clarifyingQuestion asks for the details a function request was missing.
func clarifyingQuestion(function string) string {
	if q, ok := clarifications[function]; ok {
		return q
	}
	return clarifyDefault
}
