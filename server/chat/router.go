package chat

import (
	"regexp"
	"strings"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

// RouterInput carries everything the routing decision depends on.
type RouterInput struct {
	Message            string
	ConversationLength int
	Tier               store.Tier
}

// Decision is the chosen model class with a human-readable justification.
type Decision struct {
	Model  ai.ModelClass
	Reason string
}

// Simple queries must match the whole trimmed message, otherwise any message
// merely containing a greeting would be misclassified.
var simplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(hi|hello|hey|greetings|good (morning|afternoon|evening))[\s!.]*$`),
	regexp.MustCompile(`(?i)^thanks?[\s!.]*$`),
	regexp.MustCompile(`(?i)^(ok|okay|got it|understood)[\s!.]*$`),
	regexp.MustCompile(`(?i)^(yes|no|maybe)[\s!.]*$`),
	regexp.MustCompile(`(?i)^what time is it`),
	regexp.MustCompile(`(?i)^what('s| is) the date`),
}

var complexPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)analyze`),
	regexp.MustCompile(`(?i)compare`),
	regexp.MustCompile(`(?i)explain.*in detail`),
	regexp.MustCompile(`(?i)write.*essay`),
	regexp.MustCompile(`(?i)help me (think|understand|figure out)`),
	regexp.MustCompile(`(?i)what (should|would) (i|you|we)`),
	regexp.MustCompile(`(?i)pros and cons`),
	regexp.MustCompile(`(?i)step by step`),
	regexp.MustCompile(`(?i)code review`),
	regexp.MustCompile(`(?i)debug`),
}

// Route selects a model class for one turn. It is a pure function: same
// input, same decision, every call.
//
// Strategy:
//   - Simple greetings and short queries get the cheapest model.
//   - Complex queries from business tier users get the best model.
//   - Everything else lands on the balanced default.
func Route(input RouterInput) Decision {
	message := input.Message
	conversationLength := input.ConversationLength

	if isSimpleQuery(message) {
		return Decision{
			Model:  ai.ModelClassHaiku,
			Reason: "Simple query detected, using fast model",
		}
	}

	if len(message) < 100 && conversationLength < 5 {
		return Decision{
			Model:  ai.ModelClassHaiku,
			Reason: "Short message with minimal context",
		}
	}

	if input.Tier == store.TierBusiness && isComplexQuery(message, conversationLength) {
		return Decision{
			Model:  ai.ModelClassOpus,
			Reason: "Complex query with business tier access",
		}
	}

	if ai.EstimateTokens(message) > 500 || conversationLength > 10 {
		model := ai.ModelClassSonnet
		if input.Tier == store.TierBusiness {
			model = ai.ModelClassOpus
		}
		return Decision{
			Model:  model,
			Reason: "Extended context requires advanced reasoning",
		}
	}

	return Decision{
		Model:  ai.ModelClassSonnet,
		Reason: "Standard query, using balanced model",
	}
}

func isSimpleQuery(message string) bool {
	trimmed := strings.TrimSpace(message)
	for _, pattern := range simplePatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func isComplexQuery(message string, conversationLength int) bool {
	for _, pattern := range complexPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return conversationLength > 15 || len(message) > 500
}
