package assistantnode

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrEmptyMessage = errors.New("message is empty")

// purchaseIntentPatterns flag messages that sound like a buying decision.
// The flag is advisory: the reasoning model decides on its own which
// capability to call, the heuristic only shows up in logs and graph state.
var purchaseIntentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(i'll take|i want|i'd like|i need)\b.*\b(it|this|that|one|them)\b`),
	regexp.MustCompile(`\b(buy|purchase|order|get)\b`),
	regexp.MustCompile(`\b(place.*order|confirm.*order)\b`),
	regexp.MustCompile(`\b(yes,?\s*(please)?|sure|okay|ok)\b.*\b(order|buy|purchase)\b`),
	regexp.MustCompile(`\b(add to cart|checkout|proceed)\b`),
	regexp.MustCompile(`\b(i'll buy|i want to buy|i'd like to order)\b`),
}

func ScreenIntent(in GraphInput) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	state := &GraphState{
		Text:           text,
		PurchaseIntent: DetectPurchaseIntent(text),
	}
	if state.PurchaseIntent {
		log.Debug().Str("text", text).Msg("purchase intent detected")
	}
	return state, nil
}

func DetectPurchaseIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range purchaseIntentPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}
