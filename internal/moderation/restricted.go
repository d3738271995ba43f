// Package moderation screens free-form text against a fixed disallowed-term
// list before it is allowed to reach the image generation service.
package moderation

import (
	"errors"
	"strings"
)

// ErrContentRejected is returned when text matches the disallowed-term list.
// Fatal to the calling operation; rejected content is never translated or
// forwarded.
var ErrContentRejected = errors.New("забранено съдържание: промптът съдържа неподходящи думи или фрази")

// English restricted words
var restrictedWordsEN = []string{
	"pussy", "vagina", "dick", "penis", "fuck", "sex", "naked", "tits",
	"boobs", "porn", "anal", "ass", "deepthroat", "suck", "fucking",
	"sexual", "erotic", "cock", "nfsw", "hentai", "nigger", "nigga",
	"slave", "hitler", "racist", "killing", "die",
}

// Bulgarian restricted words - translations and variants
var restrictedWordsBG = []string{
	"путка", "вагина", "кур", "пенис", "еба", "ебане", "секс", "гол", "гола", "голи",
	"цици", "гърди", "порно", "анален", "задник", "смуча", "ебане", "ебът", "ебъл",
	"сексуален", "сексуално", "еротичен", "еротично", "кур", "нфсв", "хентай",
	"нигър", "негър", "роб", "хитлер", "расист", "убиване", "умри", "умирам", "цомби",
	"дупе", "дърт", "пишка", "педераст", "педал", "гей", "лесбийка", "лизбийка",
	"шибан", "шибано", "майната",
}

// ContainsRestrictedWords reports whether text matches any disallowed term in
// either language. Matching is case-insensitive substring containment.
func ContainsRestrictedWords(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)

	for _, word := range restrictedWordsEN {
		if strings.Contains(lower, word) {
			return true
		}
	}
	for _, word := range restrictedWordsBG {
		if strings.Contains(lower, word) {
			return true
		}
	}

	return false
}

// Check returns ErrContentRejected when text is disallowed, nil otherwise.
func Check(text string) error {
	if ContainsRestrictedWords(text) {
		return ErrContentRejected
	}
	return nil
}
