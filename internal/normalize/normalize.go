// Package normalize maps raw adapter items onto the canonical premise shape.
package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"premise_fetcher/internal/domain"
)

const (
	// ShortDescriptionLimit is the maximum length, in runes, of a short description.
	ShortDescriptionLimit = 150
	ellipsis              = "..."
	firstPersonSubject    = "Eu"
)

// Normalize builds a premise from a raw item. The returned premise has no ID and
// zero timestamps other than the metrics observation time; the store assigns those.
func Normalize(item domain.RawItem, src domain.SourceRef, now time.Time) (domain.Premise, error) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return domain.Premise{}, fmt.Errorf("%w: item %q has no link", domain.ErrValidation, item.ExternalID)
	}

	body := strings.TrimSpace(item.Body)
	if body == "" {
		body = strings.TrimSpace(item.Title)
	}
	if body == "" {
		return domain.Premise{}, fmt.Errorf("%w: item %q has no text", domain.ErrValidation, item.ExternalID)
	}

	short := strings.TrimSpace(item.ShortDescription)
	if short == "" {
		short = ShortDescription(body)
	}

	observedAt := item.PublishedAt
	if observedAt.IsZero() {
		observedAt = now
	}

	var views int64
	if item.Views != nil {
		views = *item.Views
	}

	return domain.Premise{
		Source:           src,
		Link:             link,
		Body:             body,
		ShortDescription: short,
		FirstPerson:      ToFirstPerson(body),
		Metrics: domain.Metrics{
			ObservedAt: observedAt.UTC(),
			Likes:      item.Likes,
			Comments:   item.Comments,
			Views:      views,
		},
		Synthetic: item.Synthetic,
	}, nil
}

// ShortDescription truncates text to ShortDescriptionLimit runes, appending an
// ellipsis only when something was cut.
func ShortDescription(text string) string {
	if utf8.RuneCountInString(text) <= ShortDescriptionLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:ShortDescriptionLimit]) + ellipsis
}

// ToFirstPerson rewrites text as a first-person statement:
// "Ela encontrou um tesouro." becomes "Eu ela encontrou um tesouro.".
//
// The transform is not idempotent. Apply it once, to the original body only.
func ToFirstPerson(text string) string {
	text = strings.TrimSpace(text)
	if last, size := utf8.DecodeLastRuneInString(text); last == '.' || last == '!' || last == '?' {
		text = text[:len(text)-size]
	}
	if text == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(text)
	return firstPersonSubject + " " + string(unicode.ToLower(first)) + text[size:] + "."
}
