// Package locale holds the two display languages of the marketplace and
// their string tables.
package locale

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is a supported display language.
type Locale string

const (
	English Locale = "en"
	Bengali Locale = "bn"
)

// Default is used when nothing better matches.
const Default = English

var (
	supportedTags = []language.Tag{language.English, language.Bengali}
	matcher       = language.NewMatcher(supportedTags)
)

// Supported lists the locales in preference order.
func Supported() []Locale {
	return []Locale{English, Bengali}
}

// Parse accepts a BCP 47 value ("bn", "bn-BD", "en-US") and reports
// whether it maps onto a supported locale.
func Parse(value string) (Locale, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return Default, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return English, true
	case "bn":
		return Bengali, true
	}
	return Default, false
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	return Supported()[index]
}

// Pick returns the Bengali variant for Bengali and the English one
// otherwise. An empty Bengali variant falls back to English.
func (l Locale) Pick(en, bn string) string {
	if l == Bengali && bn != "" {
		return bn
	}
	return en
}

func (l Locale) Tag() language.Tag {
	if l == Bengali {
		return language.Bengali
	}
	return language.English
}

// Printer formats numbers the way the locale writes them.
func (l Locale) Printer() *message.Printer {
	return message.NewPrinter(l.Tag())
}
