// Package format renders durations and dates for the itinerary in German
// (de-CH, the default) or English.
package format

import (
	"strconv"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the locale the itinerary is written in.
var DefaultLang = language.MustParse("de-CH")

var supported = language.NewMatcher([]language.Tag{
	language.MustParse("de-CH"),
	language.German,
	language.English,
})

const (
	keyNow       = "now"
	keyDays      = "in %d days %dh"
	keyHours     = "in %dh %dmin"
	keyMinutes   = "in %dmin %ds"
	keySeconds   = "in %ds"
	keyRemaining = "%dh %dm %ds"
	keyDone      = "done"
)

func init() {
	for _, tag := range []language.Tag{language.MustParse("de-CH"), language.German} {
		_ = message.SetString(tag, keyNow, "Jetzt!")
		_ = message.Set(tag, keyDays, plural.Selectf(1, "%d",
			"=1", "in %[1]d Tag %[2]dh",
			"other", "in %[1]d Tagen %[2]dh",
		))
		_ = message.SetString(tag, keyHours, "in %dh %dmin")
		_ = message.SetString(tag, keyMinutes, "in %dmin %ds")
		_ = message.SetString(tag, keySeconds, "in %ds")
		_ = message.SetString(tag, keyRemaining, "%dh %dm %ds")
		_ = message.SetString(tag, keyDone, "Abgeschlossen")
	}
	_ = message.SetString(language.English, keyNow, "Now!")
	_ = message.Set(language.English, keyDays, plural.Selectf(1, "%d",
		"=1", "in %[1]d day %[2]dh",
		"other", "in %[1]d days %[2]dh",
	))
	_ = message.SetString(language.English, keyHours, "in %dh %dmin")
	_ = message.SetString(language.English, keyMinutes, "in %dmin %ds")
	_ = message.SetString(language.English, keySeconds, "in %ds")
	_ = message.SetString(language.English, keyRemaining, "%dh %dm %ds")
	_ = message.SetString(language.English, keyDone, "Done")
}

// Match picks the supported language closest to the given tags or
// Accept-Language values. It falls back to DefaultLang.
func Match(prefs ...string) language.Tag {
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		tag, _, conf := supported.Match(tags...)
		if conf == language.No {
			continue
		}
		return normalize(tag, tags)
	}
	return DefaultLang
}

// normalize maps a matcher result onto the registered catalogs. German is
// de-CH only when the caller asked for the CH region explicitly; the matcher
// alone would pull de-AT or de-LI towards the closest supported region.
func normalize(matched language.Tag, requested []language.Tag) language.Tag {
	if base, _ := matched.Base(); base.String() == "en" {
		return language.English
	}
	for _, r := range requested {
		if base, _ := r.Base(); base.String() != "de" {
			continue
		}
		if region, conf := r.Region(); conf == language.Exact && region.String() == "CH" {
			return DefaultLang
		}
		return language.German
	}
	if region, conf := matched.Region(); conf == language.Exact && region.String() == "CH" {
		return DefaultLang
	}
	return language.German
}

func printer(lang language.Tag) *message.Printer {
	return message.NewPrinter(lang)
}

func isGerman(lang language.Tag) bool {
	base, _ := lang.Base()
	return base.String() == "de"
}

// TimeUntil describes how far away a start is. Values at or below zero
// render as "now".
func TimeUntil(lang language.Tag, d time.Duration) string {
	p := printer(lang)
	if d <= 0 {
		return p.Sprintf(keyNow)
	}
	s := int(d / time.Second)
	days := s / 86400
	hours := (s % 86400) / 3600
	minutes := (s % 3600) / 60
	seconds := s % 60

	switch {
	case days > 0:
		return p.Sprintf(keyDays, days, hours)
	case hours > 0:
		return p.Sprintf(keyHours, hours, minutes)
	case minutes > 0:
		return p.Sprintf(keyMinutes, minutes, seconds)
	default:
		return p.Sprintf(keySeconds, seconds)
	}
}

// Remaining renders a clamped "Hh Mm Ss" duration, used for "ends in".
func Remaining(lang language.Tag, d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return printer(lang).Sprintf(keyRemaining, s/3600, (s%3600)/60, s%60)
}

// Done is the label for a finished event.
func Done(lang language.Tag) string {
	return printer(lang).Sprintf(keyDone)
}

var (
	weekdaysDE = [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}
	monthsDE   = [...]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"}
)

// LongDate renders e.g. "Mittwoch, 4. Februar".
func LongDate(t time.Time, lang language.Tag) string {
	if isGerman(lang) {
		return weekdaysDE[t.Weekday()] + ", " + itoa(t.Day()) + ". " + monthsDE[t.Month()-1]
	}
	return t.Format("Monday, January 2")
}

// ShortDate renders e.g. "Mi, 04.02.".
func ShortDate(t time.Time, lang language.Tag) string {
	if isGerman(lang) {
		return weekdaysDE[t.Weekday()][:2] + ", " + t.Format("02.01.")
	}
	return t.Format("Mon, 01/02")
}

// Clock renders the wall-clock time as "15:04".
func Clock(t time.Time) string {
	return t.Format("15:04")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
