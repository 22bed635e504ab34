package episode

import (
	"fmt"
	"strings"
	"time"
)

// Supported locales for published labels.
const (
	LocalePtBR = "pt-BR"
	LocaleEn   = "en"
)

var monthAbbrev = map[string][12]string{
	LocalePtBR: {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	LocaleEn:   {"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"},
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatPublished renders t as "d MMM yy" using the locale's month names.
// Unknown locales fall back to pt-BR. A zero time renders as "".
func FormatPublished(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	months, ok := monthAbbrev[locale]
	if !ok {
		months = monthAbbrev[LocalePtBR]
	}
	return fmt.Sprintf("%d %s %02d", t.Day(), months[t.Month()-1], t.Year()%100)
}

// IsSupportedLocale reports whether FormatPublished knows the locale.
func IsSupportedLocale(locale string) bool {
	_, ok := monthAbbrev[strings.TrimSpace(locale)]
	return ok
}
