package tracker

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashUSDate  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	looseLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"1/2/2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"Mon Jan 2 2006",
		time.RFC1123,
	}
)

// ToYYYYMMDD normalizes a date string to YYYY-MM-DD. MM/DD/YYYY is read month
// first. Unparseable input yields "".
func ToYYYYMMDD(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if isoDate.MatchString(s) {
		return s
	}
	if m := slashUSDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[1] + "-" + m[2]
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}
