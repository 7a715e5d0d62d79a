package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// buddhistEraOffset converts a Gregorian year to the Thai solar calendar.
const buddhistEraOffset = 543

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Currency formats amount with two decimals and locale digit grouping,
// e.g. 1234.5 => "1,234.50".
func Currency(amount float64, tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%.2f", amount)
}

// Quantity formats an item quantity without trailing zeros.
func Quantity(q float64, tag language.Tag) string {
	if q == float64(int64(q)) {
		return message.NewPrinter(tag).Sprintf("%d", int64(q))
	}
	return message.NewPrinter(tag).Sprintf("%v", q)
}

// ParseTimestamp accepts the timestamp shapes the receipt store emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateTime renders a store timestamp as dd/mm/yyyy hh:mm in loc. Thai uses
// the Buddhist era year. Unparseable input is returned unchanged.
func DateTime(s string, tag language.Tag, loc *time.Location) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	if loc != nil {
		t = t.In(loc)
	}
	base, _ := tag.Base()
	if base.String() == "th" {
		return t.Format("02/01/") + strconv.Itoa(t.Year()+buddhistEraOffset) + t.Format(" 15:04")
	}
	return t.Format("02/01/2006 15:04")
}
