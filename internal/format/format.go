package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Quantity groups digits of a numeric display value for lang, e.g.
// Quantity("1500", "en") => "1,500". Non-numeric values such as
// "15 Mbps" are returned unchanged.
func Quantity(v, lang string) string {
	s := strings.TrimSpace(v)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v
	}
	p := message.NewPrinter(tag(lang))
	if f == float64(int64(f)) {
		return p.Sprintf("%d", int64(f))
	}
	return p.Sprintf("%v", f)
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ar":
		return t.Format("2006/01/02")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func tag(lang string) language.Tag {
	t, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.English
	}
	return t
}
