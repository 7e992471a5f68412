package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Registry pages were stored with escaped line breaks, so the literal
// two-character sequences show up inside text.
var artifactReplacer = strings.NewReplacer(
	`\r\n`, " ",
	`\r`, " ",
	`\n`, " ",
	"\u00a0", " ",
)

var amountReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// Clean strips line-continuation artifacts and collapses whitespace.
func Clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(artifactReplacer.Replace(s), " "))
}

// ParseAmount parses a currency cell such as "$1,000.00".
func ParseAmount(s string) (float64, error) {
	return strconv.ParseFloat(amountReplacer.Replace(Clean(s)), 64)
}

// Amount parses a present value with ParseAmount.
func Amount(f Field[string]) Field[float64] {
	return Then(f, func(s string) (float64, bool) {
		v, err := ParseAmount(s)
		return v, err == nil
	})
}

// Date parses a present value with layout.
func Date(layout string, f Field[string]) Field[time.Time] {
	return Then(f, func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, Clean(s))
		return t, err == nil
	})
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = Clean(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
