package scraper

import (
	"regexp"
	"strconv"

	"github.com/yanggf8/travel-2026/internal/schema"
)

// Checked-baggage phrasing observed across the supported OTAs. Included
// patterns capture the allowance in kg.
var baggageIncludedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`託運行李\s*(\d+)\s*公斤`),
	regexp.MustCompile(`(?i)含\s*(\d+)\s*kg\s*行李`),
	regexp.MustCompile(`(?i)checked baggage.*?(\d+)\s*kg`),
	regexp.MustCompile(`(?i)免費託運.*?(\d+)\s*kg`),
	regexp.MustCompile(`(?i)行李\s*(\d+)\s*kg`),
}

var baggageNotIncludedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`不含行李`),
	regexp.MustCompile(`無免費託運`),
	regexp.MustCompile(`行李.*另購`),
	regexp.MustCompile(`(?i)baggage not included`),
	regexp.MustCompile(`(?im)手提行李\s*\d+\s*kg\s*$`),
}

// ExtractBaggage detects checked-baggage inclusion and weight from raw page
// text. Both return values are nil when the text says nothing either way.
func ExtractBaggage(rawText string) (included *bool, kg *int) {
	for _, re := range baggageIncludedPatterns {
		if m := re.FindStringSubmatch(rawText); m != nil {
			weight, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return schema.Bool(true), schema.Int(weight)
		}
	}
	for _, re := range baggageNotIncludedPatterns {
		if re.MatchString(rawText) {
			return schema.Bool(false), nil
		}
	}
	return nil, nil
}
