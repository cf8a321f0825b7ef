package document

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const datePattern = `(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sample.*?date.*?` + datePattern),
		regexp.MustCompile(`(?i)collected.*?` + datePattern),
		regexp.MustCompile(`(?i)test.*?date.*?` + datePattern),
		regexp.MustCompile(datePattern),
	}

	// month-first layouts are tried before day-first
	dateLayouts = []string{"1/2/2006", "1-2-2006", "1.2.2006", "2/1/2006", "1/2/06"}

	labPattern = regexp.MustCompile(`(?i)(Viome|Thryve|uBiome|Gut Intelligence|Microba)`)

	diversityPatterns = map[string]*regexp.Regexp{
		"shannon": regexp.MustCompile(`(?i)shannon.*?diversity.*?(\d+\.?\d*)`),
		"simpson": regexp.MustCompile(`(?i)simpson.*?index.*?(\d+\.?\d*)`),
	}
)

// Metadata is what can be read off a report's text before any conversation.
type Metadata struct {
	SampleDate      *time.Time
	SampleAgeMonths int
	LabName         string
	Diversity       map[string]float64
}

// ExtractMetadata scans report text for the sample date, lab and diversity metrics.
// now is used to compute the sample age.
func ExtractMetadata(text string, now time.Time) Metadata {
	var md Metadata

	if d := ExtractSampleDate(text); d != nil {
		md.SampleDate = d
		md.SampleAgeMonths = MonthsBetween(*d, now)
	}

	if m := labPattern.FindStringSubmatch(text); m != nil {
		md.LabName = m[1]
	}

	for name, re := range diversityPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSuffix(m[1], "."), 64); err == nil {
			if md.Diversity == nil {
				md.Diversity = make(map[string]float64)
			}
			md.Diversity[name] = v
		}
	}

	return md
}

// ExtractSampleDate returns the first date found, trying labelled patterns
// before a bare date anywhere in the text.
func ExtractSampleDate(text string) *time.Time {
	for _, re := range datePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return &t
			}
		}
	}
	return nil
}

// MonthsBetween counts calendar months from then to now.
func MonthsBetween(then, now time.Time) int {
	return (now.Year()-then.Year())*12 + int(now.Month()-then.Month())
}

// ToMap renders the metadata in the shape stored on a report.
func (m Metadata) ToMap() map[string]interface{} {
	out := map[string]interface{}{}
	if m.SampleDate != nil {
		out["sample_date"] = m.SampleDate.Format("2006-01-02")
		out["sample_age_months"] = m.SampleAgeMonths
	}
	if m.LabName != "" {
		out["lab_name"] = m.LabName
	}
	if len(m.Diversity) > 0 {
		diversity := make(map[string]interface{}, len(m.Diversity))
		for k, v := range m.Diversity {
			diversity[k] = v
		}
		out["diversity_metrics"] = diversity
	}
	return out
}
