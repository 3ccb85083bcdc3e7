package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dogubilet/ticket-backend/internal/models"
)

// Month names after folding, so both "mayıs" and "mayis" land on "mayis"
var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"agustos": time.August,
	"eylül":   time.September,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasim":   time.November,
	"aralik":  time.December,
}

var dayMonthPattern = regexp.MustCompile(`(\d{1,2})\s*(ocak|şubat|subat|mart|nisan|mayis|haziran|temmuz|ağustos|agustos|eylül|eylul|ekim|kasim|aralik)`)

// foldTurkish lowercases with Turkish rules (İ→i, I→ı) and then merges
// dotless ı into i, so "Isparta", "ısparta" and "isparta" compare equal.
// Other letters keep their marks: folding ş would turn "müsait" into a Muş match.
func foldTurkish(s string) string {
	return strings.ReplaceAll(strings.ToLowerSpecial(unicode.TurkishCase, s), "ı", "i")
}

// QueryExtractor pulls a trip query out of a free-text chat message
type QueryExtractor struct {
	cities []string
	folded []string
}

// NewQueryExtractor creates an extractor over cities. Ties between cities
// found at the same position are broken by list order.
func NewQueryExtractor(cities []string) *QueryExtractor {
	folded := make([]string, len(cities))
	for i, c := range cities {
		folded[i] = foldTurkish(c)
	}
	return &QueryExtractor{cities: cities, folded: folded}
}

// Extract returns the first two cities mentioned (in order of appearance)
// and a date. It reports false unless both cities and a date are found.
func (e *QueryExtractor) Extract(message string, today models.Date) (models.TripQuery, bool) {
	text := foldTurkish(message)

	type match struct {
		index int
		city  string
	}
	var matches []match
	for i, c := range e.folded {
		if idx := strings.Index(text, c); idx >= 0 {
			matches = append(matches, match{index: idx, city: e.cities[i]})
		}
	}
	if len(matches) < 2 {
		return models.TripQuery{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].index < matches[j].index
	})

	date, ok := extractDate(text, today)
	if !ok {
		return models.TripQuery{}, false
	}

	return models.TripQuery{
		Origin:      matches[0].city,
		Destination: matches[1].city,
		Date:        date,
	}, true
}

// extractDate expects already folded text
func extractDate(text string, today models.Date) (models.Date, bool) {
	if strings.Contains(text, "bugün") || strings.Contains(text, "bugun") {
		return today, true
	}
	if strings.Contains(text, "yarin") {
		return today.AddDays(1), true
	}

	m := dayMonthPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Date{}, false
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return models.Date{}, false
	}
	month := turkishMonths[m[2]]

	date := models.NewDate(today.Year(), month, day)
	// time.Date normalises 31 şubat into March; reject that
	if date.Day() != day || date.Month() != month {
		return models.Date{}, false
	}
	return date, true
}
