package admin

import (
	"maps"
	"net/url"
	"time"

	"github.com/simp-lee/myproject/internal/domain"
)

// FilterGroup is one sidebar section of the changelist.
type FilterGroup struct {
	Title   string
	Choices []FilterChoice
}

// FilterChoice is a link that applies one filter value.
type FilterChoice struct {
	Label    string
	URL      string
	Selected bool
}

var filterSuffixes = []string{"", "__gte", "__gt", "__lte", "__lt"}

// dateRanges returns the relative ranges offered for date and time columns.
// Each range is a half-open interval [from, to) expressed as YYYY-MM-DD
// bounds so it applies to date and datetime columns alike.
func dateRanges(now time.Time) []struct {
	label    string
	from, to time.Time
} {
	today := domain.Date(now.UTC())
	tomorrow := today.AddDate(0, 0, 1)
	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	year := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	return []struct {
		label    string
		from, to time.Time
	}{
		{"Today", today, tomorrow},
		{"Past 7 days", today.AddDate(0, 0, -7), tomorrow},
		{"This month", month, month.AddDate(0, 1, 0)},
		{"This year", year, year.AddDate(1, 0, 0)},
	}
}

// buildFilters renders the sidebar for cols given the current query.
func buildFilters(path string, query url.Values, cols []column, now time.Time) []FilterGroup {
	groups := make([]FilterGroup, 0, len(cols))
	for _, col := range cols {
		var choices []FilterChoice
		switch col.kind {
		case kindDate, kindTime:
			choices = append(choices, choice(path, query, col.name, "Any date", nil))
			for _, r := range dateRanges(now) {
				choices = append(choices, choice(path, query, col.name, r.label, map[string]string{
					col.name + "__gte": r.from.Format(domain.DateLayout),
					col.name + "__lt":  r.to.Format(domain.DateLayout),
				}))
			}
		case kindBool:
			choices = []FilterChoice{
				choice(path, query, col.name, "All", nil),
				choice(path, query, col.name, "Yes", map[string]string{col.name: "true"}),
				choice(path, query, col.name, "No", map[string]string{col.name: "false"}),
			}
		default:
			continue
		}
		groups = append(groups, FilterGroup{Title: "By " + col.label, Choices: choices})
	}
	return groups
}

func choice(path string, query url.Values, field, label string, set map[string]string) FilterChoice {
	q := url.Values{}
	maps.Copy(q, query)
	q.Del("page")

	current := make(map[string]string)
	for _, suffix := range filterSuffixes {
		key := field + suffix
		if v := query.Get(key); v != "" {
			current[key] = v
		}
		q.Del(key)
	}
	for k, v := range set {
		q.Set(k, v)
	}

	u := path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return FilterChoice{
		Label:    label,
		URL:      u,
		Selected: maps.Equal(current, nilToEmpty(set)),
	}
}

func nilToEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
