// Package listing filters and sorts the admin order list. Apply is a
// pure function of its inputs; the reference moment is passed in by
// the caller so date buckets are deterministic under test.
package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wayofglory/shop/internal/domain/models"
)

// Period is a relative creation-time window.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Sort selects the ordering of the result list.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortHighest Sort = "highest"
	SortLowest  Sort = "lowest"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Criteria are the four independent filters selected by the operator.
// Zero values mean "no filtering, newest first".
type Criteria struct {
	// Search is matched case-insensitively as a substring of first
	// name, last name, email, and the order id rendered as text.
	Search string
	// Status is an exact status match, or "all"/empty for everything.
	Status string
	// Period keeps only orders created within the window.
	Period Period
	// Sort defaults to newest first.
	Sort Sort
}

// Day-window widths for the relative periods.
const (
	weekDays  = 7
	monthDays = 30
	yearDays  = 365
)

// day truncates a moment to its calendar day in UTC. Both the order
// timestamp and the window boundary go through this, so comparisons
// are at day resolution in a single pinned zone.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func matchesSearch(order models.Order, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(order.FirstName), needle) ||
		strings.Contains(strings.ToLower(order.LastName), needle) ||
		strings.Contains(strings.ToLower(order.Email), needle) ||
		strings.Contains(strconv.FormatInt(order.ID, 10), needle)
}

func matchesPeriod(order models.Order, period Period, now time.Time) bool {
	orderDay := day(order.CreatedAt)
	today := day(now)
	switch period {
	case PeriodToday:
		return orderDay.Equal(today)
	case PeriodWeek:
		return !orderDay.Before(today.AddDate(0, 0, -weekDays))
	case PeriodMonth:
		return !orderDay.Before(today.AddDate(0, 0, -monthDays))
	case PeriodYear:
		return !orderDay.Before(today.AddDate(0, 0, -yearDays))
	}
	return true
}

// Apply returns the filtered, ordered view list. The search, status
// and period predicates are independent and commute; sorting happens
// once at the end. The input slice is never mutated.
func Apply(orders []models.Order, criteria Criteria, now time.Time) []models.Order {
	filtered := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if criteria.Search != "" && !matchesSearch(order, criteria.Search) {
			continue
		}
		if criteria.Status != "" && criteria.Status != StatusAll &&
			string(order.Status) != criteria.Status {
			continue
		}
		if criteria.Period != "" && criteria.Period != PeriodAll &&
			!matchesPeriod(order, criteria.Period, now) {
			continue
		}
		filtered = append(filtered, order)
	}

	// Stable sort so amount ties keep their incoming order.
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch criteria.Sort {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortHighest:
			return a.TotalAmount.Decimal.GreaterThan(b.TotalAmount.Decimal)
		case SortLowest:
			return a.TotalAmount.Decimal.LessThan(b.TotalAmount.Decimal)
		default: // newest
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return filtered
}

// ParsePeriod maps a query parameter to a Period, defaulting to all.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s)
	}
	return PeriodAll
}

// ParseSort maps a query parameter to a Sort, defaulting to newest.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortOldest, SortHighest, SortLowest:
		return Sort(s)
	}
	return SortNewest
}
