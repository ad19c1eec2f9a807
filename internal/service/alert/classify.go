package alert

import (
	"math"
	"time"

	"github.com/jwalitptl/procurement-api/internal/model"
)

// DefaultLookahead is how far ahead a deadline counts as approaching
const DefaultLookahead = 72 * time.Hour

// Classification partitions items by deadline status. The two sets are disjoint.
type Classification struct {
	Approaching []*model.Item
	Overdue     []*model.Item
}

// Classify sorts non-completed items with a deadline into approaching
// (now <= deadline <= now+lookahead) and overdue (deadline < now).
// Everything else is dropped.
func Classify(items []*model.Item, now time.Time, lookahead time.Duration) Classification {
	var c Classification
	horizon := now.Add(lookahead)

	for _, item := range items {
		if item == nil || item.Deadline == nil || item.Status == model.ItemStatusCompleted {
			continue
		}

		deadline := *item.Deadline
		switch {
		case deadline.Before(now):
			c.Overdue = append(c.Overdue, item)
		case !deadline.After(horizon):
			c.Approaching = append(c.Approaching, item)
		}
	}
	return c
}

// ceilDays rounds a duration up to whole days, so 0.1 days reports as 1
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// startOfDay returns local midnight of t in loc
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
