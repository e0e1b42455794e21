// Package grouping implements the pure sender-aggregation transformations the
// application state is built on. All functions treat their inputs as
// immutable and return fresh slices.
package grouping

import (
	"sort"
	"strings"
	"time"

	"inboxguardian/internal/model"
	"inboxguardian/internal/util"
)

// SortKey selects the ordering for SortGroups.
type SortKey string

const (
	SortByCount  SortKey = "count"
	SortByName   SortKey = "name"
	SortByNewest SortKey = "newest"
	SortByOldest SortKey = "oldest"
)

// Next cycles to the following sort key, for a single-key UI toggle.
func (k SortKey) Next() SortKey {
	switch k {
	case SortByCount:
		return SortByName
	case SortByName:
		return SortByNewest
	case SortByNewest:
		return SortByOldest
	default:
		return SortByCount
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func parseWhen(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders two date strings chronologically when both parse, and
// lexicographically otherwise. Returns a negative value when a is earlier,
// positive when later, zero when equal.
func CompareDates(a, b string) int {
	ta, okA := parseWhen(a)
	tb, okB := parseWhen(b)
	if okA && okB {
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// GroupBySender partitions emails by lowercased sender address. The group
// keeps the first-seen spelling of the address and display name, counts
// unread messages, and tracks the oldest and newest dates. The result is
// ordered by email count descending; groups with equal counts keep first
// encounter order.
func GroupBySender(emails []model.Email) []model.SenderGroup {
	index := make(map[string]int)
	var groups []model.SenderGroup

	for _, email := range emails {
		key := util.NormalizeAddress(email.SenderEmail)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.SenderGroup{
				SenderEmail: email.SenderEmail,
				SenderName:  email.Sender,
				OldestDate:  email.Date,
				NewestDate:  email.Date,
			})
		}
		g := &groups[i]
		g.Emails = append(g.Emails, email)
		g.EmailCount++
		if !email.IsRead {
			g.UnreadCount++
		}
		if CompareDates(email.Date, g.OldestDate) < 0 {
			g.OldestDate = email.Date
		}
		if CompareDates(email.Date, g.NewestDate) > 0 {
			g.NewestDate = email.Date
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].EmailCount > groups[b].EmailCount
	})
	return groups
}

// SortGroups returns a sorted copy of groups. The input is never mutated and
// ties preserve the input order.
func SortGroups(groups []model.SenderGroup, key SortKey) []model.SenderGroup {
	sorted := make([]model.SenderGroup, len(groups))
	copy(sorted, groups)

	switch key {
	case SortByName:
		sort.SliceStable(sorted, func(a, b int) bool {
			return strings.ToLower(sorted[a].SenderName) < strings.ToLower(sorted[b].SenderName)
		})
	case SortByNewest:
		sort.SliceStable(sorted, func(a, b int) bool {
			return CompareDates(sorted[a].NewestDate, sorted[b].NewestDate) > 0
		})
	case SortByOldest:
		sort.SliceStable(sorted, func(a, b int) bool {
			return CompareDates(sorted[a].OldestDate, sorted[b].OldestDate) < 0
		})
	default: // SortByCount
		sort.SliceStable(sorted, func(a, b int) bool {
			return sorted[a].EmailCount > sorted[b].EmailCount
		})
	}
	return sorted
}

// FilterGroups keeps the groups whose sender name or address contains term,
// case-insensitively. A blank term returns the input unchanged.
func FilterGroups(groups []model.SenderGroup, term string) []model.SenderGroup {
	term = strings.TrimSpace(term)
	if term == "" {
		return groups
	}
	needle := strings.ToLower(term)

	var out []model.SenderGroup
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.SenderName), needle) ||
			strings.Contains(strings.ToLower(g.SenderEmail), needle) {
			out = append(out, g)
		}
	}
	return out
}

// RemoveEmails drops the emails with the given ids from every group,
// recomputes each survivor's aggregates from its remaining emails, and prunes
// groups left empty. Cached analyses on surviving groups are preserved.
func RemoveEmails(groups []model.SenderGroup, ids []string) []model.SenderGroup {
	if len(ids) == 0 {
		return groups
	}
	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}

	var out []model.SenderGroup
	for _, g := range groups {
		var remaining []model.Email
		for _, e := range g.Emails {
			if _, gone := removed[e.ID]; !gone {
				remaining = append(remaining, e)
			}
		}
		if len(remaining) == 0 {
			continue
		}

		next := g
		next.Emails = remaining
		next.EmailCount = len(remaining)
		next.UnreadCount = 0
		next.OldestDate = remaining[0].Date
		next.NewestDate = remaining[0].Date
		for _, e := range remaining {
			if !e.IsRead {
				next.UnreadCount++
			}
			if CompareDates(e.Date, next.OldestDate) < 0 {
				next.OldestDate = e.Date
			}
			if CompareDates(e.Date, next.NewestDate) > 0 {
				next.NewestDate = e.Date
			}
		}
		out = append(out, next)
	}
	return out
}
