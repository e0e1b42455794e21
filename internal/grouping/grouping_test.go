package grouping

import (
	"testing"

	"inboxguardian/internal/model"
)

func email(id, sender, addr, date string, read bool) model.Email {
	return model.Email{
		ID:          id,
		Subject:     "subj " + id,
		Sender:      sender,
		SenderEmail: addr,
		Date:        date,
		IsRead:      read,
	}
}

func groupFor(t *testing.T, groups []model.SenderGroup, addr string) model.SenderGroup {
	t.Helper()
	for _, g := range groups {
		if g.SenderEmail == addr {
			return g
		}
	}
	t.Fatalf("no group for %s in %v", addr, groups)
	return model.SenderGroup{}
}

func TestGroupBySender_CaseInsensitiveKey(t *testing.T) {
	emails := []model.Email{
		email("1", "Amazon", "No-Reply@Amazon.com", "2024-01-02T10:00:00Z", false),
		email("2", "Amazon.com", "no-reply@amazon.com", "2024-01-05T10:00:00Z", true),
		email("3", "Uber", "noreply@uber.com", "2024-01-01T10:00:00Z", false),
	}

	groups := GroupBySender(emails)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	amazon := groupFor(t, groups, "No-Reply@Amazon.com")
	if amazon.SenderName != "Amazon" {
		t.Errorf("first-seen name want Amazon got %q", amazon.SenderName)
	}
	if amazon.EmailCount != 2 || amazon.UnreadCount != 1 {
		t.Errorf("counts got %d/%d", amazon.EmailCount, amazon.UnreadCount)
	}
	if amazon.OldestDate != "2024-01-02T10:00:00Z" || amazon.NewestDate != "2024-01-05T10:00:00Z" {
		t.Errorf("date range got %s .. %s", amazon.OldestDate, amazon.NewestDate)
	}
}

func TestGroupBySender_CountDescStableOrder(t *testing.T) {
	emails := []model.Email{
		email("1", "A", "a@x.com", "2024-01-01T00:00:00Z", true),
		email("2", "B", "b@x.com", "2024-01-01T00:00:00Z", true),
		email("3", "C", "c@x.com", "2024-01-01T00:00:00Z", true),
		email("4", "C", "c@x.com", "2024-01-02T00:00:00Z", true),
	}

	groups := GroupBySender(emails)
	want := []string{"c@x.com", "a@x.com", "b@x.com"}
	for i, addr := range want {
		if groups[i].SenderEmail != addr {
			t.Fatalf("idx %d want %s got %s", i, addr, groups[i].SenderEmail)
		}
	}
}

func TestGroupBySender_PartitionInvariant(t *testing.T) {
	emails := []model.Email{
		email("1", "A", "a@x.com", "2024-01-01T00:00:00Z", false),
		email("2", "B", "b@x.com", "2024-01-02T00:00:00Z", true),
		email("3", "A", "A@X.COM", "2024-01-03T00:00:00Z", false),
	}

	groups := GroupBySender(emails)
	seen := make(map[string]int)
	total := 0
	for _, g := range groups {
		if g.EmailCount != len(g.Emails) {
			t.Errorf("%s EmailCount %d != len(Emails) %d", g.SenderEmail, g.EmailCount, len(g.Emails))
		}
		total += g.EmailCount
		for _, e := range g.Emails {
			seen[e.ID]++
		}
	}
	if total != len(emails) {
		t.Errorf("total %d want %d", total, len(emails))
	}
	for _, e := range emails {
		if seen[e.ID] != 1 {
			t.Errorf("email %s appears %d times", e.ID, seen[e.ID])
		}
	}
}

func TestSortGroups(t *testing.T) {
	groups := []model.SenderGroup{
		{SenderEmail: "a@x.com", SenderName: "zeta", EmailCount: 1, NewestDate: "2024-03-01T00:00:00Z", OldestDate: "2024-01-01T00:00:00Z"},
		{SenderEmail: "b@x.com", SenderName: "Alpha", EmailCount: 3, NewestDate: "2024-02-01T00:00:00Z", OldestDate: "2023-06-01T00:00:00Z"},
		{SenderEmail: "c@x.com", SenderName: "mid", EmailCount: 2, NewestDate: "2024-04-01T00:00:00Z", OldestDate: "2024-02-15T00:00:00Z"},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByCount, []string{"b@x.com", "c@x.com", "a@x.com"}},
		{SortByName, []string{"b@x.com", "c@x.com", "a@x.com"}},
		{SortByNewest, []string{"c@x.com", "a@x.com", "b@x.com"}},
		{SortByOldest, []string{"b@x.com", "a@x.com", "c@x.com"}},
	}
	for _, tc := range tests {
		got := SortGroups(groups, tc.key)
		for i, addr := range tc.want {
			if got[i].SenderEmail != addr {
				t.Errorf("%s idx %d want %s got %s", tc.key, i, addr, got[i].SenderEmail)
			}
		}
	}

	// Input order must survive sorting.
	if groups[0].SenderEmail != "a@x.com" || groups[2].SenderEmail != "c@x.com" {
		t.Error("SortGroups mutated its input")
	}
}

func TestFilterGroups(t *testing.T) {
	groups := []model.SenderGroup{
		{SenderEmail: "no-reply@amazon.com", SenderName: "Amazon"},
		{SenderEmail: "alerts@chase.com", SenderName: "Chase Bank"},
		{SenderEmail: "news@netflix.com", SenderName: "Netflix"},
	}

	if got := FilterGroups(groups, ""); len(got) != 3 {
		t.Errorf("blank term filtered to %d", len(got))
	}
	if got := FilterGroups(groups, "  "); len(got) != 3 {
		t.Errorf("whitespace term filtered to %d", len(got))
	}
	if got := FilterGroups(groups, "AMAZON"); len(got) != 1 || got[0].SenderName != "Amazon" {
		t.Errorf("name match got %v", got)
	}
	if got := FilterGroups(groups, "chase.com"); len(got) != 1 || got[0].SenderName != "Chase Bank" {
		t.Errorf("address match got %v", got)
	}
	if got := FilterGroups(groups, "nothing"); len(got) != 0 {
		t.Errorf("no match got %v", got)
	}
}

func TestRemoveEmails(t *testing.T) {
	analysis := &model.GroupAnalysis{Category: model.CategoryPromotional, Recommendation: "delete"}
	groups := GroupBySender([]model.Email{
		email("1", "A", "a@x.com", "2024-01-01T00:00:00Z", false),
		email("2", "A", "a@x.com", "2024-01-05T00:00:00Z", false),
		email("3", "A", "a@x.com", "2024-01-03T00:00:00Z", true),
		email("4", "B", "b@x.com", "2024-02-01T00:00:00Z", false),
	})
	for i := range groups {
		if groups[i].SenderEmail == "a@x.com" {
			groups[i].Analysis = analysis
		}
	}

	out := RemoveEmails(groups, []string{"2", "4"})
	if len(out) != 1 {
		t.Fatalf("want 1 surviving group, got %d", len(out))
	}
	a := out[0]
	if a.EmailCount != 2 || a.UnreadCount != 1 {
		t.Errorf("counts got %d/%d", a.EmailCount, a.UnreadCount)
	}
	if a.OldestDate != "2024-01-01T00:00:00Z" || a.NewestDate != "2024-01-03T00:00:00Z" {
		t.Errorf("date range got %s .. %s", a.OldestDate, a.NewestDate)
	}
	if a.Analysis != analysis {
		t.Error("analysis not preserved")
	}
}

func TestRemoveEmails_UnknownIDsNoOp(t *testing.T) {
	groups := GroupBySender([]model.Email{
		email("1", "A", "a@x.com", "2024-01-01T00:00:00Z", false),
	})
	out := RemoveEmails(groups, []string{"nope"})
	if len(out) != 1 || out[0].EmailCount != 1 {
		t.Fatalf("unexpected change: %v", out)
	}
}

func TestRemoveEmails_Composition(t *testing.T) {
	emails := []model.Email{
		email("1", "A", "a@x.com", "2024-01-01T00:00:00Z", false),
		email("2", "A", "a@x.com", "2024-01-02T00:00:00Z", false),
		email("3", "B", "b@x.com", "2024-01-03T00:00:00Z", false),
		email("4", "B", "b@x.com", "2024-01-04T00:00:00Z", false),
	}
	groups := GroupBySender(emails)

	once := RemoveEmails(groups, []string{"1", "3"})
	twice := RemoveEmails(RemoveEmails(groups, []string{"1"}), []string{"3"})
	if len(once) != len(twice) {
		t.Fatalf("composition mismatch: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].SenderEmail != twice[i].SenderEmail || once[i].EmailCount != twice[i].EmailCount {
			t.Errorf("idx %d mismatch: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestCompareDates(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", -1},
		{"2024-01-02T00:00:00Z", "2024-01-01T00:00:00Z", 1},
		{"2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z", 0},
		// Mixed offsets compare as instants, not strings.
		{"2024-01-01T12:00:00+02:00", "2024-01-01T11:00:00Z", -1},
		{"2024-01-01", "2024-01-02", -1},
		// Unparsable values fall back to lexicographic order.
		{"aaa", "bbb", -1},
	}
	for _, tc := range tests {
		got := CompareDates(tc.a, tc.b)
		if (got < 0) != (tc.want < 0) || (got > 0) != (tc.want > 0) {
			t.Errorf("CompareDates(%q, %q) = %d want sign of %d", tc.a, tc.b, got, tc.want)
		}
	}
}
