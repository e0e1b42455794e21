package app

import (
	"testing"

	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
)

func triageGroups() []model.SenderGroup {
	emails := []model.Email{
		{ID: "a", Sender: "Amazon", SenderEmail: "no-reply@amazon.com", Date: "2024-01-01T00:00:00Z"},
		{ID: "b", Sender: "Amazon", SenderEmail: "no-reply@amazon.com", Date: "2024-01-05T00:00:00Z", IsRead: true},
		{ID: "c", Sender: "Chase", SenderEmail: "alerts@chase.com", Date: "2024-01-02T00:00:00Z"},
	}
	return grouping.GroupBySender(emails)
}

func connectedCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c := NewCoordinator()
	c.SetView(ViewListing)
	c.SetGroups(triageGroups())
	return c
}

func TestNavigation(t *testing.T) {
	c := connectedCoordinator(t)

	if !c.OpenGroup("No-Reply@Amazon.COM") {
		t.Fatal("OpenGroup failed for existing group")
	}
	if c.View() != ViewGroupDetail {
		t.Fatalf("view got %v", c.View())
	}
	if !c.OpenEmail("b") {
		t.Fatal("OpenEmail failed for email in open group")
	}
	if c.OpenEmail("c") {
		t.Error("OpenEmail succeeded for email outside open group")
	}

	c.Back()
	if c.View() != ViewGroupDetail {
		t.Fatalf("after back got %v", c.View())
	}
	c.Back()
	if c.View() != ViewListing {
		t.Fatalf("after second back got %v", c.View())
	}

	c.SetView(ViewCompleted)
	c.Back()
	if c.View() != ViewListing {
		t.Fatalf("completed should loop to listing, got %v", c.View())
	}
}

func TestMergeAnalyses(t *testing.T) {
	c := connectedCoordinator(t)

	added := c.MergeAnalyses([]model.AnalysisResult{
		{EmailID: "a", Category: model.CategoryPromotional, Reasoning: "first"},
		{EmailID: "gone", Category: model.CategorySpam},
	})
	if added != 1 {
		t.Fatalf("added got %d", added)
	}
	if _, ok := c.Analysis("gone"); ok {
		t.Error("result for unknown id was cached")
	}

	// A second result for the same id never replaces the stored value.
	added = c.MergeAnalyses([]model.AnalysisResult{
		{EmailID: "a", Category: model.CategorySpam, Reasoning: "second"},
	})
	if added != 0 {
		t.Errorf("re-merge added %d", added)
	}
	got, _ := c.Analysis("a")
	if got.Reasoning != "first" {
		t.Errorf("cached value replaced: %+v", got)
	}

	uncached := c.UncachedIDs([]string{"a", "b", "c"})
	if len(uncached) != 2 {
		t.Errorf("uncached got %v", uncached)
	}
}

func TestMergeEmails(t *testing.T) {
	c := connectedCoordinator(t)
	c.SetGroupAnalysis("no-reply@amazon.com", &model.GroupAnalysis{
		Category:       model.CategoryPromotional,
		Recommendation: "delete",
	})

	added := c.MergeEmails([]model.Email{
		{ID: "a", SenderEmail: "no-reply@amazon.com", Date: "2024-01-01T00:00:00Z"}, // duplicate
		{ID: "d", Sender: "Amazon", SenderEmail: "NO-REPLY@amazon.com", Date: "2023-12-01T00:00:00Z", IsRead: true},
		{ID: "e", Sender: "GitHub", SenderEmail: "noreply@github.com", Date: "2024-01-03T00:00:00Z"},
	})
	if added != 2 {
		t.Fatalf("added got %d", added)
	}

	g, ok := c.Group("no-reply@amazon.com")
	if !ok || g.EmailCount != 3 {
		t.Fatalf("amazon group got %+v", g)
	}
	if g.OldestDate != "2023-12-01T00:00:00Z" {
		t.Errorf("oldest got %q", g.OldestDate)
	}
	if g.Analysis == nil || g.Analysis.Recommendation != "delete" {
		t.Error("group analysis lost across merge")
	}
	if _, ok := c.Group("noreply@github.com"); !ok {
		t.Error("new sender group missing")
	}
}

func TestApplyTrashOutcome_PartialFailure(t *testing.T) {
	c := connectedCoordinator(t)
	c.MergeAnalyses([]model.AnalysisResult{
		{EmailID: "a", Category: model.CategoryPromotional},
		{EmailID: "b", Category: model.CategoryPromotional},
		{EmailID: "c", Category: model.CategoryFinance},
	})

	requested := []string{"a", "b", "c"}
	removed := c.ApplyTrashOutcome(requested, model.TrashOutcome{
		Success:      false,
		TrashedCount: 2,
		FailedIDs:    []string{"b"},
	})
	if len(removed) != 2 {
		t.Fatalf("removed got %v", removed)
	}

	// The failed id stays fully intact: in its group and in the cache.
	g, ok := c.Group("no-reply@amazon.com")
	if !ok || g.EmailCount != 1 || g.Emails[0].ID != "b" {
		t.Fatalf("amazon group got %+v", g)
	}
	if _, ok := c.Analysis("b"); !ok {
		t.Error("failed id evicted from cache")
	}
	if _, ok := c.Analysis("a"); ok {
		t.Error("trashed id still cached")
	}
	if _, ok := c.Group("alerts@chase.com"); ok {
		t.Error("emptied group survived")
	}
}

func TestApplyTrashOutcome_Idempotent(t *testing.T) {
	c := connectedCoordinator(t)
	ids := []string{"a"}
	out := model.TrashOutcome{Success: true, TrashedCount: 1}

	c.ApplyTrashOutcome(ids, out)
	before := c.TotalEmails()
	if removed := c.ApplyTrashOutcome(ids, out); removed != nil {
		// RemoveEmails on unknown ids is a no-op; the second apply must not
		// change the collection.
		if c.TotalEmails() != before {
			t.Fatalf("second apply changed state: %d -> %d", before, c.TotalEmails())
		}
	}
}

func TestReconcile_GroupDetailFallsBackToListing(t *testing.T) {
	c := connectedCoordinator(t)
	c.OpenGroup("alerts@chase.com")

	c.ApplyTrashOutcome([]string{"c"}, model.TrashOutcome{Success: true, TrashedCount: 1})
	if c.View() != ViewListing {
		t.Fatalf("view got %v, want listing after group vanished", c.View())
	}
	if _, ok := c.CurrentGroup(); ok {
		t.Error("dangling current group")
	}
}

func TestReconcile_EmailDetailFallsBackToGroupDetail(t *testing.T) {
	c := connectedCoordinator(t)
	c.OpenGroup("no-reply@amazon.com")
	c.OpenEmail("a")

	// A concurrent trash removes the viewed email but not its group.
	c.ApplyTrashOutcome([]string{"a"}, model.TrashOutcome{Success: true, TrashedCount: 1})
	if c.View() != ViewGroupDetail {
		t.Fatalf("view got %v, want group detail", c.View())
	}

	// Emptying the group from email detail drops straight to listing.
	c.OpenEmail("b")
	c.ApplyTrashOutcome([]string{"b"}, model.TrashOutcome{Success: true, TrashedCount: 1})
	if c.View() != ViewListing {
		t.Fatalf("view got %v, want listing", c.View())
	}
}

func TestReset(t *testing.T) {
	c := connectedCoordinator(t)
	c.MergeAnalyses([]model.AnalysisResult{{EmailID: "a", Category: model.CategorySpam}})
	c.OpenGroup("no-reply@amazon.com")

	c.Reset()
	if c.View() != ViewUnauthenticated {
		t.Fatalf("view got %v", c.View())
	}
	if c.GroupCount() != 0 || c.TotalEmails() != 0 {
		t.Error("groups survived reset")
	}
	if _, ok := c.Analysis("a"); ok {
		t.Error("cache survived reset")
	}
}
