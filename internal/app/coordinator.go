// Package app holds the application state coordinator and the terminal UI
// built on top of it.
package app

import (
	"strings"

	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
)

// View is the top-level screen the application is showing.
type View int

const (
	ViewUnauthenticated View = iota
	ViewConnecting
	ViewListing
	ViewGroupDetail
	ViewEmailDetail
	ViewCompleted
)

// Coordinator owns the canonical sender groups and the per-email analysis
// cache, and mediates every state change. Asynchronous operations resolve
// their target ids against this state at execution time and merge results
// back through it, so a result arriving for an email trashed mid-flight is
// dropped instead of corrupting the view.
//
// The Update loop is the only caller, so no locking is needed; the hazard is
// interleaving across command completions, which the merge methods handle.
type Coordinator struct {
	view View

	groups []model.SenderGroup
	cache  map[string]model.AnalysisResult

	currentGroup string // lowercased sender address of the open group
	currentEmail string
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		view:  ViewUnauthenticated,
		cache: make(map[string]model.AnalysisResult),
	}
}

func groupKey(senderEmail string) string {
	return strings.ToLower(strings.TrimSpace(senderEmail))
}

func (c *Coordinator) View() View     { return c.view }
func (c *Coordinator) SetView(v View) { c.view = v }

// Reset drops all mailbox state and returns to the unauthenticated screen.
func (c *Coordinator) Reset() {
	c.view = ViewUnauthenticated
	c.groups = nil
	c.cache = make(map[string]model.AnalysisResult)
	c.currentGroup = ""
	c.currentEmail = ""
}

// SetGroups replaces the canonical group collection.
func (c *Coordinator) SetGroups(groups []model.SenderGroup) {
	c.groups = groups
	c.reconcileView()
}

// Groups returns the canonical collection. Callers treat it as read-only and
// derive their own sorted or filtered projections.
func (c *Coordinator) Groups() []model.SenderGroup { return c.groups }

func (c *Coordinator) GroupCount() int { return len(c.groups) }

func (c *Coordinator) TotalEmails() int {
	n := 0
	for _, g := range c.groups {
		n += g.EmailCount
	}
	return n
}

// Group looks up a group by sender address.
func (c *Coordinator) Group(senderEmail string) (model.SenderGroup, bool) {
	key := groupKey(senderEmail)
	for _, g := range c.groups {
		if groupKey(g.SenderEmail) == key {
			return g, true
		}
	}
	return model.SenderGroup{}, false
}

// OpenGroup transitions to GroupDetail if the group still exists.
func (c *Coordinator) OpenGroup(senderEmail string) bool {
	if _, ok := c.Group(senderEmail); !ok {
		return false
	}
	c.currentGroup = groupKey(senderEmail)
	c.view = ViewGroupDetail
	return true
}

// OpenEmail transitions to EmailDetail if the email is still in the open
// group.
func (c *Coordinator) OpenEmail(id string) bool {
	g, ok := c.Group(c.currentGroup)
	if !ok || !groupHasEmail(g, id) {
		return false
	}
	c.currentEmail = id
	c.view = ViewEmailDetail
	return true
}

// Back steps one level up. Completed is not terminal; it returns to Listing.
func (c *Coordinator) Back() {
	switch c.view {
	case ViewEmailDetail:
		c.currentEmail = ""
		c.view = ViewGroupDetail
	case ViewGroupDetail:
		c.currentGroup = ""
		c.view = ViewListing
	case ViewCompleted:
		c.view = ViewListing
	}
}

// CurrentGroup resolves the open group against the live state.
func (c *Coordinator) CurrentGroup() (model.SenderGroup, bool) {
	return c.Group(c.currentGroup)
}

func (c *Coordinator) CurrentEmailID() string { return c.currentEmail }

// CurrentEmail resolves the open email against the live state.
func (c *Coordinator) CurrentEmail() (model.Email, bool) {
	g, ok := c.Group(c.currentGroup)
	if !ok {
		return model.Email{}, false
	}
	for _, e := range g.Emails {
		if e.ID == c.currentEmail {
			return e, true
		}
	}
	return model.Email{}, false
}

// Analysis returns the cached categorization for an email id.
func (c *Coordinator) Analysis(id string) (model.AnalysisResult, bool) {
	r, ok := c.cache[id]
	return r, ok
}

// UncachedIDs filters the given ids down to those not yet analyzed. Resolving
// this at command-issue time keeps re-analysis of cached ids a no-op.
func (c *Coordinator) UncachedIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := c.cache[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// MergeAnalyses inserts results into the cache. Results for ids no longer in
// any group are ignored, and an existing entry is never replaced. Returns the
// number of entries inserted.
func (c *Coordinator) MergeAnalyses(results []model.AnalysisResult) int {
	present := c.emailIDSet()
	added := 0
	for _, r := range results {
		if r.EmailID == "" || !present[r.EmailID] {
			continue
		}
		if _, ok := c.cache[r.EmailID]; ok {
			continue
		}
		c.cache[r.EmailID] = r
		added++
	}
	return added
}

// SetGroupAnalysis attaches an aggregate analysis to a group if it still
// exists.
func (c *Coordinator) SetGroupAnalysis(senderEmail string, a *model.GroupAnalysis) bool {
	key := groupKey(senderEmail)
	for i := range c.groups {
		if groupKey(c.groups[i].SenderEmail) == key {
			c.groups[i].Analysis = a
			return true
		}
	}
	return false
}

// MergeEmails adds newly fetched emails to the collection and re-groups.
// Already-known ids are ignored, and cached group analyses carry over to the
// rebuilt groups. Returns the number of emails added.
func (c *Coordinator) MergeEmails(emails []model.Email) int {
	present := c.emailIDSet()
	var all []model.Email
	for _, g := range c.groups {
		all = append(all, g.Emails...)
	}

	added := 0
	for _, e := range emails {
		if e.ID == "" || present[e.ID] {
			continue
		}
		present[e.ID] = true
		all = append(all, e)
		added++
	}
	if added == 0 {
		return 0
	}

	prior := make(map[string]*model.GroupAnalysis, len(c.groups))
	for _, g := range c.groups {
		if g.Analysis != nil {
			prior[groupKey(g.SenderEmail)] = g.Analysis
		}
	}
	c.groups = grouping.GroupBySender(all)
	for i := range c.groups {
		if a, ok := prior[groupKey(c.groups[i].SenderEmail)]; ok {
			c.groups[i].Analysis = a
		}
	}
	c.reconcileView()
	return added
}

// ApplyTrashOutcome reconciles a bulk trash result: the requested ids minus
// the reported failures are removed from the groups and the analysis cache.
// Failed ids stay fully intact. Returns the ids actually removed.
func (c *Coordinator) ApplyTrashOutcome(requested []string, outcome model.TrashOutcome) []string {
	failed := make(map[string]bool, len(outcome.FailedIDs))
	for _, id := range outcome.FailedIDs {
		failed[id] = true
	}

	seen := make(map[string]bool, len(requested))
	var succeeded []string
	for _, id := range requested {
		if failed[id] || seen[id] {
			continue
		}
		seen[id] = true
		succeeded = append(succeeded, id)
	}
	if len(succeeded) == 0 {
		return nil
	}

	c.groups = grouping.RemoveEmails(c.groups, succeeded)
	for _, id := range succeeded {
		delete(c.cache, id)
	}
	c.reconcileView()
	return succeeded
}

// reconcileView drops dangling references after the groups changed: an
// EmailDetail whose email vanished falls back to GroupDetail, and a
// GroupDetail whose group vanished falls back to Listing.
func (c *Coordinator) reconcileView() {
	switch c.view {
	case ViewEmailDetail:
		g, ok := c.Group(c.currentGroup)
		if !ok {
			c.currentGroup = ""
			c.currentEmail = ""
			c.view = ViewListing
			return
		}
		if !groupHasEmail(g, c.currentEmail) {
			c.currentEmail = ""
			c.view = ViewGroupDetail
		}
	case ViewGroupDetail:
		if _, ok := c.Group(c.currentGroup); !ok {
			c.currentGroup = ""
			c.view = ViewListing
		}
	}
}

func (c *Coordinator) emailIDSet() map[string]bool {
	ids := make(map[string]bool)
	for _, g := range c.groups {
		for _, e := range g.Emails {
			ids[e.ID] = true
		}
	}
	return ids
}

func groupHasEmail(g model.SenderGroup, id string) bool {
	for _, e := range g.Emails {
		if e.ID == id {
			return true
		}
	}
	return false
}
