package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
	"inboxguardian/internal/util"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).PaddingBottom(1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).PaddingBottom(1)
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	chosenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// groupItem wraps SenderGroup for the listing.
type groupItem struct {
	model.SenderGroup
	selected bool
}

func (g groupItem) FilterValue() string { return g.SenderName + " " + g.SenderEmail }

func (g groupItem) Title() string {
	marker := "  "
	if g.selected {
		marker = "* "
	}
	title := fmt.Sprintf("%s%s (%d)", marker, g.SenderName, g.EmailCount)
	if g.Analysis != nil {
		title += "  " + tagStyle.Render(fmt.Sprintf("[%s: %s]", g.Analysis.Category, g.Analysis.Recommendation))
	}
	return title
}

func (g groupItem) Description() string {
	return fmt.Sprintf("  %s · %d unread · newest %s", g.SenderEmail, g.UnreadCount, trimDate(g.NewestDate))
}

// emailItem wraps Email for the group detail list.
type emailItem struct {
	model.Email
	selected bool
	analysis *model.AnalysisResult
}

func (e emailItem) FilterValue() string { return e.Subject }

func (e emailItem) Title() string {
	marker := "  "
	if e.selected {
		marker = "* "
	}
	unread := ""
	if !e.IsRead {
		unread = "o "
	}
	return marker + unread + e.Subject
}

func (e emailItem) Description() string {
	desc := "  " + trimDate(e.Date)
	if e.analysis != nil {
		desc += "  " + tagStyle.Render(fmt.Sprintf("[%s, %s risk: %s]",
			e.analysis.Category, e.analysis.RiskLevel, e.analysis.SuggestedAction))
	} else if e.Snippet != "" {
		desc += "  " + util.Truncate(e.Snippet, 80)
	}
	return desc
}

func groupTitle(g model.SenderGroup) string {
	return fmt.Sprintf("%s <%s> · %d emails", g.SenderName, g.SenderEmail, g.EmailCount)
}

func sortEmailsNewestFirst(emails []model.Email) {
	sort.SliceStable(emails, func(a, b int) bool {
		return grouping.CompareDates(emails[a].Date, emails[b].Date) > 0
	})
}

// trimDate converts an RFC3339 timestamp to a short date string.
func trimDate(rfc3339 string) string {
	if rfc3339 == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t.Format("Jan 2, 2006")
	}
	return rfc3339
}

func listingFooter(sortKey grouping.SortKey) string {
	return footerStyle.Render(fmt.Sprintf(
		"enter: open  space: select  a: analyze  #: trash  s: sort (%s)  /: filter  r: refresh  L: logout  q: quit", sortKey))
}

func groupFooter() string {
	return footerStyle.Render("enter: open  space: select  a: analyze all  A: analyze sender  m: load all from sender  #: trash  esc: back  q: quit")
}

func detailFooter() string {
	return footerStyle.Render("a: analyze  #: trash  esc: back  q: quit")
}

func (m *Model) View() string {
	if m.Err != nil {
		return "Error: " + m.Err.Error() + "\n"
	}

	switch m.coord.View() {
	case ViewUnauthenticated:
		return m.authView()
	case ViewConnecting:
		status := m.status
		if status == "" {
			status = "Connecting..."
		}
		return fmt.Sprintf("\n  %s %s\n", m.spin.View(), status)
	case ViewListing:
		return m.listingView()
	case ViewGroupDetail:
		return m.groupView()
	case ViewEmailDetail:
		return m.detailView()
	case ViewCompleted:
		return m.completedView()
	}
	return ""
}

func (m *Model) authView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Inbox Guardian"))
	b.WriteString("\n\n")

	if m.authURL != "" {
		b.WriteString("Open this URL in your browser to authorize Gmail access:\n\n")
		b.WriteString(m.authURL)
		b.WriteString("\n\n")
		b.WriteString(m.codeInput.View())
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("enter: submit code  ctrl+c: quit"))
		if m.status != "" {
			b.WriteString("\n" + m.status)
		}
		return b.String()
	}

	gmail := "  Gmail (OAuth)"
	yahoo := "  Yahoo Mail (app password)"
	if m.providerCursor == 0 {
		gmail = chosenStyle.Render("> Gmail (OAuth)")
		yahoo = dimStyle.Render(yahoo)
	} else {
		gmail = dimStyle.Render(gmail)
		yahoo = chosenStyle.Render("> Yahoo Mail (app password)")
	}
	b.WriteString(gmail + "\n" + yahoo + "\n\n")

	if m.providerCursor == 1 {
		b.WriteString("Email:    " + m.emailInput.View() + "\n")
		b.WriteString("Password: " + m.passwordInput.View() + "\n")
	} else {
		b.WriteString(dimStyle.Render("A browser window will open for Google sign-in.") + "\n")
	}

	b.WriteString(footerStyle.Render("tab: switch provider  enter: connect  ctrl+c: quit"))
	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}
	return b.String()
}

func (m *Model) listingView() string {
	var b strings.Builder
	b.WriteString(m.groupsList.View())
	if m.filtering {
		b.WriteString("\n")
		b.WriteString(m.filterInput.View())
	}
	b.WriteString("\n")
	b.WriteString(listingFooter(m.sortKey))
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

func (m *Model) groupView() string {
	var b strings.Builder
	b.WriteString(m.emailsList.View())
	if g, ok := m.coord.CurrentGroup(); ok && g.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(tagStyle.Render(fmt.Sprintf("%s · %s (%.0f%%): %s",
			g.Analysis.Category, g.Analysis.Recommendation, g.Analysis.Confidence*100, g.Analysis.Summary)))
	}
	b.WriteString("\n")
	b.WriteString(groupFooter())
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

func (m *Model) detailView() string {
	var b strings.Builder
	b.WriteString(m.bodyViewport.View())
	b.WriteString("\n")
	b.WriteString(detailFooter())
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

func (m *Model) completedView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cleanup complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Moved %d email(s) to trash.\n", m.lastOutcome.TrashedCount))
	if len(m.lastOutcome.FailedIDs) > 0 {
		b.WriteString(fmt.Sprintf("%d email(s) could not be trashed and remain in place.\n", len(m.lastOutcome.FailedIDs)))
	}
	b.WriteString(fmt.Sprintf("\n%d unread email(s) from %d sender(s) remaining.\n", m.coord.TotalEmails(), m.coord.GroupCount()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("any key: back to inbox"))
	return b.String()
}

func detailContent(d model.EmailDetail, a *model.DetailAnalysis) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("From: %s <%s>\nSubject: %s\nDate: %s",
		d.Sender, d.SenderEmail, d.Subject, trimDate(d.Date))))
	b.WriteString("\n")
	if d.ReplyTo != "" {
		b.WriteString(dimStyle.Render("Reply-To: "+d.ReplyTo) + "\n")
	}
	if len(d.Cc) > 0 {
		b.WriteString(dimStyle.Render("Cc: "+strings.Join(d.Cc, ", ")) + "\n")
	}
	b.WriteString("\n")

	if a != nil {
		b.WriteString(tagStyle.Render(fmt.Sprintf("%s · %s urgency · %s", a.Category, a.Urgency, a.Sentiment)))
		b.WriteString("\n")
		b.WriteString(a.Summary + "\n")
		for _, p := range a.KeyPoints {
			b.WriteString("  - " + p + "\n")
		}
		if len(a.SuggestedActions) > 0 {
			b.WriteString("Suggested actions:\n")
			for _, act := range a.SuggestedActions {
				b.WriteString(fmt.Sprintf("  [%s] %s: %s\n", act.Priority, act.Label, act.Description))
			}
		}
		if a.RequiresResponse {
			deadline := a.ResponseDeadline
			if deadline == "" {
				deadline = "no deadline"
			}
			b.WriteString(fmt.Sprintf("Requires a response (%s)\n", deadline))
		}
		if info := a.ExtractedInfo; info != nil {
			if len(info.Dates) > 0 {
				b.WriteString("Dates: " + strings.Join(info.Dates, ", ") + "\n")
			}
			if len(info.Amounts) > 0 {
				b.WriteString("Amounts: " + strings.Join(info.Amounts, ", ") + "\n")
			}
			if len(info.Links) > 0 {
				b.WriteString("Links: " + strings.Join(info.Links, ", ") + "\n")
			}
		}
		b.WriteString("\n")
	}

	body := d.BodyText
	if body == "" {
		body = d.Body
	}
	if body == "" {
		body = d.Snippet
	}
	b.WriteString(body)

	if len(d.Attachments) > 0 {
		b.WriteString("\n\nAttachments:\n")
		for _, att := range d.Attachments {
			b.WriteString(fmt.Sprintf("  %s (%s, %d bytes)\n", att.Filename, att.MimeType, att.Size))
		}
	}
	return b.String()
}
