package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"inboxguardian/internal/credential"
	"inboxguardian/internal/model"
	"inboxguardian/internal/provider"
)

// analyzeBatchSize bounds one analysis request; large groups are analyzed in
// consecutive batches with a progress report between them.
const analyzeBatchSize = 10

func (m *Model) connectTimeout() time.Duration {
	return time.Duration(m.cfg.Proxy.ConnectTimeoutSec) * time.Second
}

func (m *Model) requestTimeout() time.Duration {
	return time.Duration(m.cfg.Mailbox.RequestTimeoutSec) * time.Second
}

// connectGmailCmd runs the OAuth flow in a goroutine. The flow sends a raw
// string (the consent URL) on uiEvents first when interaction is needed, then
// connectResultMsg when done; the first event decides which screen to show.
func (m *Model) connectGmailCmd() tea.Cmd {
	return func() tea.Msg {
		go func() {
			svc, account, err := provider.ConnectGmail(context.Background(), m.configDir, m.tokens, m.uiEvents, m.userResponses)
			if err != nil {
				m.uiEvents <- connectResultMsg{err: err}
				return
			}
			box := provider.NewGmailMailbox(svc, account)
			if err := m.tokens.SetLastLogin(context.Background(), "gmail:"+box.Account()); err != nil {
				m.send(statusMsg(fmt.Sprintf("Could not record login: %v", err)))
			}
			m.uiEvents <- connectResultMsg{
				mailbox: box,
				account: box.Account(),
			}
		}()

		event := <-m.uiEvents
		if url, ok := event.(string); ok {
			return oauthURLMsg(url)
		}
		return event
	}
}

// submitAuthCodeCmd forwards the pasted code to the waiting OAuth flow and
// returns its final event.
func (m *Model) submitAuthCodeCmd(code string) tea.Cmd {
	return func() tea.Msg {
		m.userResponses <- code
		return <-m.uiEvents
	}
}

func (m *Model) connectYahooCmd(email, appPassword string) tea.Cmd {
	baseURL := m.cfg.Proxy.BaseURL
	timeout := m.requestTimeout()
	connectTimeout := m.connectTimeout()
	return func() tea.Msg {
		box := provider.NewYahooMailbox(baseURL, email, timeout)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := box.Connect(ctx, appPassword); err != nil {
			return connectResultMsg{err: err}
		}
		// Cache the password so the next launch can prefill it.
		if err := credential.SaveAppPassword(email, appPassword); err != nil {
			m.send(statusMsg(fmt.Sprintf("Could not cache app password: %v", err)))
		}
		if err := m.tokens.SetLastLogin(ctx, "yahoo:"+email); err != nil {
			m.send(statusMsg(fmt.Sprintf("Could not record login: %v", err)))
		}
		return connectResultMsg{mailbox: box, account: email}
	}
}

func (m *Model) fetchUnreadCmd() tea.Cmd {
	box := m.mailbox
	limit := m.cfg.Mailbox.UnreadLimit
	if box.Kind() == provider.KindYahoo {
		limit = m.cfg.Mailbox.IMAPUnreadLimit
	}
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		emails, err := box.FetchUnread(ctx, limit)
		return fetchCompleteMsg{emails: emails, err: err}
	}
}

// refreshCmd re-fetches unread mail. For Yahoo it first checks whether the
// proxy still holds the session and reconnects with the cached app password
// when it does not, so an expired session does not bounce the user back to
// the auth screen.
func (m *Model) refreshCmd() tea.Cmd {
	fetch := m.fetchUnreadCmd()
	box, ok := m.mailbox.(*provider.YahooMailbox)
	if !ok {
		return fetch
	}
	account := m.account
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		connected, err := box.Status(ctx)
		if err != nil {
			return fetchCompleteMsg{err: err}
		}
		if !connected {
			password, err := credential.LoadAppPassword(account)
			if err != nil || password == "" {
				return fetchCompleteMsg{err: fmt.Errorf("session expired, sign in again")}
			}
			m.send(statusMsg("Session expired, reconnecting..."))
			if err := box.Connect(ctx, password); err != nil {
				return fetchCompleteMsg{err: err}
			}
		}
		return fetch()
	}
}

// analyzeEmailsCmd categorizes the given emails in batches, reporting
// progress between batches. The caller has already dropped cached ids.
func (m *Model) analyzeEmailsCmd(emails []model.Email) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		ctx := context.Background()
		var all []model.AnalysisResult
		for start := 0; start < len(emails); start += analyzeBatchSize {
			end := start + analyzeBatchSize
			if end > len(emails) {
				end = len(emails)
			}
			results, err := analyzer.AnalyzeEmails(ctx, emails[start:end])
			if err != nil {
				return analysesMsg{results: all, err: err}
			}
			all = append(all, results...)
			if end < len(emails) {
				m.send(statusMsg(fmt.Sprintf("Analyzing... %d / %d emails", end, len(emails))))
			}
		}
		return analysesMsg{results: all}
	}
}

func (m *Model) analyzeGroupCmd(group model.SenderGroup) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		a, err := analyzer.AnalyzeSenderGroup(context.Background(), group)
		return groupAnalysisMsg{senderEmail: group.SenderEmail, analysis: a, err: err}
	}
}

// searchBySenderCmd pulls the sender's full history, not just unread mail.
func (m *Model) searchBySenderCmd(senderEmail string) tea.Cmd {
	box := m.mailbox
	limit := m.cfg.Mailbox.UnreadLimit
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		emails, err := box.SearchBySender(ctx, senderEmail, limit)
		return searchResultMsg{senderEmail: senderEmail, emails: emails, err: err}
	}
}

func (m *Model) fetchDetailCmd(base model.Email) tea.Cmd {
	box := m.mailbox
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		detail, err := box.FetchDetail(ctx, base.ID, base)
		return detailFetchedMsg{detail: detail, err: err}
	}
}

func (m *Model) analyzeDetailCmd(detail model.EmailDetail) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		a, err := analyzer.AnalyzeDetail(context.Background(), detail)
		return detailAnalysisMsg{emailID: detail.ID, analysis: a, err: err}
	}
}

func (m *Model) trashCmd(ids []string) tea.Cmd {
	box := m.mailbox
	timeout := m.requestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return trashResultMsg{requested: ids, outcome: box.Trash(ctx, ids)}
	}
}

func (m *Model) disconnectCmd() tea.Cmd {
	box := m.mailbox
	return func() tea.Msg {
		if box != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = box.Disconnect(ctx)
		}
		return statusMsg("")
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}
