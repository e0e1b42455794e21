package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	gmailv1 "google.golang.org/api/gmail/v1"

	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
	"inboxguardian/internal/util"
)

// Gmail message fetches run in small batches with a pause in between to stay
// under the per-user rate limit.
const (
	fetchBatchSize  = 5
	fetchBatchDelay = 100 * time.Millisecond
	trashBatchDelay = 200 * time.Millisecond
)

// GmailMailbox is the token transport: every operation is a Gmail REST call
// authenticated by the OAuth token held in the underlying HTTP client.
type GmailMailbox struct {
	svc     *gmailv1.Service
	account string
}

// NewGmailMailbox wraps an authenticated service from ConnectGmail.
func NewGmailMailbox(svc *gmailv1.Service, account string) *GmailMailbox {
	return &GmailMailbox{svc: svc, account: account}
}

func (m *GmailMailbox) Name() string { return "Google Gmail" }
func (m *GmailMailbox) Kind() Kind   { return KindGmail }

// Account returns the authenticated address.
func (m *GmailMailbox) Account() string { return m.account }

// FetchUnread lists unread inbox messages and resolves each to an Email.
// Results come back newest first regardless of batch completion order.
func (m *GmailMailbox) FetchUnread(ctx context.Context, limit int) ([]model.Email, error) {
	return m.fetchByQuery(ctx, "is:unread", limit)
}

// SearchBySender lists messages from one address, read or not.
func (m *GmailMailbox) SearchBySender(ctx context.Context, senderEmail string, limit int) ([]model.Email, error) {
	return m.fetchByQuery(ctx, "from:"+senderEmail, limit)
}

func (m *GmailMailbox) fetchByQuery(ctx context.Context, query string, limit int) ([]model.Email, error) {
	list, err := m.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &TransportError{Op: "list messages", Err: err}
	}
	if len(list.Messages) == 0 {
		return nil, nil
	}

	emails := make([]model.Email, len(list.Messages))
	errs := make([]error, len(list.Messages))

	// Settle-all fan-out: workers never fail the group, they record their
	// result and the batch continues.
	var mu sync.Mutex
	for start := 0; start < len(list.Messages); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(list.Messages) {
			end = len(list.Messages)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				msg, err := m.svc.Users.Messages.Get("me", list.Messages[i].Id).
					Context(gctx).
					Do()
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs[i] = err
					return nil
				}
				emails[i] = parseGmailMessage(msg)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, &TransportError{Op: "fetch messages", Err: err}
		}

		if end < len(list.Messages) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(fetchBatchDelay):
			}
		}
	}

	var out []model.Email
	var firstErr error
	for i, e := range emails {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, &TransportError{Op: "fetch messages", Err: firstErr}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return grouping.CompareDates(out[a].Date, out[b].Date) > 0
	})
	return out, nil
}

// FetchDetail resolves the full content of one message. A fetch or parse
// failure degrades to the base email with its snippet as body, so the detail
// view always has something to show.
func (m *GmailMailbox) FetchDetail(ctx context.Context, id string, base model.Email) (model.EmailDetail, error) {
	detail := model.EmailDetail{Email: base}

	msg, err := m.svc.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil || msg.Payload == nil {
		detail.Body = base.Snippet
		detail.BodyText = base.Snippet
		return detail, nil
	}

	html, text := extractBodies(msg.Payload)
	detail.Body = firstNonEmpty(html, text, base.Snippet)
	detail.BodyText = firstNonEmpty(text, html, base.Snippet)
	detail.Attachments = extractAttachments(msg.Payload)
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Reply-To":
			detail.ReplyTo = h.Value
		case "Cc":
			detail.Cc = append(detail.Cc, h.Value)
		case "Bcc":
			detail.Bcc = append(detail.Bcc, h.Value)
		}
	}
	return detail, nil
}

// Trash moves each message to trash independently. Batches pause between
// each other to stay under the rate limit; one failed id never stops the
// rest of the request.
func (m *GmailMailbox) Trash(ctx context.Context, ids []string) model.TrashOutcome {
	if len(ids) == 0 {
		return model.TrashOutcome{Success: true}
	}

	var (
		mu        sync.Mutex
		trashed   int
		failedIDs []string
	)
	for start := 0; start < len(ids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			id := ids[i]
			g.Go(func() error {
				_, err := m.svc.Users.Messages.Trash("me", id).
					Context(gctx).
					Do()
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failedIDs = append(failedIDs, id)
				} else {
					trashed++
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			mu.Lock()
			failedIDs = append(failedIDs, ids[end:]...)
			mu.Unlock()
			break
		}

		if end < len(ids) {
			select {
			case <-ctx.Done():
				failedIDs = append(failedIDs, ids[end:]...)
				return trashOutcome(trashed, failedIDs)
			case <-time.After(trashBatchDelay):
			}
		}
	}
	return trashOutcome(trashed, failedIDs)
}

func trashOutcome(trashed int, failedIDs []string) model.TrashOutcome {
	out := model.TrashOutcome{
		Success:      len(failedIDs) == 0,
		TrashedCount: trashed,
		FailedIDs:    failedIDs,
	}
	if len(failedIDs) > 0 {
		out.ErrorMessage = fmt.Sprintf("Failed to trash %d email(s)", len(failedIDs))
	}
	return out
}

func (m *GmailMailbox) Disconnect(ctx context.Context) error {
	// The OAuth token stays cached; logging out is a client-side reset.
	return nil
}

// parseGmailMessage maps a Gmail API message onto the shared Email shape.
func parseGmailMessage(msg *gmailv1.Message) model.Email {
	var from, subject string
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				from = h.Value
			case "Subject":
				subject = h.Value
			}
		}
	}
	if subject == "" {
		subject = "(No Subject)"
	}
	name, addr := util.ParseFrom(from)

	date := ""
	if msg.InternalDate > 0 {
		date = time.UnixMilli(msg.InternalDate).UTC().Format(time.RFC3339)
	}

	isRead := true
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			isRead = false
			break
		}
	}

	return model.Email{
		ID:          msg.Id,
		Subject:     subject,
		Sender:      name,
		SenderEmail: addr,
		Snippet:     util.CollapseWhitespace(msg.Snippet),
		Date:        date,
		IsRead:      isRead,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
