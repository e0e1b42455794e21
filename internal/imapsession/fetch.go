package imapsession

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"

	"inboxguardian/internal/grouping"
	"inboxguardian/internal/model"
	"inboxguardian/internal/util"
)

const (
	snippetLength     = 200
	defaultFetchLimit = 100
)

// snippetSection fetches only the first 512 bytes of the text body, peeked
// so the fetch does not mark messages read.
func snippetSection() *imap.BodySectionName {
	return &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
		Partial:      []int{0, 512},
	}
}

// FetchEmails returns the most recent messages in the inbox, newest first.
// Ids are "yahoo-<seq>" and stay valid only while this session's mailbox
// selection holds.
func (m *Manager) FetchEmails(email string, limit int) ([]model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A zero or negative limit would wrap when cast to uint32 below.
	if limit < 1 {
		limit = defaultFetchLimit
	}

	s, err := m.ensure(email)
	if err != nil {
		return nil, err
	}
	mbox, err := s.client.Select(inboxFolder, false)
	if err != nil {
		return nil, fmt.Errorf("select inbox: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	start := uint32(1)
	if uint32(limit) < mbox.Messages {
		start = mbox.Messages - uint32(limit) + 1
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(start, mbox.Messages)

	return m.fetchSummaries(s, seqSet)
}

// SearchBySender returns messages whose From header matches the address,
// newest first, capped at limit.
func (m *Manager) SearchBySender(email, senderEmail string, limit int) ([]model.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit < 1 {
		limit = defaultFetchLimit
	}

	s, err := m.ensure(email)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.Select(inboxFolder, false); err != nil {
		return nil, fmt.Errorf("select inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", senderEmail)
	seqs, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search by sender: %w", err)
	}
	if len(seqs) == 0 {
		return nil, nil
	}
	if len(seqs) > limit {
		seqs = seqs[len(seqs)-limit:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqs...)
	return m.fetchSummaries(s, seqSet)
}

func (m *Manager) fetchSummaries(s *session, seqSet *imap.SeqSet) ([]model.Email, error) {
	section := snippetSection()
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}

	ch := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqSet, items, ch)
	}()

	var emails []model.Email
	for msg := range ch {
		e, ok := summaryFromMessage(msg, section)
		if ok {
			emails = append(emails, e)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	sort.SliceStable(emails, func(a, b int) bool {
		return grouping.CompareDates(emails[a].Date, emails[b].Date) > 0
	})
	return emails, nil
}

func summaryFromMessage(msg *imap.Message, section *imap.BodySectionName) (model.Email, bool) {
	if msg == nil || msg.Envelope == nil || len(msg.Envelope.From) == 0 {
		return model.Email{}, false
	}

	from := msg.Envelope.From[0]
	addr := from.MailboxName + "@" + from.HostName
	if from.MailboxName == "" || from.HostName == "" {
		return model.Email{}, false
	}
	name := strings.TrimSpace(from.PersonalName)
	if name == "" {
		name = util.DisplayNameFromAddress(addr)
	}

	subject := strings.TrimSpace(msg.Envelope.Subject)
	if subject == "" {
		subject = "(No Subject)"
	}

	date := time.Now().UTC()
	if !msg.Envelope.Date.IsZero() {
		date = msg.Envelope.Date.UTC()
	}

	isRead := false
	for _, f := range msg.Flags {
		if f == imap.SeenFlag {
			isRead = true
			break
		}
	}

	snippet := ""
	if r := msg.GetBody(section); r != nil {
		raw, _ := io.ReadAll(io.LimitReader(r, 512))
		snippet = util.CollapseWhitespace(string(raw))
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength]
		}
	}

	return model.Email{
		ID:          formatID(msg.SeqNum),
		Subject:     subject,
		Sender:      name,
		SenderEmail: addr,
		Snippet:     snippet,
		Date:        date.Format(time.RFC3339),
		IsRead:      isRead,
	}, true
}

// FetchEmailDetail resolves one message's full MIME content.
func (m *Manager) FetchEmailDetail(email, messageID string) (model.EmailDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq, ok := parseID(messageID)
	if !ok {
		return model.EmailDetail{}, fmt.Errorf("invalid message ID: %s", messageID)
	}

	s, err := m.ensure(email)
	if err != nil {
		return model.EmailDetail{}, err
	}
	if _, err := s.client.Select(inboxFolder, false); err != nil {
		return model.EmailDetail{}, fmt.Errorf("select inbox: %w", err)
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchFlags, section.FetchItem()}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seq)

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqSet, items, ch)
	}()

	var msg *imap.Message
	for m := range ch {
		msg = m
	}
	if err := <-done; err != nil {
		return model.EmailDetail{}, fmt.Errorf("fetch: %w", err)
	}
	if msg == nil {
		return model.EmailDetail{}, fmt.Errorf("message %s not found", messageID)
	}

	isRead := false
	for _, f := range msg.Flags {
		if f == imap.SeenFlag {
			isRead = true
			break
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return model.EmailDetail{}, fmt.Errorf("message %s has no body", messageID)
	}
	detail, err := parseMIMEBody(body)
	if err != nil {
		return model.EmailDetail{}, fmt.Errorf("parse message %s: %w", messageID, err)
	}
	detail.ID = messageID
	detail.IsRead = isRead
	return detail, nil
}
