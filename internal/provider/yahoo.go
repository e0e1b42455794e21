package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inboxguardian/internal/model"
)

// YahooMailbox is the session transport: operations are REST calls against
// the IMAP proxy, which holds the live session keyed by this account's
// address. Ids are only valid while that session's mailbox selection holds.
type YahooMailbox struct {
	baseURL string
	email   string
	client  *http.Client
}

// NewYahooMailbox creates a client for the proxy at baseURL, e.g.
// "http://localhost:3001". The mailbox is unusable until Connect succeeds.
func NewYahooMailbox(baseURL, email string, timeout time.Duration) *YahooMailbox {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &YahooMailbox{
		baseURL: baseURL,
		email:   email,
		client:  &http.Client{Timeout: timeout},
	}
}

func (m *YahooMailbox) Name() string { return "Yahoo Mail" }
func (m *YahooMailbox) Kind() Kind   { return KindYahoo }

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type emailListEnvelope struct {
	envelope
	Emails []model.Email `json:"emails"`
	Count  int           `json:"count"`
}

type emailDetailEnvelope struct {
	envelope
	Email model.EmailDetail `json:"email"`
}

type statusEnvelope struct {
	envelope
	Connected bool   `json:"connected"`
	Email     string `json:"email"`
}

// Connect establishes the upstream IMAP session with an app password. The
// password is passed through to the proxy and never stored here.
func (m *YahooMailbox) Connect(ctx context.Context, appPassword string) error {
	body := map[string]string{"email": m.email, "appPassword": appPassword}
	var resp envelope
	return m.post(ctx, "/api/yahoo/connect", body, &resp)
}

// FetchUnread returns unread messages through the proxy session.
func (m *YahooMailbox) FetchUnread(ctx context.Context, limit int) ([]model.Email, error) {
	q := url.Values{"email": {m.email}, "limit": {strconv.Itoa(limit)}}
	var resp emailListEnvelope
	if err := m.get(ctx, "/api/yahoo/emails?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// FetchDetail resolves one message's full content. Proxy errors degrade to
// the base email with its snippet as body, matching the Gmail transport.
func (m *YahooMailbox) FetchDetail(ctx context.Context, id string, base model.Email) (model.EmailDetail, error) {
	q := url.Values{"email": {m.email}}
	var resp emailDetailEnvelope
	err := m.get(ctx, "/api/yahoo/email/"+url.PathEscape(id)+"?"+q.Encode(), &resp)
	if err != nil {
		var notAuth *NotAuthenticatedError
		if errors.As(err, &notAuth) {
			return model.EmailDetail{}, err
		}
		detail := model.EmailDetail{Email: base}
		detail.Body = base.Snippet
		detail.BodyText = base.Snippet
		return detail, nil
	}

	detail := resp.Email
	detail.Email = base
	if detail.Body == "" {
		detail.Body = base.Snippet
	}
	if detail.BodyText == "" {
		detail.BodyText = base.Snippet
	}
	return detail, nil
}

// Trash asks the proxy to move messages to the Trash folder. A transport
// failure reports every id as failed; the proxy itself reports per-id
// outcomes.
func (m *YahooMailbox) Trash(ctx context.Context, ids []string) model.TrashOutcome {
	if len(ids) == 0 {
		return model.TrashOutcome{Success: true}
	}
	body := map[string]interface{}{"email": m.email, "messageIds": ids}

	var resp struct {
		envelope
		TrashedCount int      `json:"trashedCount"`
		FailedIDs    []string `json:"failedIds"`
	}
	if err := m.post(ctx, "/api/yahoo/trash", body, &resp); err != nil {
		return failAll(ids, err.Error())
	}
	out := model.TrashOutcome{
		Success:      resp.Success,
		TrashedCount: resp.TrashedCount,
		FailedIDs:    resp.FailedIDs,
	}
	if len(out.FailedIDs) > 0 {
		out.ErrorMessage = fmt.Sprintf("Failed to trash %d email(s)", len(out.FailedIDs))
	}
	return out
}

// SearchBySender lists messages from one address through the proxy session.
func (m *YahooMailbox) SearchBySender(ctx context.Context, senderEmail string, limit int) ([]model.Email, error) {
	q := url.Values{
		"email":  {m.email},
		"sender": {senderEmail},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp emailListEnvelope
	if err := m.get(ctx, "/api/yahoo/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// Disconnect drops the proxy session.
func (m *YahooMailbox) Disconnect(ctx context.Context) error {
	var resp envelope
	return m.post(ctx, "/api/yahoo/disconnect", map[string]string{"email": m.email}, &resp)
}

// Status reports whether the proxy still holds a session for this account.
func (m *YahooMailbox) Status(ctx context.Context) (bool, error) {
	q := url.Values{"email": {m.email}}
	var resp statusEnvelope
	if err := m.get(ctx, "/api/yahoo/status?"+q.Encode(), &resp); err != nil {
		return false, err
	}
	return resp.Connected, nil
}

func (m *YahooMailbox) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: "GET " + path, Err: err}
	}
	return m.do(req, path, out)
}

func (m *YahooMailbox) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &TransportError{Op: "POST " + path, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &TransportError{Op: "POST " + path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return m.do(req, path, out)
}

func (m *YahooMailbox) do(req *http.Request, path string, out interface{}) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return &TransportError{Op: req.Method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: req.Method + " " + path, Err: err}
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return &NotAuthenticatedError{Kind: KindYahoo}
	}
	// A 200 body is decoded as-is even when its success flag is false: the
	// trash route reports partial failure in-band on a 200, and turning that
	// into an error would discard the per-id outcome.
	if resp.StatusCode != http.StatusOK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &TransportError{Op: req.Method + " " + path, Err: fmt.Errorf("%s", msg)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &TransportError{Op: req.Method + " " + path, Err: err}
		}
	}
	return nil
}
