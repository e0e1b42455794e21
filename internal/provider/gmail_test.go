package provider

import (
	"encoding/base64"
	"testing"

	gmailv1 "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestParseGmailMessage(t *testing.T) {
	msg := &gmailv1.Message{
		Id:           "18f2a3b4c5",
		Snippet:      "Your order   has\nshipped",
		InternalDate: 1704153600000, // 2024-01-02T00:00:00Z
		LabelIds:     []string{"INBOX", "UNREAD"},
		Payload: &gmailv1.MessagePart{
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "Amazon <no-reply@amazon.com>"},
				{Name: "Subject", Value: "Shipped"},
			},
		},
	}

	e := parseGmailMessage(msg)
	if e.ID != "18f2a3b4c5" {
		t.Errorf("id got %q", e.ID)
	}
	if e.Sender != "Amazon" || e.SenderEmail != "no-reply@amazon.com" {
		t.Errorf("sender got %q <%q>", e.Sender, e.SenderEmail)
	}
	if e.Date != "2024-01-02T00:00:00Z" {
		t.Errorf("date got %q", e.Date)
	}
	if e.IsRead {
		t.Error("UNREAD label ignored")
	}
	if e.Snippet != "Your order has shipped" {
		t.Errorf("snippet got %q", e.Snippet)
	}
}

func TestParseGmailMessage_Defaults(t *testing.T) {
	msg := &gmailv1.Message{
		Id:       "x",
		LabelIds: []string{"INBOX"},
		Payload: &gmailv1.MessagePart{
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "someone@example.com"},
			},
		},
	}

	e := parseGmailMessage(msg)
	if e.Subject != "(No Subject)" {
		t.Errorf("subject got %q", e.Subject)
	}
	if !e.IsRead {
		t.Error("message without UNREAD label reported unread")
	}
	if e.Sender != "someone" {
		t.Errorf("fallback sender got %q", e.Sender)
	}
}

func TestExtractBodies_Multipart(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmailv1.MessagePartBody{Data: b64url("plain body")},
			},
			{
				MimeType: "text/html",
				Body:     &gmailv1.MessagePartBody{Data: b64url("<p>html body</p>")},
			},
		},
	}

	html, text := extractBodies(payload)
	if html != "<p>html body</p>" {
		t.Errorf("html got %q", html)
	}
	if text != "plain body" {
		t.Errorf("text got %q", text)
	}
}

func TestExtractAttachments(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailv1.MessagePart{
			{MimeType: "text/plain", Body: &gmailv1.MessagePartBody{Data: b64url("hi")}},
			{
				MimeType: "application/pdf",
				Filename: "invoice.pdf",
				Body:     &gmailv1.MessagePartBody{AttachmentId: "att-1", Size: 1234},
			},
		},
	}

	atts := extractAttachments(payload)
	if len(atts) != 1 {
		t.Fatalf("got %d attachments", len(atts))
	}
	if atts[0].ID != "att-1" || atts[0].Filename != "invoice.pdf" || atts[0].Size != 1234 {
		t.Errorf("attachment got %+v", atts[0])
	}
}

func TestDecodeBase64URL_PaddedAndRaw(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("padded"))
	if got := decodeBase64URL(padded); got != "padded" {
		t.Errorf("padded got %q", got)
	}
	if got := decodeBase64URL(b64url("raw")); got != "raw" {
		t.Errorf("raw got %q", got)
	}
	if got := decodeBase64URL("!!!"); got != "" {
		t.Errorf("invalid input got %q", got)
	}
}

func TestTrashOutcome(t *testing.T) {
	out := trashOutcome(3, nil)
	if !out.Success || out.TrashedCount != 3 || out.ErrorMessage != "" {
		t.Errorf("clean outcome got %+v", out)
	}

	out = trashOutcome(1, []string{"a", "b"})
	if out.Success {
		t.Error("partial outcome reported success")
	}
	if out.ErrorMessage != "Failed to trash 2 email(s)" {
		t.Errorf("message got %q", out.ErrorMessage)
	}
	if out.TrashedCount+len(out.FailedIDs) != 3 {
		t.Errorf("outcome does not account for all ids: %+v", out)
	}
}
