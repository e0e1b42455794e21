package provider

import (
	"encoding/base64"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"inboxguardian/internal/model"
)

// extractBodies walks a Gmail MIME part tree and returns the first text/html
// and text/plain bodies found, base64url decoded.
func extractBodies(part *gmailv1.MessagePart) (html, text string) {
	if part == nil {
		return "", ""
	}

	switch strings.ToLower(part.MimeType) {
	case "text/html":
		if part.Body != nil && part.Body.Data != "" {
			html = decodeBase64URL(part.Body.Data)
		}
	case "text/plain":
		if part.Body != nil && part.Body.Data != "" {
			text = decodeBase64URL(part.Body.Data)
		}
	}

	for _, sub := range part.Parts {
		subHTML, subText := extractBodies(sub)
		if html == "" {
			html = subHTML
		}
		if text == "" {
			text = subText
		}
	}
	return html, text
}

// extractAttachments lists the parts that carry an attachment id. Content is
// not downloaded, only described.
func extractAttachments(part *gmailv1.MessagePart) []model.Attachment {
	if part == nil {
		return nil
	}
	var out []model.Attachment
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, model.Attachment{
			ID:       part.Body.AttachmentId,
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     part.Body.Size,
		})
	}
	for _, sub := range part.Parts {
		out = append(out, extractAttachments(sub)...)
	}
	return out
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail uses unpadded base64url
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}
