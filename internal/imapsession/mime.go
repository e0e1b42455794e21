package imapsession

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"inboxguardian/internal/model"
	"inboxguardian/internal/util"
)

// parseMIMEBody reads a full RFC 822 message and maps it onto EmailDetail.
// Body prefers HTML over plain text; BodyText is always the plain form.
// Attachment content is described, not downloaded.
func parseMIMEBody(r io.Reader) (model.EmailDetail, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return model.EmailDetail{}, err
	}

	var detail model.EmailDetail

	subject, _ := mr.Header.Subject()
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "(No Subject)"
	}
	detail.Subject = subject

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		detail.SenderEmail = from[0].Address
		detail.Sender = strings.TrimSpace(from[0].Name)
		if detail.Sender == "" {
			detail.Sender = util.DisplayNameFromAddress(from[0].Address)
		}
	}
	if replyTo, err := mr.Header.AddressList("Reply-To"); err == nil && len(replyTo) > 0 {
		detail.ReplyTo = replyTo[0].Address
	}
	if cc, err := mr.Header.AddressList("Cc"); err == nil {
		for _, a := range cc {
			detail.Cc = append(detail.Cc, a.Address)
		}
	}
	if bcc, err := mr.Header.AddressList("Bcc"); err == nil {
		for _, a := range bcc {
			detail.Bcc = append(detail.Bcc, a.Address)
		}
	}

	date := time.Now().UTC()
	if d, err := mr.Header.Date(); err == nil && !d.IsZero() {
		date = d.UTC()
	}
	detail.Date = date.Format(time.RFC3339)

	var html, text string
	attachIdx := 0
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.EmailDetail{}, err
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, err := h.ContentType()
			if err != nil {
				continue
			}
			var buf strings.Builder
			if _, err := io.Copy(&buf, p.Body); err != nil {
				continue
			}
			switch contentType {
			case "text/plain":
				if text == "" {
					text = buf.String()
				}
			case "text/html":
				if html == "" {
					html = buf.String()
				}
			}

		case *mail.AttachmentHeader:
			filename, err := h.Filename()
			if err != nil || filename == "" {
				filename = "attachment"
			}
			contentType, _, err := h.ContentType()
			if err != nil {
				contentType = "application/octet-stream"
			}
			size, err := io.Copy(io.Discard, p.Body)
			if err != nil {
				size = 0
			}
			detail.Attachments = append(detail.Attachments, model.Attachment{
				ID:       fmt.Sprintf("att-%d", attachIdx),
				Filename: filename,
				MimeType: contentType,
				Size:     size,
			})
			attachIdx++
		}
	}

	if html != "" {
		detail.Body = html
	} else {
		detail.Body = text
	}
	detail.BodyText = text

	snippet := util.CollapseWhitespace(text)
	if len(snippet) > snippetLength {
		snippet = snippet[:snippetLength]
	}
	detail.Snippet = snippet

	return detail, nil
}
