package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"inboxguardian/internal/model"
)

// Rule-based analysis used when no API key is configured or a backend call
// fails. The rules are deterministic so the triage flow is fully testable.

func ruleAnalyzeEmails(emails []model.Email) []model.AnalysisResult {
	results := make([]model.AnalysisResult, len(emails))
	for i, email := range emails {
		category := model.CategoryPersonal
		action := "keep"
		risk := "high"

		switch {
		case containsAny(email.Sender, "Amazon", "Uber"):
			category = model.CategoryNotification
			action = "archive"
			risk = "medium"
		case containsAny(email.Sender, "Netflix", "Spotify", "Old Navy"):
			category = model.CategoryPromotional
			action = "delete"
			risk = "low"
		case containsAny(email.Sender, "LinkedIn"):
			category = model.CategorySocial
			action = "archive"
			risk = "low"
		}

		results[i] = model.AnalysisResult{
			EmailID:         email.ID,
			Category:        category,
			Confidence:      0.95,
			Reasoning:       fmt.Sprintf("Matched pattern for %s emails.", category),
			SuggestedAction: action,
			RiskLevel:       risk,
		}
	}
	return results
}

func ruleAnalyzeGroup(group model.SenderGroup) *model.GroupAnalysis {
	sender := strings.ToLower(group.SenderName)
	addr := strings.ToLower(group.SenderEmail)

	switch {
	case strings.Contains(addr, "promo"),
		strings.Contains(addr, "marketing"),
		strings.Contains(addr, "newsletter"),
		strings.Contains(addr, "deals"),
		strings.Contains(sender, "old navy"),
		strings.Contains(sender, "groupon"),
		strings.Contains(sender, "linkedin"):
		return &model.GroupAnalysis{
			Category:       model.CategoryPromotional,
			Recommendation: "delete",
			Summary:        "Promotional emails - safe to delete",
			Confidence:     0.85,
		}
	case strings.Contains(addr, "noreply"),
		strings.Contains(addr, "notification"),
		strings.Contains(sender, "amazon"),
		strings.Contains(sender, "uber"),
		strings.Contains(sender, "netflix"):
		return &model.GroupAnalysis{
			Category:       model.CategoryNotification,
			Recommendation: "archive",
			Summary:        "Service notifications - safe to archive",
			Confidence:     0.80,
		}
	case strings.Contains(sender, "bank"),
		strings.Contains(sender, "paypal"),
		strings.Contains(sender, "venmo"),
		strings.Contains(addr, "billing"):
		return &model.GroupAnalysis{
			Category:       model.CategoryFinance,
			Recommendation: "keep",
			Summary:        "Financial emails - recommend keeping",
			Confidence:     0.90,
		}
	}
	return &model.GroupAnalysis{
		Category:       model.CategoryPersonal,
		Recommendation: "review",
		Summary:        "Mixed content - review emails individually",
		Confidence:     0.60,
	}
}

var (
	dateRe   = regexp.MustCompile(`(?i)\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{1,2}(?:,? \d{4})?\b`)
	amountRe = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d{2})?|\b\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:usd|dollars?)\b`)
	linkRe   = regexp.MustCompile(`https?://[^\s<>"]+`)
)

func ruleAnalyzeDetail(email model.EmailDetail) *model.DetailAnalysis {
	subject := strings.ToLower(email.Subject)
	body := strings.ToLower(email.BodyText)

	category := model.CategoryPersonal
	sentiment := "neutral"
	urgency := "low"
	requiresResponse := false

	switch {
	case containsAny(subject, "sale", "off", "deal", "promo") || strings.Contains(body, "unsubscribe"):
		category = model.CategoryPromotional
	case containsAny(subject, "urgent", "asap", "immediately", "action required"):
		sentiment = "urgent"
		if containsAny(subject, "immediately", "action required") {
			urgency = "critical"
		} else {
			urgency = "high"
		}
		requiresResponse = true
	case containsAny(strings.ToLower(email.Sender), "bank", "paypal") ||
		containsAny(subject, "payment", "invoice", "receipt"):
		category = model.CategoryFinance
		urgency = "medium"
	case containsAny(subject, "shipped", "delivered", "order", "confirmation"):
		category = model.CategoryNotification
	case containsAny(body, "?", "let me know", "please reply", "get back to"):
		requiresResponse = true
		urgency = "medium"
	}

	var actions []model.EmailAction
	if requiresResponse {
		firstName := email.Sender
		if i := strings.IndexByte(firstName, ' '); i > 0 {
			firstName = firstName[:i]
		}
		actions = append(actions, model.EmailAction{
			Type:        "reply",
			Label:       "Reply",
			Description: "Send a response to this email",
			Priority:    "primary",
			DraftContent: fmt.Sprintf(
				"Hi %s,\n\nThank you for your email. I wanted to follow up regarding %q.\n\n[Your response here]\n\nBest regards",
				firstName, email.Subject),
		})
	}
	secondaryIfReply := "primary"
	if requiresResponse {
		secondaryIfReply = "secondary"
	}
	if category == model.CategoryPromotional {
		actions = append(actions,
			model.EmailAction{
				Type:        "unsubscribe",
				Label:       "Unsubscribe",
				Description: "Unsubscribe from this mailing list",
				Priority:    secondaryIfReply,
			},
			model.EmailAction{
				Type:        "delete",
				Label:       "Delete",
				Description: "Move this email to trash",
				Priority:    "secondary",
			})
	} else {
		actions = append(actions, model.EmailAction{
			Type:        "archive",
			Label:       "Archive",
			Description: "Archive this email for later reference",
			Priority:    secondaryIfReply,
		})
	}
	if urgency == "high" || urgency == "critical" {
		actions = append(actions, model.EmailAction{
			Type:        "star",
			Label:       "Star",
			Description: "Mark as important",
			Priority:    "secondary",
		})
	}
	actions = append(actions, model.EmailAction{
		Type:        "forward",
		Label:       "Forward",
		Description: "Forward to someone else",
		Priority:    "tertiary",
	})

	info := &model.ExtractedInfo{
		Dates:   firstN(dateRe.FindAllString(body, -1), 5),
		Amounts: firstN(amountRe.FindAllString(body, -1), 5),
		Links:   firstN(linkRe.FindAllString(email.BodyText, -1), 5),
	}
	if len(info.Dates) == 0 && len(info.Amounts) == 0 && len(info.Links) == 0 {
		info = nil
	}

	var tail string
	switch {
	case requiresResponse:
		tail = "This email appears to require a response."
	case category == model.CategoryPromotional:
		tail = "This appears to be a promotional email."
	case category == model.CategoryFinance:
		tail = "This is a financial notification."
	case category == model.CategoryNotification:
		tail = "This is a notification email."
	default:
		tail = "Review the content for any action items."
	}
	summary := fmt.Sprintf("Email from %s about %q. %s", email.Sender, email.Subject, tail)

	var keyPoints []string
	if requiresResponse {
		keyPoints = append(keyPoints, "Requires your response")
	}
	if category == model.CategoryFinance {
		keyPoints = append(keyPoints, "Contains financial information")
	}
	if info != nil && len(info.Dates) > 0 {
		keyPoints = append(keyPoints, "Mentions dates: "+strings.Join(info.Dates, ", "))
	}
	if info != nil && len(info.Amounts) > 0 {
		keyPoints = append(keyPoints, "Mentions amounts: "+strings.Join(info.Amounts, ", "))
	}
	if n := len(email.Attachments); n > 0 {
		keyPoints = append(keyPoints, fmt.Sprintf("Has %d attachment(s)", n))
	}
	if len(keyPoints) == 0 {
		keyPoints = append(keyPoints, "No urgent action items detected")
	}

	return &model.DetailAnalysis{
		EmailID:          email.ID,
		Summary:          summary,
		KeyPoints:        keyPoints,
		Sentiment:        sentiment,
		Category:         category,
		Urgency:          urgency,
		SuggestedActions: actions,
		RequiresResponse: requiresResponse,
		ExtractedInfo:    info,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}
