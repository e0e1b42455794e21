package model

// Category is the closed set of categories the analyzer may assign.
type Category string

const (
	CategoryPromotional  Category = "Promotional"
	CategoryNotification Category = "Notification"
	CategoryNewsletter   Category = "Newsletter"
	CategorySocial       Category = "Social"
	CategoryFinance      Category = "Finance"
	CategoryPersonal     Category = "Personal"
	CategorySpam         Category = "Spam"
)

// Email is a message summary as returned by a mailbox provider. ID is opaque
// and only meaningful within the provider session that issued it.
type Email struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Sender      string `json:"sender"`      // display name
	SenderEmail string `json:"senderEmail"` // address; grouping key after lowercasing
	Snippet     string `json:"snippet"`
	Date        string `json:"date"` // RFC 3339
	IsRead      bool   `json:"isRead"`
}

// Attachment describes an attachment without carrying its content.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// EmailDetail is an Email plus its lazily fetched full content. Details are
// never stored in the group structure; the app holds at most one at a time.
type EmailDetail struct {
	Email
	Body        string       `json:"body"`     // rendering-ready content
	BodyText    string       `json:"bodyText"` // plain-text form
	Attachments []Attachment `json:"attachments,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`
	Cc          []string     `json:"cc,omitempty"`
	Bcc         []string     `json:"bcc,omitempty"`
}

// SenderGroup aggregates the emails sharing one lowercased sender address.
// Aggregate fields are always recomputed from Emails; an empty group must not
// survive any transformation.
type SenderGroup struct {
	SenderEmail string
	SenderName  string // first-seen display name for this address
	Emails      []Email
	EmailCount  int
	UnreadCount int
	OldestDate  string
	NewestDate  string
	Analysis    *GroupAnalysis // cached aggregate analysis, nil until requested
}

// GroupAnalysis is the aggregate recommendation for one sender group.
type GroupAnalysis struct {
	Category       Category `json:"category"`
	Recommendation string   `json:"recommendation"` // keep, archive, delete, review
	Summary        string   `json:"summary"`
	Confidence     float64  `json:"confidence"`
}

// AnalysisResult is the per-email categorization derived from metadata only.
type AnalysisResult struct {
	EmailID         string   `json:"emailId"`
	Category        Category `json:"category"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	SuggestedAction string   `json:"suggestedAction"` // archive, delete, keep, mark_read
	RiskLevel       string   `json:"riskLevel"`       // low, medium, high
}

// EmailAction is one actionable suggestion from a detail analysis.
type EmailAction struct {
	Type         string `json:"type"` // reply, forward, delete, archive, star, snooze, unsubscribe, mark_spam
	Label        string `json:"label"`
	Description  string `json:"description"`
	Priority     string `json:"priority"` // primary, secondary, tertiary
	DraftContent string `json:"draftContent,omitempty"`
}

// ExtractedInfo is structured data pulled out of an email body.
type ExtractedInfo struct {
	Dates         []string `json:"dates,omitempty"`
	Amounts       []string `json:"amounts,omitempty"`
	Links         []string `json:"links,omitempty"`
	People        []string `json:"people,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
}

// DetailAnalysis is the richer analysis of one full EmailDetail.
type DetailAnalysis struct {
	EmailID          string         `json:"emailId"`
	Summary          string         `json:"summary"`
	KeyPoints        []string       `json:"keyPoints"`
	Sentiment        string         `json:"sentiment"` // positive, neutral, negative, urgent
	Category         Category       `json:"category"`
	Urgency          string         `json:"urgency"` // low, medium, high, critical
	SuggestedActions []EmailAction  `json:"suggestedActions"`
	RequiresResponse bool           `json:"requiresResponse"`
	ResponseDeadline string         `json:"responseDeadline,omitempty"`
	ExtractedInfo    *ExtractedInfo `json:"extractedInfo,omitempty"`
}

// TrashOutcome reports a bulk trash operation. Every id is attempted
// independently, so a partial outcome (TrashedCount > 0 alongside FailedIDs)
// is a normal result, not an error. For duplicate-free input,
// TrashedCount + len(FailedIDs) equals the number of requested ids.
type TrashOutcome struct {
	Success      bool     `json:"success"`
	TrashedCount int      `json:"trashedCount"`
	FailedIDs    []string `json:"failedIds"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}
