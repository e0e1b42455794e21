// Package analysis categorizes emails and sender groups. With an API key it
// calls the Gemini REST API; without one, or when a call fails, it falls back
// to the built-in rules so triage keeps working offline.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inboxguardian/internal/model"
)

const (
	defaultModel = "gemini-2.0-flash"
	apiURLFormat = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"
)

// Analyzer is the categorization service.
type Analyzer struct {
	apiKey string
	model  string
	client *http.Client
}

// New creates an analyzer. An empty apiKey selects rule-based analysis only.
func New(apiKey, modelName string) *Analyzer {
	if modelName == "" {
		modelName = defaultModel
	}
	return &Analyzer{
		apiKey: apiKey,
		model:  modelName,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// AnalyzeEmails categorizes a batch of emails from their metadata. Results
// arrive in no particular order and are keyed by EmailID.
func (a *Analyzer) AnalyzeEmails(ctx context.Context, emails []model.Email) ([]model.AnalysisResult, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	if a.apiKey == "" {
		return ruleAnalyzeEmails(emails), nil
	}

	type promptEmail struct {
		ID      string `json:"id"`
		Sender  string `json:"sender"`
		Subject string `json:"subject"`
		Snippet string `json:"snippet"`
	}
	batch := make([]promptEmail, len(emails))
	for i, e := range emails {
		batch[i] = promptEmail{ID: e.ID, Sender: e.Sender, Subject: e.Subject, Snippet: e.Snippet}
	}
	payload, _ := json.Marshal(batch)

	prompt := fmt.Sprintf(`You are an expert email organization AI. Analyze the following list of email metadata.
For each email, categorize it, assess the risk of deleting it (riskLevel: low, medium, high),
suggest an action (archive, delete, keep, mark_read), and provide a very short reasoning.
Respond with a JSON array of objects with keys:
emailId, category (Promotional, Notification, Newsletter, Social, Finance, Personal, Spam),
confidence (0-1), reasoning, suggestedAction, riskLevel.

Emails to analyze:
%s`, payload)

	var results []model.AnalysisResult
	if err := a.generate(ctx, prompt, &results); err != nil {
		return ruleAnalyzeEmails(emails), nil
	}
	return results, nil
}

// AnalyzeSenderGroup produces an aggregate recommendation for one sender,
// sampling at most 20 of the group's emails.
func (a *Analyzer) AnalyzeSenderGroup(ctx context.Context, group model.SenderGroup) (*model.GroupAnalysis, error) {
	if a.apiKey == "" {
		return ruleAnalyzeGroup(group), nil
	}

	sample := group.Emails
	if len(sample) > 20 {
		sample = sample[:20]
	}
	type promptEmail struct {
		Subject string `json:"subject"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	}
	summary := make([]promptEmail, len(sample))
	for i, e := range sample {
		summary[i] = promptEmail{Subject: e.Subject, Snippet: e.Snippet, Date: e.Date}
	}
	payload, _ := json.Marshal(summary)

	prompt := fmt.Sprintf(`Analyze emails from a single sender and provide an overall recommendation.

Sender: %s <%s>
Total emails: %d

Sample of recent emails from this sender:
%s

Respond with a JSON object with keys:
category (Promotional, Notification, Newsletter, Social, Finance, Personal, Spam),
recommendation (keep, archive, delete, review),
summary (max 100 chars explaining the recommendation),
confidence (0-1).
Be conservative: only recommend delete for clearly low-value senders; use review if unsure.`,
		group.SenderName, group.SenderEmail, group.EmailCount, payload)

	var result model.GroupAnalysis
	if err := a.generate(ctx, prompt, &result); err != nil {
		return ruleAnalyzeGroup(group), nil
	}
	return &result, nil
}

// AnalyzeDetail produces the full analysis of one email. The returned
// EmailID always matches the input, whatever the backend answered.
func (a *Analyzer) AnalyzeDetail(ctx context.Context, detail model.EmailDetail) (*model.DetailAnalysis, error) {
	if a.apiKey == "" {
		return ruleAnalyzeDetail(detail), nil
	}

	body := detail.BodyText
	if len(body) > 3000 {
		body = body[:3000]
	}
	prompt := fmt.Sprintf(`Analyze this email in detail and provide actionable insights.

Email Details:
- From: %s <%s>
- Subject: %s
- Date: %s
- Body: %s

Respond with a JSON object with keys:
emailId, summary (2-3 sentences), keyPoints (array of strings),
sentiment (positive, neutral, negative, urgent),
category (Promotional, Notification, Newsletter, Social, Finance, Personal, Spam),
urgency (low, medium, high, critical),
suggestedActions (array of {type, label, description, priority, draftContent}),
requiresResponse (bool), responseDeadline,
extractedInfo ({dates, amounts, links, people, organizations}).
Include at least 2-3 suggested actions; the primary action first. Be conservative about delete.`,
		detail.Sender, detail.SenderEmail, detail.Subject, detail.Date, body)

	var result model.DetailAnalysis
	if err := a.generate(ctx, prompt, &result); err != nil {
		return ruleAnalyzeDetail(detail), nil
	}
	result.EmailID = detail.ID
	return &result, nil
}

// generate calls the Gemini generateContent endpoint and decodes the JSON
// answer into out.
func (a *Analyzer) generate(ctx context.Context, prompt string, out any) error {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf(apiURLFormat, a.model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, respBody)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("empty response from model")
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decoding model answer: %w", err)
	}
	return nil
}

// --- Gemini API types ---

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
