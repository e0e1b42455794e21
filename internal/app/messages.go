package app

import (
	"inboxguardian/internal/model"
	"inboxguardian/internal/provider"
)

// Async message types for Bubble Tea commands.

// oauthURLMsg carries the consent URL the user must open in a browser.
type oauthURLMsg string

type connectResultMsg struct {
	mailbox provider.Mailbox
	account string
	err     error
}

type fetchCompleteMsg struct {
	emails []model.Email
	err    error
}

// analysesMsg carries per-email categorization results for a batch.
type analysesMsg struct {
	results []model.AnalysisResult
	err     error
}

// groupAnalysisMsg carries the aggregate recommendation for one sender.
type groupAnalysisMsg struct {
	senderEmail string
	analysis    *model.GroupAnalysis
	err         error
}

// searchResultMsg carries every message found for one sender, read or not.
type searchResultMsg struct {
	senderEmail string
	emails      []model.Email
	err         error
}

type detailFetchedMsg struct {
	detail model.EmailDetail
	err    error
}

type detailAnalysisMsg struct {
	emailID  string
	analysis *model.DetailAnalysis
	err      error
}

// trashResultMsg pairs the requested ids with the provider's outcome so the
// coordinator can reconcile only the succeeded subset.
type trashResultMsg struct {
	requested []string
	outcome   model.TrashOutcome
}

type statusMsg string
