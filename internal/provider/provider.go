// Package provider abstracts the two mailbox transports: Gmail over OAuth
// and Yahoo over the IMAP proxy. The application talks to the Mailbox
// interface only; ids are opaque and valid only within the issuing session.
package provider

import (
	"context"
	"fmt"

	"inboxguardian/internal/model"
)

// Kind names a mailbox transport.
type Kind string

const (
	KindGmail Kind = "gmail"
	KindYahoo Kind = "yahoo"
)

// Mailbox is the operation surface every provider implements. Trash reports
// partial failure through the returned TrashOutcome; the error is reserved
// for failures that prevented the attempt entirely.
type Mailbox interface {
	Name() string
	Kind() Kind
	FetchUnread(ctx context.Context, limit int) ([]model.Email, error)
	FetchDetail(ctx context.Context, id string, base model.Email) (model.EmailDetail, error)
	Trash(ctx context.Context, ids []string) model.TrashOutcome
	SearchBySender(ctx context.Context, senderEmail string, limit int) ([]model.Email, error)
	Disconnect(ctx context.Context) error
}

// NotAuthenticatedError marks operations attempted without a live session.
type NotAuthenticatedError struct {
	Kind Kind
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("%s: not authenticated, connect first", e.Kind)
}

// TransportError wraps a failure reaching the provider backend.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// failAll builds the outcome for a trash request that never reached the
// backend: every id is reported failed.
func failAll(ids []string, msg string) model.TrashOutcome {
	failed := make([]string, len(ids))
	copy(failed, ids)
	return model.TrashOutcome{
		Success:      false,
		TrashedCount: 0,
		FailedIDs:    failed,
		ErrorMessage: msg,
	}
}
