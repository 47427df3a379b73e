package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidStage is returned for a stage value outside the known enum
	ErrInvalidStage = errors.New("invalid lead stage")

	// ErrUnpinnable is returned when pinning an activity type that cannot be pinned
	ErrUnpinnable = errors.New("activity type cannot be pinned")

	// ErrPinLimitExceeded is returned when a lead already has the maximum pinned activities
	ErrPinLimitExceeded = errors.New("pin limit exceeded for lead")

	// ErrProposalLocked is returned when editing a proposal that has already been sent
	ErrProposalLocked = errors.New("proposal can no longer be edited")

	// ErrProposalDecided is returned when re-deciding or deleting a decided proposal
	ErrProposalDecided = errors.New("proposal has already been decided")

	// ErrBillingDisabled is returned when Stripe is not configured
	ErrBillingDisabled = errors.New("billing integration is not configured")

	// ErrReportsDisabled is returned when the LLM integration is not configured
	ErrReportsDisabled = errors.New("report generation is not configured")
)
