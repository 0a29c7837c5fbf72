package domain

import "errors"

var (
	ErrNotFound = errors.New("reviewflow: not found")

	ErrSubjectNotFound  = errors.New("reviewflow: subject not found")
	ErrConflictingEntry = errors.New("reviewflow: propertyId and providerId are mutually exclusive")
	ErrUnknownKind      = errors.New("reviewflow: unknown subject kind")
	ErrSubjectResolved  = errors.New("reviewflow: subject already resolved")

	ErrUnknownField = errors.New("reviewflow: unknown field")
	ErrInvalidValue = errors.New("reviewflow: invalid value")

	ErrValidationBlocked = errors.New("reviewflow: validation blocked")
	ErrNoPreviousStep    = errors.New("reviewflow: no previous step")
	ErrSubmitInFlight    = errors.New("reviewflow: submission in flight")
	ErrSubmissionFailed  = errors.New("reviewflow: submission failed")
	ErrWizardClosed      = errors.New("reviewflow: wizard closed")
)
