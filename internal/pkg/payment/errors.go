package payment

import "errors"

var (
	ErrNoActivePackage           = errors.New("no active package available")
	ErrMalformedReference        = errors.New("invalid transaction reference format")
	ErrMissingVerificationParams = errors.New("missing payment verification parameters")
	ErrVerificationNetwork       = errors.New("payment verification request failed")
	ErrVerificationRejected      = errors.New("payment verification failed")
	ErrInitiationFailed          = errors.New("payment initiation failed")
)
