package service

import "errors"

var (
	// ErrNotFound means the referenced partner does not exist. Permanent for the caller.
	ErrNotFound = errors.New("partner not found")

	// ErrConstraintViolation means the unit of work hit a storage integrity conflict and was rolled back.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrStorageUnavailable means the store could not be reached or the unit of work timed out.
	// Nothing was committed; the caller may retry with a fresh logical operation.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrBalanceOutOfRange means the resulting balance does not fit the ledger's storage precision.
	// Nothing was committed.
	ErrBalanceOutOfRange = errors.New("balance out of range")

	// ErrInvalidAmount rejects amounts the ledger cannot store exactly (more than 4 decimal places or too large).
	ErrInvalidAmount = errors.New("invalid amount")
)
