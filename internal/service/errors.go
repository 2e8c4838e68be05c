// Package service implements the user-initiated operations: group,
// expense and settlement CRUD, and balance refresh orchestration.
//
// Validation happens before any write; a validation failure leaves no
// partial state. Remote ledger writes go through the synchronizer's
// retry-once path and never block or roll back the local operation.
package service

import "errors"

// ErrValidation marks errors caused by invalid input. The operation did
// not proceed and no state changed.
var ErrValidation = errors.New("validation failed")
