package services

import "errors"

// Sentinel errors surfaced to handlers. "Already done today" must stay
// distinguishable from "does not exist" since clients branch on the two.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSpellNotFound       = errors.New("spell not found")
	ErrTalismanNotFound    = errors.New("talisman not found")
	ErrDuplicateCompletion = errors.New("spell already completed today")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
