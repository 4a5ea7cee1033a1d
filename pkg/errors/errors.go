// Package errors provides structured error handling for presale.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitConnection = 3 // Wallet or network connection failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied
	ExitTx         = 6 // Transaction rejected, reverted or failed
)

// PresaleError is the structured error type for presale.
type PresaleError struct {
	Code       string            // Machine-readable error code
	Title      string            // Short headline for notifications
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *PresaleError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PresaleError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for PresaleError.
func (e *PresaleError) Is(target error) bool {
	var t *PresaleError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// clone returns a shallow copy so sentinels are never mutated.
func (e *PresaleError) clone() *PresaleError {
	c := *e
	return &c
}

// Sentinel errors.
var (
	ErrGeneral = &PresaleError{
		Code:     "GENERAL_ERROR",
		Title:    "Error",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &PresaleError{
		Code:     "INVALID_INPUT",
		Title:    "Invalid Input",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &PresaleError{
		Code:     "NOT_FOUND",
		Title:    "Not Found",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrPermission = &PresaleError{
		Code:     "PERMISSION_DENIED",
		Title:    "Permission Denied",
		Message:  "only the presale owner can perform this action",
		ExitCode: ExitPermission,
	}

	// Connection errors.
	ErrProviderMissing = &PresaleError{
		Code:       "PROVIDER_MISSING",
		Title:      "Wallet Not Found",
		Message:    "no wallet provider is available",
		Suggestion: "Configure a wallet: set PRESALE_PRIVATE_KEY or PRESALE_WALLET_URL",
		ExitCode:   ExitConnection,
	}

	ErrNetworkSwitchRejected = &PresaleError{
		Code:       "NETWORK_SWITCH_REJECTED",
		Title:      "Network Switch Rejected",
		Message:    "the wallet rejected the network switch request",
		Suggestion: "Check the wallet and try connecting again",
		ExitCode:   ExitConnection,
	}

	ErrNetworkMismatch = &PresaleError{
		Code:       "NETWORK_MISMATCH",
		Title:      "Incorrect Network",
		Message:    "wallet is connected to a different network",
		Suggestion: "Switch the wallet to the selected network and reconnect",
		ExitCode:   ExitConnection,
	}

	ErrUnknownConnection = &PresaleError{
		Code:     "UNKNOWN_CONNECTION_ERROR",
		Title:    "Wallet Connection Error",
		Message:  "wallet connection failed",
		ExitCode: ExitConnection,
	}

	ErrNotConnected = &PresaleError{
		Code:     "NOT_CONNECTED",
		Title:    "Connection Error",
		Message:  "wallet or contract not connected",
		ExitCode: ExitConnection,
	}

	ErrWrongNetwork = &PresaleError{
		Code:     "WRONG_NETWORK",
		Title:    "Wrong Network",
		Message:  "wallet is on a different network; contract calls are disabled",
		ExitCode: ExitConnection,
	}

	// Read-side errors.
	ErrReadFailure = &PresaleError{
		Code:     "READ_FAILURE",
		Title:    "Contract Error",
		Message:  "could not load contract data",
		ExitCode: ExitGeneral,
	}

	ErrNotReady = &PresaleError{
		Code:     "NOT_READY",
		Title:    "Not Ready",
		Message:  "required contract data is not loaded yet",
		ExitCode: ExitGeneral,
	}

	ErrStaleContext = &PresaleError{
		Code:     "STALE_CONTEXT",
		Title:    "Stale Response",
		Message:  "response arrived after its session context ended",
		ExitCode: ExitGeneral,
	}

	// Transaction errors.
	ErrTransactionRejected = &PresaleError{
		Code:     "TX_REJECTED",
		Title:    "Transaction Rejected",
		Message:  "transaction was rejected in the wallet",
		ExitCode: ExitTx,
	}

	ErrTransactionReverted = &PresaleError{
		Code:     "TX_REVERTED",
		Title:    "Transaction Reverted",
		Message:  "transaction reverted",
		ExitCode: ExitTx,
	}

	ErrTransactionFailed = &PresaleError{
		Code:     "TX_FAILED",
		Title:    "Transaction Failed",
		Message:  "transaction failed",
		ExitCode: ExitTx,
	}

	ErrInvalidAmount = &PresaleError{
		Code:     "INVALID_AMOUNT",
		Title:    "Invalid Amount",
		Message:  "please enter a valid contribution amount",
		ExitCode: ExitInput,
	}

	ErrInvalidRate = &PresaleError{
		Code:     "INVALID_RATE",
		Title:    "Invalid Rate",
		Message:  "please enter a valid positive number for the rate",
		ExitCode: ExitInput,
	}

	ErrNotEligible = &PresaleError{
		Code:     "NOT_ELIGIBLE",
		Title:    "Not Eligible",
		Message:  "action is not available for the current presale state",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &PresaleError{
		Code:     "CONFIG_NOT_FOUND",
		Title:    "Configuration Error",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &PresaleError{
		Code:     "CONFIG_INVALID",
		Title:    "Configuration Error",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownNetwork = &PresaleError{
		Code:     "UNKNOWN_NETWORK",
		Title:    "Unknown Network",
		Message:  "network is not configured",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &PresaleError{
		Code:     "INVALID_ADDRESS",
		Title:    "Invalid Address",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}
)

// New creates a new PresaleError with the given code and message.
func New(code, message string) *PresaleError {
	return &PresaleError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var pe *PresaleError
	if errors.As(err, &pe) {
		return &PresaleError{
			Code:       pe.Code,
			Title:      pe.Title,
			Message:    fmt.Sprintf("%s: %s", msg, pe.Message),
			Details:    pe.Details,
			Suggestion: pe.Suggestion,
			Cause:      err,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PresaleError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a copy of a sentinel.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		c := pe.clone()
		c.Cause = cause
		return c
	}

	return fmt.Errorf("%w: %w", err, cause)
}

// WithMessage replaces the human-readable message of a copy of err, keeping its code.
func WithMessage(err error, message string) error {
	if err == nil {
		return nil
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		c := pe.clone()
		c.Message = message
		return c
	}

	return &PresaleError{
		Code:     "GENERAL_ERROR",
		Message:  message,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithTitle replaces the notification headline of a copy of err.
func WithTitle(err error, title string) error {
	if err == nil {
		return nil
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		c := pe.clone()
		c.Title = title
		return c
	}

	return &PresaleError{
		Code:     "GENERAL_ERROR",
		Title:    title,
		Message:  err.Error(),
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		c := pe.clone()
		c.Details = details
		return c
	}

	return &PresaleError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		c := pe.clone()
		c.Suggestion = suggestion
		return c
	}

	return &PresaleError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pe *PresaleError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var pe *PresaleError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return "GENERAL_ERROR"
}

// TitleOf returns the notification headline for an error, or fallback.
func TitleOf(err error, fallback string) string {
	var pe *PresaleError
	if errors.As(err, &pe) && pe.Title != "" {
		return pe.Title
	}
	return fallback
}

// MessageOf returns the message of the outermost PresaleError in err, or
// err.Error() when there is none.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *PresaleError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

// Describe returns the user-facing description of an error: the message of the
// outermost PresaleError plus the message of its root cause, if any.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var pe *PresaleError
	if !errors.As(err, &pe) {
		return err.Error()
	}
	if pe.Cause == nil {
		return pe.Message
	}

	root := pe.Cause
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}

	var rootPE *PresaleError
	if errors.As(root, &rootPE) {
		return pe.Message
	}
	return fmt.Sprintf("%s: %s", pe.Message, root.Error())
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
