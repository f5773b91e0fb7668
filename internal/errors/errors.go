package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ValidationError indicates that a connect request is missing a field
// required by the authentication strategy it selects. It is reported
// before any network activity.
type ValidationError struct {
	Strategy     string
	MissingField string
	Message      string
}

func (e ValidationError) Error() string {
	if e.MissingField != "" {
		return fmt.Sprintf("invalid connect request for %s authentication: missing %s", e.Strategy, e.MissingField)
	}
	return fmt.Sprintf("invalid connect request for %s authentication: %s", e.Strategy, e.Message)
}

// ConflictError indicates that a connect request matched more than one
// mutually exclusive authentication input group.
type ConflictError struct {
	Groups []string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflicting authentication inputs: %s are mutually exclusive", strings.Join(e.Groups, " and "))
}

// CredentialUnresolvedError indicates that no stored credential matched
// any prefix of the target address. It is not fatal where an interactive
// prompt can take over.
type CredentialUnresolvedError struct {
	Address string
}

func (e CredentialUnresolvedError) Error() string {
	return fmt.Sprintf("no stored credential found for %s or any parent address", e.Address)
}

// AuthFailedError indicates that the authentication exchange rejected the
// supplied credential, token, or certificate. The previous connection, if
// any, is preserved.
type AuthFailedError struct {
	Strategy string
	Reason   string
	Err      error
}

func (e AuthFailedError) Error() string {
	msg := fmt.Sprintf("%s authentication failed", e.Strategy)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e AuthFailedError) Unwrap() error {
	return e.Err
}

// NetworkError indicates the authentication endpoint could not be reached.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network unreachable: %s: %v", e.Endpoint, e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// CertificateError indicates a certificate could not be loaded or parsed.
type CertificateError struct {
	Path string
	Err  error
}

func (e CertificateError) Error() string {
	return fmt.Sprintf("invalid certificate %s: %v", e.Path, e.Err)
}

func (e CertificateError) Unwrap() error {
	return e.Err
}

// CacheError indicates the token cache artifact exists but could not be
// removed or its directory could not be prepared.
type CacheError struct {
	Path string
	Op   string
	Err  error
}

func (e CacheError) Error() string {
	return fmt.Sprintf("token cache %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e CacheError) Unwrap() error {
	return e.Err
}

// PromptCancelledError indicates the user aborted the interactive
// credential prompt.
type PromptCancelledError struct{}

func (e PromptCancelledError) Error() string {
	return "credential prompt cancelled"
}
