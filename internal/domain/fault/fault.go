// Package fault defines the error categories every layer of the service
// reports through: user input problems, absent provider credentials, upstream
// provider failures and authentication failures. Handlers map each category
// to an HTTP status; everything else crossing a boundary is wrapped with %w.
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Validation reports missing or malformed user input. It is raised before any
// network call and never retried. Fields carries every absent required field
// so the caller sees the full list at once, not just the first.
type Validation struct {
	Message string
	Fields  []string
}

func (e *Validation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// MissingFields builds a Validation fault enumerating absent field names.
func MissingFields(fields ...string) *Validation {
	return &Validation{Fields: fields}
}

// Invalid builds a Validation fault with a free-form message.
func Invalid(format string, args ...any) *Validation {
	return &Validation{Message: fmt.Sprintf(format, args...)}
}

// MissingCredential reports that no API key is available for a provider. Key
// names the credential so the message is user-actionable.
type MissingCredential struct {
	Key string
}

func (e *MissingCredential) Error() string {
	return "missing " + e.Key + " API key"
}

// Upstream reports a non-success provider response or a transport failure.
// Message carries the provider's own error text verbatim when available.
type Upstream struct {
	Provider string
	Message  string
	Status   int
}

func (e *Upstream) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Provider == "" {
		return msg
	}
	return e.Provider + ": " + msg
}

// Auth reports an invalid, expired or absent session token.
type Auth struct {
	Message string
}

func (e *Auth) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// AsValidation unwraps err into a Validation fault if it is one.
func AsValidation(err error) (*Validation, bool) {
	var v *Validation
	ok := errors.As(err, &v)
	return v, ok
}

// AsMissingCredential unwraps err into a MissingCredential fault if it is one.
func AsMissingCredential(err error) (*MissingCredential, bool) {
	var m *MissingCredential
	ok := errors.As(err, &m)
	return m, ok
}

// AsUpstream unwraps err into an Upstream fault if it is one.
func AsUpstream(err error) (*Upstream, bool) {
	var u *Upstream
	ok := errors.As(err, &u)
	return u, ok
}

// AsAuth unwraps err into an Auth fault if it is one.
func AsAuth(err error) (*Auth, bool) {
	var a *Auth
	ok := errors.As(err, &a)
	return a, ok
}
