package crm

import (
	"errors"
	"fmt"
)

// DomainError marks a backend domain-level rejection (HTTP 409), such as
// "user not found" on auth start or "wrong code" on verification. It is
// distinct from transport or server failures and maps to a specific
// user-facing message per flow.
type DomainError struct {
	Op      string
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("crm: %s rejected", e.Op)
	}
	return fmt.Sprintf("crm: %s rejected: %s", e.Op, e.Message)
}

// Code implements the error-code interface used by handler summary logging.
func (e *DomainError) Code() string { return "DOMAIN_REJECTED" }

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
