package gateway

import "fmt"

// AuthError means the token endpoint did not yield a usable access
// token. Nothing downstream can run without one.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gateway authentication failed (HTTP %d): %s", e.StatusCode, e.Detail)
}

// QueryError means a read-only call (balance, debin status) failed or
// returned an unusable body.
type QueryError struct {
	StatusCode int
	Detail     string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("gateway query failed (HTTP %d): %s", e.StatusCode, e.Detail)
}

// TransferError means a funds movement call failed. The upstream error
// detail is carried verbatim for the audit trail. The orchestrator
// treats this as retryable on the next run: the covered transactions
// stay unprocessed.
type TransferError struct {
	StatusCode int
	Detail     string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("gateway transfer failed (HTTP %d): %s", e.StatusCode, e.Detail)
}
