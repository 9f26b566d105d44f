package domain

import (
	"errors"
	"fmt"
)

// ErrNoCredentials signals a signed call attempted before InitCredentials
// succeeded for the account. This is a caller contract violation, not a
// remote failure.
var ErrNoCredentials = errors.New("no runtime credentials for account")

var ErrNoAccounts = errors.New("no accounts configured")

// BootstrapError reports which step of the credential handshake failed.
// Bootstrap failures are terminal for the account's run.
type BootstrapError struct {
	Step    int
	Message string
	Err     error
}

func (e *BootstrapError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bootstrap step %d: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("bootstrap step %d: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}
