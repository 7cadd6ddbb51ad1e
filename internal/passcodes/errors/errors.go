package errors

import "errors"

var (
	ErrNotFound = errors.New("passcode entry not found")

	ErrInvalidID = errors.New("invalid passcode entry ID format")

	// ErrAlreadyExists means a non-revoked entry already occupies the
	// reservation's slot. Generation is idempotent through this error.
	ErrAlreadyExists = errors.New("a passcode entry already exists for this reservation")

	// ErrNotManual means a code was submitted for an entry the vendor owns.
	ErrNotManual = errors.New("entry is not a manual passcode entry")

	// ErrNotPending means a code was submitted for an entry that already
	// left the pending state. Expired and revoked entries are terminal.
	ErrNotPending = errors.New("entry is no longer awaiting a code")

	ErrNoDevices = errors.New("property has no lock devices configured")
)
