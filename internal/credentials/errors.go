package credentials

import "errors"

var (
	// ErrNotFound indicates no credential row exists.
	ErrNotFound = errors.New("not found")

	// ErrCredentialMissing indicates the user never linked a remote storage account.
	ErrCredentialMissing = errors.New("remote storage credential missing")
)
