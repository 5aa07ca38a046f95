package export

import "errors"

var (
	// ErrNotFound indicates the procedure does not exist.
	ErrNotFound = errors.New("procedure not found")

	// ErrUnauthorized indicates the caller does not own the procedure.
	ErrUnauthorized = errors.New("procedure not owned by caller")

	// ErrNoDocuments indicates no requirement of the procedure is filled.
	ErrNoDocuments = errors.New("procedure has no documents")

	// ErrNoValidDocuments indicates the linked documents no longer resolve for the caller.
	ErrNoValidDocuments = errors.New("procedure has no valid documents")

	// ErrCredentialMissing indicates the caller never linked remote storage.
	ErrCredentialMissing = errors.New("remote storage not linked")

	// ErrMailFailed wraps a delivery failure after the archive was built.
	ErrMailFailed = errors.New("export email not delivered")

	errFileTooLarge = errors.New("file exceeds export size limit")
)
