package archive

import "fmt"

// FailureKind classifies why an entry was replaced by a placeholder.
type FailureKind int

const (
	// FailureFetch is a generic retrieval failure.
	FailureFetch FailureKind = iota
	// FailureExpiredCredential means the storage token expired or was revoked.
	FailureExpiredCredential
	// FailureNotStored means the document has no remote content.
	FailureNotStored
	// FailureTooLarge means the file exceeded a size cap.
	FailureTooLarge
)

func (k FailureKind) String() string {
	switch k {
	case FailureExpiredCredential:
		return "credential_expired"
	case FailureNotStored:
		return "missing_storage"
	case FailureTooLarge:
		return "too_large"
	default:
		return "fetch_failed"
	}
}

// EntryFailure records a document that could not be included in an archive.
type EntryFailure struct {
	FileName string
	Kind     FailureKind
	Err      error
}

func (f EntryFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.FileName, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.FileName, f.Kind, f.Err)
}

func (f EntryFailure) Unwrap() error {
	return f.Err
}

// Message is the human-readable note written into the placeholder entry.
func (f EntryFailure) Message() string {
	switch f.Kind {
	case FailureExpiredCredential:
		return fmt.Sprintf("The file %q could not be downloaded because access to your Google account has expired or was revoked.\n"+
			"Reconnect your Google account, then export this procedure again.\n", f.FileName)
	case FailureNotStored:
		return fmt.Sprintf("The file %q has not been uploaded to your storage yet, so it could not be included.\n", f.FileName)
	case FailureTooLarge:
		return fmt.Sprintf("The file %q is too large to be included in this archive.\n", f.FileName)
	default:
		return fmt.Sprintf("The file %q could not be downloaded from your storage.\n"+
			"Try exporting this procedure again later.\n", f.FileName)
	}
}
