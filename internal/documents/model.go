package documents

import "time"

// Document is a stored file owned by a user. StorageID references the bytes in
// remote storage and is nil when the file never reached it.
type Document struct {
	ID           string
	UserID       string
	FileName     string
	DocumentType string
	StorageID    *string
	UploadedAt   time.Time
}

// HasStorage reports whether the document has remote content to fetch.
func (d Document) HasStorage() bool {
	return d.StorageID != nil && *d.StorageID != ""
}

// OwnedKey addresses a document by id and owner together. Lookups through
// OwnedKey never return a row belonging to another user.
type OwnedKey struct {
	ID      string
	OwnerID string
}

// KeysFor builds keys for ids all owned by ownerID.
func KeysFor(ownerID string, ids []string) []OwnedKey {
	keys := make([]OwnedKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, OwnedKey{ID: id, OwnerID: ownerID})
	}
	return keys
}
