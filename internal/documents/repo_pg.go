package documents

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ListByKeys resolves documents by (id, owner) pairs. Rows come back in the
// order of the requested keys.
func (r *PGRepo) ListByKeys(ctx context.Context, keys []OwnedKey) ([]Document, error) {
	if len(keys) == 0 {
		return []Document{}, nil
	}

	const query = `
SELECT d.id, d.user_id, d.file_name, d.document_type, d.storage_id, d.uploaded_at
FROM unnest($1::text[], $2::text[]) WITH ORDINALITY AS k(id, owner_id, ord)
JOIN documents d ON d.id = k.id AND d.user_id = k.owner_id
WHERE d.deleted_at IS NULL
ORDER BY k.ord`

	ids := make([]string, len(keys))
	owners := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = key.ID
		owners[i] = key.OwnerID
	}

	rows, err := r.DB.QueryContext(ctx, query, ids, owners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	seen := make(map[string]struct{}, len(keys))
	for rows.Next() {
		var doc Document
		var storageID sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.DocumentType,
			&storageID,
			&doc.UploadedAt,
		); err != nil {
			return nil, err
		}
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		if storageID.Valid {
			doc.StorageID = &storageID.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
