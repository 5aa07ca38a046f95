package procedures

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetWithTemplate loads a procedure joined with its template.
func (r *PGRepo) GetWithTemplate(ctx context.Context, id string) (Procedure, error) {
	const query = `
SELECT p.id, p.user_id, p.title, p.document_map, p.state, p.created_at, p.completed_at,
       t.id, t.title, t.category, t.required_types
FROM procedures p
JOIN procedure_templates t ON t.id = p.template_id
WHERE p.id = $1
LIMIT 1`

	var p Procedure
	var title sql.NullString
	var documentMap []byte
	var state string
	var completedAt sql.NullTime
	var requiredTypes []string

	types := pgtype.NewMap()
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&title,
		&documentMap,
		&state,
		&p.CreatedAt,
		&completedAt,
		&p.Template.ID,
		&p.Template.Title,
		&p.Template.Category,
		types.SQLScanner(&requiredTypes),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Procedure{}, ErrNotFound
		}
		return Procedure{}, err
	}

	if title.Valid {
		p.Title = &title.String
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	p.State = State(state)
	p.Template.RequiredTypes = requiredTypes

	mapping, err := decodeDocumentMap(documentMap)
	if err != nil {
		return Procedure{}, fmt.Errorf("procedure %s: %w", p.ID, err)
	}
	p.DocumentMap = mapping
	return p, nil
}

// decodeDocumentMap reads the JSONB requirement mapping. Null values mark
// unmet requirements and are dropped.
func decodeDocumentMap(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var decoded map[string]*string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode document map: %w", err)
	}
	out := make(map[string]string, len(decoded))
	for key, value := range decoded {
		if value == nil {
			continue
		}
		out[key] = *value
	}
	return out, nil
}
