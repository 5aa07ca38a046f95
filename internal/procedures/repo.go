package procedures

import "context"

// Repo defines read operations on procedures.
type Repo interface {
	GetWithTemplate(ctx context.Context, id string) (Procedure, error)
}
