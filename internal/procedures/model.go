package procedures

import (
	"sort"
	"strings"
	"time"
)

// State is the lifecycle state of a procedure.
type State string

const (
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
	StateAbandoned  State = "abandoned"
)

// Template is the reusable definition of a procedure kind.
type Template struct {
	ID            string
	Title         string
	Category      string
	RequiredTypes []string
}

// Procedure is a user's instantiated checklist. DocumentMap maps a
// requirement name to the id of the document filling it.
type Procedure struct {
	ID          string
	UserID      string
	Title       *string
	Template    Template
	DocumentMap map[string]string
	State       State
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// DisplayTitle returns the custom title, or the template title when none is
// set. A set but empty title is kept as is.
func (p Procedure) DisplayTitle() string {
	if p.Title != nil {
		return *p.Title
	}
	return p.Template.Title
}

// ArchiveTime is the timestamp stamped on exported archive entries.
func (p Procedure) ArchiveTime() time.Time {
	if p.CompletedAt != nil {
		return *p.CompletedAt
	}
	return p.CreatedAt
}

// DocumentIDs lists mapped document ids: template requirements first in
// template order, then any other requirement keys sorted by name. Empty
// values are skipped and each id appears once.
func (p Procedure) DocumentIDs() []string {
	if len(p.DocumentMap) == 0 {
		return nil
	}

	ids := make([]string, 0, len(p.DocumentMap))
	seenID := make(map[string]struct{}, len(p.DocumentMap))
	seenKey := make(map[string]struct{}, len(p.DocumentMap))
	add := func(key string) {
		seenKey[key] = struct{}{}
		id := strings.TrimSpace(p.DocumentMap[key])
		if id == "" {
			return
		}
		if _, ok := seenID[id]; ok {
			return
		}
		seenID[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, req := range p.Template.RequiredTypes {
		if _, ok := p.DocumentMap[req]; !ok {
			continue
		}
		if _, done := seenKey[req]; done {
			continue
		}
		add(req)
	}

	rest := make([]string, 0, len(p.DocumentMap))
	for key := range p.DocumentMap {
		if _, done := seenKey[key]; !done {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		add(key)
	}
	return ids
}
