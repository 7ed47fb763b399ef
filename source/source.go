package source

import (
	"context"
	"time"

	"pageblock/rules"
)

// UpdateType says whether a source's content changes between refreshes.
type UpdateType string

const (
	UpdateStatic  UpdateType = "static"
	UpdateDynamic UpdateType = "dynamic"
)

// Payload is the raw rule material one source produces. Exactly one field
// is populated: filter-list sources yield Text, structured sources yield
// Rules.
type Payload struct {
	Text  string
	Rules []rules.Rule
}

// Source supplies raw rule material for one provider and declares the
// identifier range its compiled directives may use.
type Source interface {
	// FetchRules fetches the source's current payload.
	FetchRules(ctx context.Context) (Payload, error)
	// RuleIDRange returns the reserved id block. Ranges never overlap
	// across sources.
	RuleIDRange() rules.IDRange
	// UpdateInterval returns how often the source should be refreshed.
	// Zero means manual refresh only.
	UpdateInterval() time.Duration
	Name() string
	UpdateType() UpdateType
}
