package query

import "github.com/kailas-cloud/fts/internal/domain"

// Raw passes a caller-built JSON object through unchanged.
type Raw struct {
	common
	payload map[string]any
}

// NewRaw creates a raw query from an opaque JSON object.
func NewRaw(payload map[string]any) (*Raw, error) {
	if len(payload) == 0 {
		return nil, missing("payload")
	}
	p, err := domain.CloneObject(payload)
	if err != nil {
		return nil, err
	}
	return &Raw{payload: p}, nil
}

// Validate implements Query.
func (q *Raw) Validate() error { return nil }

// Encodable implements Query.
func (q *Raw) Encodable() (map[string]any, error) {
	out, _ := domain.CopyTree(q.payload).(map[string]any)
	q.encodeCommon(out)
	return out, nil
}

// MatchAll matches every document.
type MatchAll struct {
	common
}

// NewMatchAll creates a match-all query.
func NewMatchAll() *MatchAll { return &MatchAll{} }

// Validate implements Query.
func (q *MatchAll) Validate() error { return nil }

// Encodable implements Query.
func (q *MatchAll) Encodable() (map[string]any, error) {
	out := map[string]any{"match_all": nil}
	q.encodeCommon(out)
	return out, nil
}

// MatchNone matches no document.
type MatchNone struct {
	common
}

// NewMatchNone creates a match-none query.
func NewMatchNone() *MatchNone { return &MatchNone{} }

// Validate implements Query.
func (q *MatchNone) Validate() error { return nil }

// Encodable implements Query.
func (q *MatchNone) Encodable() (map[string]any, error) {
	out := map[string]any{"match_none": nil}
	q.encodeCommon(out)
	return out, nil
}
