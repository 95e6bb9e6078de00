// Package consistency models how fresh a search index must be before it answers.
package consistency

import (
	"fmt"
	"slices"
)

// Mode is the scan consistency level.
type Mode string

// Consistency modes. AtPlus is only reachable through a mutation state.
const (
	Unset       Mode = ""
	NotBounded  Mode = "not_bounded"
	RequestPlus Mode = "request_plus"
	AtPlus      Mode = "at_plus"
)

// ParseMode parses a scan consistency name. AtPlus is rejected.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case NotBounded, RequestPlus:
		return Mode(s), nil
	case AtPlus:
		return Unset, fmt.Errorf("%q cannot be set directly, use a mutation state", s)
	default:
		return Unset, fmt.Errorf("unknown scan consistency %q", s)
	}
}

// MutationToken marks the position of a single write in a vbucket.
type MutationToken struct {
	BucketName     string `json:"bucket_name,omitempty"`
	VBucketID      uint16 `json:"vbucket_id"`
	VBucketUUID    uint64 `json:"vbucket_uuid"`
	SequenceNumber uint64 `json:"sequence_number"`
}

// MutationState is a set of mutation tokens a search must be consistent with.
type MutationState interface {
	Tokens() []MutationToken
}

// State is the default MutationState, keeping the newest token per vbucket.
type State struct {
	tokens []MutationToken
}

// NewState creates a state from tokens.
func NewState(tokens ...MutationToken) *State {
	s := &State{}
	s.Add(tokens...)
	return s
}

// Add records tokens. A token replaces an older one for the same bucket and
// vbucket when its sequence number is higher.
func (s *State) Add(tokens ...MutationToken) {
	for _, t := range tokens {
		idx := slices.IndexFunc(s.tokens, func(e MutationToken) bool {
			return e.BucketName == t.BucketName && e.VBucketID == t.VBucketID
		})
		switch {
		case idx < 0:
			s.tokens = append(s.tokens, t)
		case t.SequenceNumber > s.tokens[idx].SequenceNumber:
			s.tokens[idx] = t
		}
	}
}

// Tokens implements MutationState.
func (s *State) Tokens() []MutationToken {
	return slices.Clone(s.tokens)
}

var _ MutationState = (*State)(nil)
