package query

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/fts/internal/domain"
)

// Conjunction matches documents matching all of its children.
type Conjunction struct {
	common
	children []Query
}

// NewConjunction creates a conjunction. Children may be added later with And.
func NewConjunction(children ...Query) *Conjunction {
	return &Conjunction{children: slices.Clone(children)}
}

// And appends children.
func (q *Conjunction) And(children ...Query) *Conjunction {
	q.children = append(q.children, children...)
	return q
}

// Len returns the number of children.
func (q *Conjunction) Len() int { return len(q.children) }

// Validate implements Query.
func (q *Conjunction) Validate() error {
	if len(q.children) == 0 {
		return fmt.Errorf("conjunction: %w", domain.ErrNoChildQueries)
	}
	return nil
}

// Encodable implements Query.
func (q *Conjunction) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	children, err := encodeChildren("conjuncts", q.children)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"conjuncts": children}
	q.encodeCommon(out)
	return out, nil
}

// Disjunction matches documents matching at least Min of its children.
type Disjunction struct {
	common
	children []Query
	min      *int
}

// NewDisjunction creates a disjunction. Children may be added later with Or.
func NewDisjunction(children ...Query) *Disjunction {
	return &Disjunction{children: slices.Clone(children)}
}

// Or appends children.
func (q *Disjunction) Or(children ...Query) *Disjunction {
	q.children = append(q.children, children...)
	return q
}

// Len returns the number of children.
func (q *Disjunction) Len() int { return len(q.children) }

// SetMin sets how many children must match. It must be at least 1.
func (q *Disjunction) SetMin(n int) error {
	if n < 1 {
		return invalid("disjunction min must be >= 1, got %d", n)
	}
	q.min = &n
	return nil
}

// Min returns the minimum and whether it was set.
func (q *Disjunction) Min() (int, bool) {
	if q.min == nil {
		return 0, false
	}
	return *q.min, true
}

// Validate implements Query.
func (q *Disjunction) Validate() error {
	if len(q.children) == 0 {
		return fmt.Errorf("disjunction: %w", domain.ErrNoChildQueries)
	}
	if q.min != nil && *q.min > len(q.children) {
		return invalid("disjunction min %d exceeds %d children", *q.min, len(q.children))
	}
	return nil
}

// Encodable implements Query.
func (q *Disjunction) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	children, err := encodeChildren("disjuncts", q.children)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"disjuncts": children}
	if q.min != nil {
		out["min"] = *q.min
	}
	q.encodeCommon(out)
	return out, nil
}

// Boolean combines must, should and must-not clauses.
type Boolean struct {
	common
	must    *Conjunction
	should  *Disjunction
	mustNot *Disjunction
}

// NewBoolean creates an empty boolean query. Add at least one clause before
// encoding.
func NewBoolean() *Boolean { return &Boolean{} }

// SetMust replaces the must clause.
func (q *Boolean) SetMust(c *Conjunction) *Boolean {
	q.must = c
	return q
}

// SetShould replaces the should clause.
func (q *Boolean) SetShould(d *Disjunction) *Boolean {
	q.should = d
	return q
}

// SetMustNot replaces the must-not clause.
func (q *Boolean) SetMustNot(d *Disjunction) *Boolean {
	q.mustNot = d
	return q
}

// Must appends children to the must clause.
func (q *Boolean) Must(children ...Query) *Boolean {
	if q.must == nil {
		q.must = NewConjunction()
	}
	q.must.And(children...)
	return q
}

// Should appends children to the should clause.
func (q *Boolean) Should(children ...Query) *Boolean {
	if q.should == nil {
		q.should = NewDisjunction()
	}
	q.should.Or(children...)
	return q
}

// MustNot appends children to the must-not clause.
func (q *Boolean) MustNot(children ...Query) *Boolean {
	if q.mustNot == nil {
		q.mustNot = NewDisjunction()
	}
	q.mustNot.Or(children...)
	return q
}

// SetShouldMin sets how many should children must match.
func (q *Boolean) SetShouldMin(n int) error {
	if q.should == nil {
		q.should = NewDisjunction()
	}
	return q.should.SetMin(n)
}

// Validate implements Query.
func (q *Boolean) Validate() error {
	if !nonEmpty(q.must) && !nonEmptyDisjunction(q.should) && !nonEmptyDisjunction(q.mustNot) {
		return fmt.Errorf("boolean: %w", domain.ErrNoChildQueries)
	}
	return nil
}

// Encodable implements Query.
func (q *Boolean) Encodable() (map[string]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	if nonEmpty(q.must) {
		enc, err := q.must.Encodable()
		if err != nil {
			return nil, fmt.Errorf("must: %w", err)
		}
		out["must"] = enc
	}
	if nonEmptyDisjunction(q.should) {
		enc, err := q.should.Encodable()
		if err != nil {
			return nil, fmt.Errorf("should: %w", err)
		}
		out["should"] = enc
	}
	if nonEmptyDisjunction(q.mustNot) {
		enc, err := q.mustNot.Encodable()
		if err != nil {
			return nil, fmt.Errorf("must_not: %w", err)
		}
		out["must_not"] = enc
	}
	q.encodeCommon(out)
	return out, nil
}

func nonEmpty(c *Conjunction) bool { return c != nil && c.Len() > 0 }

func nonEmptyDisjunction(d *Disjunction) bool { return d != nil && d.Len() > 0 }

func encodeChildren(key string, children []Query) ([]map[string]any, error) {
	out := make([]map[string]any, len(children))
	for i, child := range children {
		if child == nil {
			return nil, invalid("%s[%d] is nil", key, i)
		}
		enc, err := child.Encodable()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = enc
	}
	return out, nil
}
