package request

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/consistency"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/query"
	"github.com/kailas-cloud/fts/internal/domain/search/sortspec"
	"github.com/kailas-cloud/fts/internal/domain/search/vector"
)

func mustTerm(t *testing.T, term string) *query.Term {
	t.Helper()
	q, err := query.NewTerm(term)
	if err != nil {
		t.Fatalf("NewTerm: %v", err)
	}
	return q
}

func mustVector(t *testing.T) *vector.Search {
	t.Helper()
	q, err := vector.NewQuery("embedding", []float32{1, 2})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	s, err := vector.NewSearch(q)
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	return s
}

func TestBuild_BareQuery(t *testing.T) {
	q := mustTerm(t, "hotel")
	d, err := Build("travel", FromQuery(q), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Index() != "travel" {
		t.Errorf("Index() = %q", d.Index())
	}
	if d.Query() != q {
		t.Error("Query() is not the wrapped query")
	}
	if d.VectorSearch() != nil {
		t.Error("VectorSearch() != nil")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuild_MetricsDefaultTrue(t *testing.T) {
	d, _ := Build("idx", FromQuery(query.NewMatchAll()), nil)
	if v, set := d.Options().Metrics(); !set || !v {
		t.Errorf("Metrics() = %v, %v, want true, true", v, set)
	}

	d, _ = Build("idx", FromQuery(query.NewMatchAll()), nil, options.WithMetrics(false))
	if v, _ := d.Options().Metrics(); v {
		t.Error("explicit metrics=false overridden")
	}
}

func TestBuild_VectorOnlyDefaultsMatchNone(t *testing.T) {
	d, err := Build("idx", FromVector(mustVector(t)), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := d.Query().(*query.MatchNone); !ok {
		t.Errorf("Query() = %T, want *query.MatchNone", d.Query())
	}
	if d.VectorSearch() == nil {
		t.Error("VectorSearch() = nil")
	}
}

func TestBuild_StructuralAbsence(t *testing.T) {
	if _, err := Build("", FromQuery(query.NewMatchAll()), nil); !errors.Is(err, domain.ErrMissingRequiredField) {
		t.Errorf("empty index: %v", err)
	}
	if _, err := Build("idx", New(nil, nil), nil); !errors.Is(err, domain.ErrMissingRequiredField) {
		t.Errorf("empty request: %v", err)
	}
	if _, err := Build("idx", nil, nil); !errors.Is(err, domain.ErrMissingRequiredField) {
		t.Errorf("nil request: %v", err)
	}
}

func TestBuild_ChildErrorsDeferredToValidate(t *testing.T) {
	// An empty conjunction and an unbounded range are only invalid at encode time.
	conj := query.NewConjunction()
	d, err := Build("idx", FromQuery(conj), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Validate(); !errors.Is(err, domain.ErrNoChildQueries) {
		t.Errorf("Validate() = %v, want ErrNoChildQueries", err)
	}

	conj.And(mustTerm(t, "x"))
	if err := d.Validate(); err != nil {
		t.Errorf("Validate after And: %v", err)
	}

	d, _ = Build("idx", FromQuery(query.NewNumericRange()), nil)
	if err := d.Validate(); !errors.Is(err, domain.ErrNoBoundSpecified) {
		t.Errorf("Validate() = %v, want ErrNoBoundSpecified", err)
	}
}

func TestBuild_OptionErrorsDeferredToValidate(t *testing.T) {
	d, err := Build("idx", FromQuery(query.NewMatchAll()), nil,
		options.WithValue(options.KeyFields, "not-a-list"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
	}
}

func TestBuild_InvalidSortReportedByValidate(t *testing.T) {
	d, _ := Build("idx", FromQuery(query.NewMatchAll()), nil,
		options.WithSort(sortspec.Shorthand("-")))
	if err := d.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
	}
}

func TestBuild_ConsistencyAndWarnings(t *testing.T) {
	base, err := options.New(options.WithScopeName("inventory"))
	if err != nil {
		t.Fatalf("options.New: %v", err)
	}
	state := consistency.NewState(consistency.MutationToken{VBucketID: 7, SequenceNumber: 1})

	d, err := Build("idx", FromQuery(query.NewMatchAll()), base, options.WithConsistentWith(state))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Consistency() != consistency.AtPlus {
		t.Errorf("Consistency() = %q, want at_plus", d.Consistency())
	}
	if d.ScopeName() != "inventory" || len(d.Warnings()) != 1 {
		t.Errorf("ScopeName() = %q, Warnings() = %v", d.ScopeName(), d.Warnings())
	}
}
