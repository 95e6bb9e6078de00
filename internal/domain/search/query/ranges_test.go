package query

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
)

func TestRanges_NoBoundDeferredToEncode(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"numeric", NewNumericRange()},
		{"date", NewDateRange()},
		{"term", NewTermRange()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.q.Encodable(); !errors.Is(err, domain.ErrNoBoundSpecified) {
				t.Errorf("err = %v, want ErrNoBoundSpecified", err)
			}
		})
	}
}

func TestNumericRange_ZeroIsABound(t *testing.T) {
	q := NewNumericRange()
	q.SetMin(0)
	q.SetMax(0)
	assertJSON(t, q, `{"min":0,"max":0}`)
}

func TestNumericRange_Full(t *testing.T) {
	q := NewNumericRange()
	q.SetMin(1.5)
	q.SetInclusiveMin(true)
	q.SetMax(10)
	q.SetInclusiveMax(false)
	q.SetField("rating")
	assertJSON(t, q, `{"min":1.5,"inclusive_min":true,"max":10,"inclusive_max":false,"field":"rating"}`)
}

func TestNumericRange_BoundAddedAfterConstruction(t *testing.T) {
	q := NewNumericRange()
	if _, err := q.Encodable(); err == nil {
		t.Fatal("expected error before a bound is set")
	}
	q.SetMax(3)
	assertJSON(t, q, `{"max":3}`)
}

func TestDateRange(t *testing.T) {
	q := NewDateRange()
	q.SetStartTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	q.SetEnd("2025-01-01")
	q.SetInclusiveStart(true)
	q.SetDateTimeParser("dateTimeOptional")
	assertJSON(t, q, `{"start":"2024-01-02T03:04:05Z","end":"2025-01-01","inclusive_start":true,
		"datetime_parser":"dateTimeOptional"}`)
}

func TestTermRange(t *testing.T) {
	q := NewTermRange()
	q.SetMin("")
	q.SetField("name")
	assertJSON(t, q, `{"min":"","field":"name"}`)
}
