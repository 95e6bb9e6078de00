package query

import (
	"encoding/json"
	"reflect"
	"testing"
)

// assertJSON encodes q and compares it with the expected JSON document.
func assertJSON(t *testing.T, q Query, want string) {
	t.Helper()
	data, err := Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got, exp any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &exp); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if !reflect.DeepEqual(got, exp) {
		t.Errorf("encoded = %s\nwant      %s", data, want)
	}
}

func mustTerm(t *testing.T, term string) *Term {
	t.Helper()
	q, err := NewTerm(term)
	if err != nil {
		t.Fatalf("NewTerm: %v", err)
	}
	return q
}
