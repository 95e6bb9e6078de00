package consistency

import (
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"not_bounded", "request_plus"} {
		m, err := ParseMode(s)
		if err != nil || string(m) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	for _, s := range []string{"at_plus", "", "eventual"} {
		if _, err := ParseMode(s); err == nil {
			t.Errorf("ParseMode(%q) = nil error", s)
		}
	}
}

func TestState_KeepsNewestPerVBucket(t *testing.T) {
	s := NewState(
		MutationToken{BucketName: "travel", VBucketID: 1, VBucketUUID: 10, SequenceNumber: 5},
		MutationToken{BucketName: "travel", VBucketID: 2, VBucketUUID: 20, SequenceNumber: 1},
	)
	s.Add(
		MutationToken{BucketName: "travel", VBucketID: 1, VBucketUUID: 10, SequenceNumber: 9},
		MutationToken{BucketName: "travel", VBucketID: 2, VBucketUUID: 20, SequenceNumber: 0},
	)

	got := s.Tokens()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].SequenceNumber != 9 {
		t.Errorf("vb1 seqno = %d, want 9", got[0].SequenceNumber)
	}
	if got[1].SequenceNumber != 1 {
		t.Errorf("vb2 seqno = %d, want 1", got[1].SequenceNumber)
	}
}

func TestState_TokensIsACopy(t *testing.T) {
	s := NewState(MutationToken{VBucketID: 1, SequenceNumber: 1})
	s.Tokens()[0].SequenceNumber = 100
	if s.Tokens()[0].SequenceNumber != 1 {
		t.Error("Tokens() exposed internal slice")
	}
}
