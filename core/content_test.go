package core

import (
	"testing"
	"time"
)

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\nb", "a\nb"},
		{"a\r\n\r\nb\r", "a\n\nb\n"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLineEndings(tt.in); got != tt.want {
			t.Errorf("NormalizeLineEndings(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplateMUS_Skip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	tpl := Template{ID: 9, Title: "Deposit", Text: "body", Memo: "note", CreatedAt: now, ModifiedAt: now}

	bs := make([]byte, TemplateMUS.Size(tpl))
	n := TemplateMUS.Marshal(tpl, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size said %d", n, len(bs))
	}
	skipped, err := TemplateMUS.Skip(bs)
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if skipped != n {
		t.Fatalf("Skip consumed %d bytes, want %d", skipped, n)
	}
	if _, err := TemplateMUS.Skip(bs[:n-1]); err == nil {
		t.Fatal("expected error skipping truncated data")
	}
}

func TestAnswerMemoMUS_Skip(t *testing.T) {
	memo := AnswerMemo{AnswerID: -3, Text: "note", ModifiedAt: time.Unix(0, 0).UTC()}

	bs := make([]byte, AnswerMemoMUS.Size(memo))
	n := AnswerMemoMUS.Marshal(memo, bs)
	skipped, err := AnswerMemoMUS.Skip(bs)
	if err != nil || skipped != n {
		t.Fatalf("Skip = (%d, %v), want (%d, nil)", skipped, err, n)
	}
}

func TestTemplateMUS_MicrosecondTimestamps(t *testing.T) {
	created := time.Date(2026, 5, 4, 10, 11, 12, 123456789, time.UTC)
	tpl := Template{ID: 1, Title: "t", Text: "x", CreatedAt: created, ModifiedAt: created}

	bs := make([]byte, TemplateMUS.Size(tpl))
	TemplateMUS.Marshal(tpl, bs)
	got, n, err := TemplateMUS.Unmarshal(bs)
	if err != nil || n != len(bs) {
		t.Fatalf("Unmarshal = (%d, %v), want (%d, nil)", n, err, len(bs))
	}
	want := created.Truncate(time.Microsecond)
	if !got.CreatedAt.Equal(want) || !got.ModifiedAt.Equal(want) {
		t.Fatalf("timestamps = %v / %v, want %v", got.CreatedAt, got.ModifiedAt, want)
	}
	if got.ID != 1 || got.Title != "t" || got.Text != "x" || got.Memo != "" {
		t.Fatalf("unexpected fields: %+v", got)
	}
}
