package detection

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(start, end string) DateRange {
	return DateRange{Start: day(start), End: day(end)}
}

func TestAllocateDateRanges_NoExclusions(t *testing.T) {
	got := AllocateDateRanges(rng("2024-01-01", "2024-01-10"), nil)

	if len(got) != 1 {
		t.Fatalf("expected 1 range, got %d", len(got))
	}
	if got[0] != rng("2024-01-01", "2024-01-10") {
		t.Errorf("expected full span, got %s", got[0])
	}
}

func TestAllocateDateRanges_SubtractsExcluded(t *testing.T) {
	full := rng("2024-01-01", "2024-01-10")
	excluded := []DateRange{
		rng("2024-01-03", "2024-01-05"),
		rng("2024-01-08", "2024-01-09"),
	}

	got := AllocateDateRanges(full, excluded)

	want := []DateRange{
		rng("2024-01-01", "2024-01-02"),
		rng("2024-01-06", "2024-01-07"),
		rng("2024-01-10", "2024-01-10"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d ranges, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAllocateDateRanges_FullyExcluded(t *testing.T) {
	full := rng("2024-01-03", "2024-01-05")
	excluded := []DateRange{rng("2024-01-01", "2024-01-31")}

	got := AllocateDateRanges(full, excluded)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestAllocateDateRanges_OverlappingExclusions(t *testing.T) {
	full := rng("2024-01-01", "2024-01-10")
	excluded := []DateRange{
		rng("2024-01-02", "2024-01-06"),
		rng("2024-01-04", "2024-01-05"), // nested inside the previous one
		rng("2024-01-05", "2024-01-07"),
	}

	got := AllocateDateRanges(full, excluded)

	want := []DateRange{
		rng("2024-01-01", "2024-01-01"),
		rng("2024-01-08", "2024-01-10"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d ranges, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAllocateDateRanges_UnsortedExclusions(t *testing.T) {
	full := rng("2024-01-01", "2024-01-10")
	excluded := []DateRange{
		rng("2024-01-08", "2024-01-09"),
		rng("2024-01-03", "2024-01-05"),
	}

	got := AllocateDateRanges(full, excluded)
	if len(got) != 3 {
		t.Fatalf("expected 3 ranges, got %d: %v", len(got), got)
	}
	if got[0] != rng("2024-01-01", "2024-01-02") {
		t.Errorf("unexpected first range %s", got[0])
	}
}

func TestDateRange_Days(t *testing.T) {
	if d := rng("2024-01-01", "2024-01-01").Days(); d != 1 {
		t.Errorf("expected 1 day, got %d", d)
	}
	if d := rng("2024-01-01", "2024-01-03").Days(); d != 3 {
		t.Errorf("expected 3 days, got %d", d)
	}
}

func TestDateOf(t *testing.T) {
	at := time.Date(2024, 3, 15, 23, 45, 0, 0, time.UTC)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := DateOf(at); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
