package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRowIterator(t *testing.T) {
	rows := scheduleRows()
	// header at row 3; key column 1 (Tag), identifier column 0 (No.)
	it := NewRowIterator(rows, 3, 1, 0)

	if got := it.Remaining(); got != 4 {
		t.Fatalf("Remaining() = %d, want 4", got)
	}

	type verdict struct {
		Row  int
		Skip SkipReason
	}
	var got []verdict
	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, verdict{step.Row, step.Skip})
	}

	want := []verdict{
		{4, SkipNone},
		{5, SkipBlankIdentifier},
		{6, SkipDuplicate},
		{7, SkipNone},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("verdicts mismatch (-want +got):\n%s", diff)
	}
	if it.Remaining() != 0 {
		t.Errorf("Remaining() after drain = %d, want 0", it.Remaining())
	}
}

func TestRowIterator_Verdicts(t *testing.T) {
	tests := []struct {
		name string
		rows [][]Value
		want []SkipReason
	}{
		{
			name: "missing key cell",
			rows: [][]Value{{Number("1"), Empty}},
			want: []SkipReason{SkipMissingKey},
		},
		{
			name: "short row has no key",
			rows: [][]Value{{Number("1")}},
			want: []SkipReason{SkipMissingKey},
		},
		{
			name: "zero identifier is blank",
			rows: [][]Value{{Number("0"), String("T-1")}},
			want: []SkipReason{SkipBlankIdentifier},
		},
		{
			name: "empty-string key still counts as present",
			rows: [][]Value{{Number("1"), String("")}},
			want: []SkipReason{SkipNone},
		},
		{
			name: "identity is kind and text",
			rows: [][]Value{
				{Number("1"), String("A")},
				{String("1"), String("B")},
				{Number("1"), String("C")},
			},
			want: []SkipReason{SkipNone, SkipNone, SkipDuplicate},
		},
		{
			name: "blank rows do not poison later rows",
			rows: [][]Value{
				{Empty, String("A")},
				{Number("7"), String("B")},
			},
			want: []SkipReason{SkipBlankIdentifier, SkipNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewRowIterator(tt.rows, 0, 1, 0)
			var got []SkipReason
			for {
				step, ok := it.Next()
				if !ok {
					break
				}
				got = append(got, step.Skip)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("verdicts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRowIterator_Accepted(t *testing.T) {
	accepted := NewRowIterator(scheduleRows(), 3, 1, 0).Accepted()
	if len(accepted) != 2 {
		t.Fatalf("Accepted() = %d rows, want 2", len(accepted))
	}
	if accepted[0].Cells[1] != String("TT-100") || accepted[1].Cells[1] != String("PT-200") {
		t.Errorf("Accepted() kept the wrong rows: %v, %v", accepted[0].Cells, accepted[1].Cells)
	}

	// A fresh iterator has a fresh seen set.
	again := NewRowIterator(scheduleRows(), 3, 1, 0).Accepted()
	if len(again) != 2 {
		t.Errorf("second iterator accepted %d rows, want 2", len(again))
	}
}

func TestRowIterator_HeaderPastEnd(t *testing.T) {
	it := NewRowIterator(scheduleRows(), 40, 1, 0)
	if it.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", it.Remaining())
	}
	if _, ok := it.Next(); ok {
		t.Error("Next() should report no rows")
	}
}
