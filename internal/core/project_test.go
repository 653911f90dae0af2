package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProject(t *testing.T) {
	def := testDefinition()
	mapping, _, err := Resolve(strs("No.", "Tag", "Manufacturer", "Model"), def)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		name string
		row  []Value
		want []Entry
	}{
		{
			name: "normalized fields",
			row:  []Value{Number("1"), String("tt-100"), String("rosemount"), String("n/a")},
			want: []Entry{
				{Cell: "A11", Value: String("TT-100")},
				{Cell: "C11", Value: String("ROSEMOUNT")},
				{Cell: "E11", Value: String("N/A")},
				{Cell: "H14", Value: String("N/A")},
				{Cell: "I14", Value: String("N/A")},
			},
		},
		{
			name: "multi-line tag keeps first line",
			row:  []Value{Number("1"), String("T-100\nT-101"), String("x")},
			want: []Entry{
				{Cell: "A11", Value: String("T-100")},
				{Cell: "C11", Value: String("X")},
				{Cell: "E11", Value: String("N/A")},
				{Cell: "H14", Value: String("N/A")},
				{Cell: "I14", Value: String("N/A")},
			},
		},
		{
			name: "numbers pass through",
			row:  []Value{Number("1"), Number("4711"), Empty, Number("3.5")},
			want: []Entry{
				{Cell: "A11", Value: Number("4711")},
				{Cell: "C11", Value: String("N/A")},
				{Cell: "E11", Value: Number("3.5")},
				{Cell: "H14", Value: String("N/A")},
				{Cell: "I14", Value: String("N/A")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Project(tt.row, mapping, def)
			if diff := cmp.Diff(tt.want, rec.Entries); diff != "" {
				t.Errorf("Entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProject_Idempotent(t *testing.T) {
	def := testDefinition()
	mapping, _, _ := Resolve(strs("Tag", "Make"), def)
	row := strs("a\nb", "c")

	first := Project(row, mapping, def)
	second := Project(row, mapping, def)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Project() not deterministic (-first +second):\n%s", diff)
	}
}

func TestFormName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "RV01"},
		{9, "RV09"},
		{10, "RV10"},
		{99, "RV99"},
		{100, "RV100"},
	}
	for _, tt := range tests {
		if got := FormName(tt.n); got != tt.want {
			t.Errorf("FormName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
