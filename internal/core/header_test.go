package core

import (
	"errors"
	"testing"
)

func TestLocateHeader(t *testing.T) {
	keywords := []string{"tag", "manufacturer"}

	tests := []struct {
		name    string
		rows    [][]Value
		maxRows int
		want    int
		wantErr bool
	}{
		{
			name:    "first row",
			rows:    [][]Value{strs("Tag", "Model")},
			maxRows: 10,
			want:    1,
		},
		{
			name:    "below title rows",
			rows:    [][]Value{strs("Schedule"), strs(), strs("Item", "Instrument Tag")},
			maxRows: 10,
			want:    3,
		},
		{
			name:    "case-insensitive substring",
			rows:    [][]Value{strs("x"), strs("MANUFACTURER / MODEL")},
			maxRows: 10,
			want:    2,
		},
		{
			name:    "smallest qualifying row wins",
			rows:    [][]Value{strs("x"), strs("Tag"), strs("Tag")},
			maxRows: 10,
			want:    2,
		},
		{
			name:    "outside scan window",
			rows:    [][]Value{strs("x"), strs("y"), strs("Tag")},
			maxRows: 2,
			wantErr: true,
		},
		{
			name:    "numbers are matched on display text",
			rows:    [][]Value{{Number("1")}, {Empty, String("tag")}},
			maxRows: 10,
			want:    2,
		},
		{
			name:    "empty sheet",
			rows:    nil,
			maxRows: 10,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocateHeader(tt.rows, tt.maxRows, keywords)
			if tt.wantErr {
				if !errors.Is(err, ErrHeaderNotFound) {
					t.Fatalf("LocateHeader() error = %v, want ErrHeaderNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocateHeader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LocateHeader() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeaderLocator_Fallback(t *testing.T) {
	l := HeaderLocator{MaxRows: 3, Keywords: []string{"tag"}}
	rows := [][]Value{strs("a"), strs("b"), strs("c"), strs("d"), strs("e"), strs("Tag")}

	row, used, err := l.Locate(rows, 6)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if row != 6 || !used {
		t.Errorf("Locate() = (%d, %v), want (6, true)", row, used)
	}

	// Fallback is not checked against the keywords.
	row, used, err = l.Locate(rows, 2)
	if err != nil || row != 2 || !used {
		t.Errorf("Locate() = (%d, %v, %v), want (2, true, nil)", row, used, err)
	}

	_, _, err = l.Locate(rows, 0)
	var hnf *HeaderNotFoundError
	if !errors.As(err, &hnf) {
		t.Fatalf("Locate() without fallback error = %v, want *HeaderNotFoundError", err)
	}
	if hnf.ScannedRows != 3 {
		t.Errorf("ScannedRows = %d, want 3", hnf.ScannedRows)
	}
}

func TestHeaderLocator_DetectedIgnoresFallback(t *testing.T) {
	l := HeaderLocator{Keywords: []string{"tag"}}
	row, used, err := l.Locate([][]Value{strs("x"), strs("tag")}, 9)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if row != 2 || used {
		t.Errorf("Locate() = (%d, %v), want (2, false)", row, used)
	}
}
