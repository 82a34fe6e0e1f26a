package fixedwidth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodePairs(t *testing.T) {
	rec := Record{
		Skip:   8,
		Fields: Span(1, 2, Column{4, 1000, 0}, Column{4, 10, 1}),
	}
	line := "2023    " + " 9871234" + "1002  -5"

	a := make([]float64, 4)
	b := make([]float64, 4)
	if err := rec.Decode(line, a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 0.987, 1.002, 0}, a); diff != "" {
		t.Errorf("first array (-want,+got): %s", diff)
	}
	if diff := cmp.Diff([]float64{0, 123.4, -0.5, 0}, b); diff != "" {
		t.Errorf("second array (-want,+got): %s", diff)
	}
	if got, want := rec.Width(), 24; got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
}

func TestDecodeLeavesDestinationOnError(t *testing.T) {
	rec := Record{Fields: Span(0, 2, Column{3, 1, 0})}
	dst := []float64{7, 7, 7}

	err := rec.Decode("  1  2", dst)
	var colErr *ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("got %v, want a ColumnError", err)
	}
	if diff := cmp.Diff([]float64{7, 7, 7}, dst); diff != "" {
		t.Errorf("destination changed (-want,+got): %s", diff)
	}
}

func TestInt(t *testing.T) {
	table := []struct {
		line         string
		start, width int
		want         int
		wantErr      bool
	}{
		{line: "123456", start: 0, width: 3, want: 123},
		{line: " 12 ", start: 0, width: 4, want: 12},
		{line: "  -7", start: 0, width: 4, want: -7},
		{line: "12", start: 0, width: 4, wantErr: true},
		{line: "  -5", start: 0, width: 6, wantErr: true}, // short datum line
		{line: "    ", start: 0, width: 4, wantErr: true},
		{line: "12x4", start: 0, width: 4, wantErr: true},
	}
	for _, tc := range table {
		t.Run(fmt.Sprintf("%q[%d:%d]", tc.line, tc.start, tc.start+tc.width), func(t *testing.T) {
			got, err := Int(tc.line, tc.start, tc.width)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func ExampleSpan() {
	for _, f := range Span(35, 36, Column{5, 1000, 0}, Column{4, 10, 1}) {
		fmt.Println(f.Index, f.Width, f.Dest)
	}
	// Output:
	// 35 5 0
	// 35 4 1
	// 36 5 0
	// 36 4 1
}
