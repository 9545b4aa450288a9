package util

import (
	"reflect"
	"testing"

	"github.com/antzucaro/matchr"
)

func TestMismatches(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   []int
	}{
		{"", "", nil},
		{"ACGT", "ACGT", nil},
		{"AAAA", "AAAT", []int{3}},
		{"AATT", "AAAA", []int{2, 3}},
		{"ATAT", "AAAA", []int{1, 3}},
		// N is compared literally.
		{"NNAC", "GTAC", []int{0, 1}},
		{"GAGTGGCAG", "CAGTGGAAC", []int{0, 6, 8}},
	}
	for _, test := range tests {
		got := Mismatches(test.s1, test.s2)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Mismatches(%q, %q): got %v, want %v", test.s1, test.s2, got, test.want)
		}
		// Cross-check the distance against an independent implementation.
		want, err := matchr.Hamming(test.s1, test.s2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != want {
			t.Errorf("Mismatches(%q, %q): got %d positions, matchr distance %d", test.s1, test.s2, len(got), want)
		}
	}
}

func TestMismatchesUnequalLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unequal lengths")
		}
	}()
	Mismatches("AAA", "AAAA")
}

func TestWindow(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       string
	}{
		{"ACGTACGT", 2, 5, "GTA"},
		{"ACGTACGT", 0, 8, "ACGTACGT"},
		{"ACGT", 2, 10, "GT"},
		{"ACGT", 6, 10, ""},
		{"", 0, 3, ""},
		{"ACGT", -1, 2, "AC"},
	}
	for _, test := range tests {
		if got := Window(test.s, test.start, test.end); got != test.want {
			t.Errorf("Window(%q, %d, %d): got %q, want %q", test.s, test.start, test.end, got, test.want)
		}
	}
}
