package tasks

import (
	"reflect"
	"testing"
)

func TestDifference(t *testing.T) {
	tests := []struct {
		name   string
		source []string
		target []string
		want   []string
	}{
		{"empty source", nil, []string{"a"}, nil},
		{"empty target", []string{"a", "b"}, nil, []string{"a", "b"}},
		{"disjoint keeps source order", []string{"c", "a", "b"}, []string{"x"}, []string{"c", "a", "b"}},
		{"overlap", []string{"a", "b", "c"}, []string{"b"}, []string{"a", "c"}},
		{"identical", []string{"a", "b"}, []string{"b", "a"}, nil},
		{"duplicates collapse", []string{"a", "b", "a", "b", "c"}, []string{"c"}, []string{"a", "b"}},
		{"case sensitive", []string{"Abc"}, []string{"abc"}, []string{"Abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Difference(tt.source, tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Difference(%v, %v) = %v, want %v", tt.source, tt.target, got, tt.want)
			}
		})
	}

	t.Run("does not modify inputs", func(t *testing.T) {
		source := []string{"a", "b"}
		target := []string{"b"}
		Difference(source, target)
		if !reflect.DeepEqual(source, []string{"a", "b"}) || !reflect.DeepEqual(target, []string{"b"}) {
			t.Error("inputs were modified")
		}
	})
}
