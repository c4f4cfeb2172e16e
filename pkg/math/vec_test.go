package math

import (
	"testing"
)

func TestVec3IsZero(t *testing.T) {
	tests := []struct {
		v    Vec3
		want bool
	}{
		{Vec3{}, true},
		{Vec3{0, 0, 1e-9}, false},
		{Vec3{-1, 0, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsZero(); got != tt.want {
			t.Errorf("%v.IsZero() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec3Array(t *testing.T) {
	v := Vec3{1, 2, 3}
	if got := v.Array(); got != [3]float64{1, 2, 3} {
		t.Errorf("Vec3.Array() = %v", got)
	}
	if got := Vec3FromArray(v.Array()); got != v {
		t.Errorf("Vec3FromArray(Array()) = %v, want %v", got, v)
	}
}
