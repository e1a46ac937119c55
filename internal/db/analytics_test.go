package db

import "testing"

func TestEfficiencyScore(t *testing.T) {
	tests := []struct {
		wait float64
		want float64
	}{
		{0, 5},
		{15, 5},
		{15.1, 4},
		{30, 4},
		{45, 3},
		{60, 3},
		{90, 2},
		{120, 2},
		{121, 1},
		{300, 1},
	}
	for _, tt := range tests {
		if got := EfficiencyScore(tt.wait); got != tt.want {
			t.Errorf("EfficiencyScore(%v) = %v, want %v", tt.wait, got, tt.want)
		}
	}
}

func TestIntegrityScore(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{0, 5},
		{0.1, 4},
		{5, 4},
		{10, 3},
		{15, 3},
		{20, 2},
		{30, 2},
		{31, 1},
		{100, 1},
	}
	for _, tt := range tests {
		if got := IntegrityScore(tt.rate); got != tt.want {
			t.Errorf("IntegrityScore(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestRounding(t *testing.T) {
	if got := round1(33.333); got != 33.3 {
		t.Errorf("round1(33.333) = %v", got)
	}
	if got := round1(66.666); got != 66.7 {
		t.Errorf("round1(66.666) = %v", got)
	}
	if got := round2(4.666666); got != 4.67 {
		t.Errorf("round2(4.666666) = %v", got)
	}
	if got := round2(1.234); got != 1.23 {
		t.Errorf("round2(1.234) = %v", got)
	}
}
