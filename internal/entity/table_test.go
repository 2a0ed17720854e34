package entity

import "testing"

func TestCanTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{TableStatusAvailable, TableStatusOccupied, true},
		{TableStatusReserved, TableStatusOccupied, true},
		{TableStatusOccupied, TableStatusAvailable, true},
		{TableStatusReserved, TableStatusAvailable, true},
		{TableStatusAvailable, TableStatusReserved, true},
		{TableStatusOccupied, TableStatusReserved, false},
		{TableStatusOccupied, TableStatusOccupied, false},
		{TableStatusAvailable, TableStatusAvailable, false},
		{"closed", TableStatusOccupied, false},
	}
	for _, tt := range tests {
		if got := CanTransitionTable(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionTable(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderStatusPending, OrderStatusPreparing, OrderStatusInProgress, OrderStatusCompleted} {
		if !ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = false, want true", s)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Error(`ValidOrderStatus("shipped") = true, want false`)
	}
}
