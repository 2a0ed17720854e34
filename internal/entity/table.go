package entity

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
)

// Table is a physical table with an occupancy state machine over
// {available, occupied, reserved}.
type Table struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`

	// Open-order fields, populated by the table board query only.
	OrderID     int    `json:"order_id,omitempty"`
	OrderStatus string `json:"order_status,omitempty"`
}

// tableTransitions maps a target status to the statuses it may be
// entered from. Occupied is entered only on order creation; a table
// with an open order cannot be reserved out from under it.
var tableTransitions = map[string][]string{
	TableStatusOccupied:  {TableStatusAvailable, TableStatusReserved},
	TableStatusAvailable: {TableStatusOccupied, TableStatusReserved},
	TableStatusReserved:  {TableStatusAvailable},
}

// ValidTableStatus reports whether s is one of the closed status set.
func ValidTableStatus(s string) bool {
	switch s {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved:
		return true
	}
	return false
}

// TableTransitionFrom returns the statuses from which a table may
// transition into target. Unknown targets return nil.
func TableTransitionFrom(target string) []string {
	return tableTransitions[target]
}

// CanTransitionTable reports whether from -> to is an allowed
// occupancy transition. Same-state writes are not transitions.
func CanTransitionTable(from, to string) bool {
	for _, s := range tableTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}
