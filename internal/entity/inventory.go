package entity

import "time"

// Delta policies for the inventory ledger. When a decrement clamps at
// zero the requested and applied deltas diverge; the policy decides
// which one the audit row records.
const (
	DeltaPolicyRequested = "requested"
	DeltaPolicyApplied   = "applied"
)

// InventoryHistoryEntry is one append-only audit row documenting a
// stock mutation. Rows are never updated or deleted.
type InventoryHistoryEntry struct {
	ID             int       `json:"id"`
	MenuItemID     int       `json:"menu_item_id"`
	QuantityChange int       `json:"quantity_change"`
	Reason         string    `json:"reason"`
	PreviousStock  int       `json:"previous_stock"`
	NewStock       int       `json:"new_stock"`
	UserID         int       `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	MenuItemName   string    `json:"menu_item_name,omitempty"`
	UserName       string    `json:"user_name,omitempty"`
}
