package entity

import "time"

const (
	OrderStatusPending    = "pending"
	OrderStatusPreparing  = "preparing"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

const (
	DefaultOrderStatus   = OrderStatusPending
	DefaultPaymentMethod = "cash"
)

// ValidOrderStatus reports whether s is one of the order lifecycle
// statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// Order is an order header plus its line items.
// OrderID is the human-facing display identifier (e.g. "#ORD-5182"),
// distinct from the surrogate ID assigned by the store.
type Order struct {
	ID            int         `json:"id"`
	OrderID       string      `json:"order_id"`
	TableID       int         `json:"table_id"`
	StaffID       int         `json:"staff_id"`
	Status        string      `json:"status"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	Tip           float64     `json:"tip"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	Paid          bool        `json:"paid"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `json:"items,omitempty"`

	// Joined display fields, populated by list queries only.
	TableName string `json:"table_name,omitempty"`
	StaffName string `json:"staff_name,omitempty"`
}

// OrderItem is one ordered quantity of a menu item. Price is a snapshot
// taken at order time; later menu price changes never alter it.
type OrderItem struct {
	ID           int     `json:"id"`
	OrderID      int     `json:"order_id"`
	MenuItemID   int     `json:"menu_item_id"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Notes        string  `json:"notes"`
	Subtotal     float64 `json:"subtotal"`
	MenuItemName string  `json:"menu_item_name,omitempty"`
}

// OrderRequest is the payload for creating an order. Item prices are
// resolved from the menu at transaction time, never trusted from the caller.
type OrderRequest struct {
	TableID       int                `json:"table_id"`
	StaffID       int                `json:"staff_id"`
	Items         []OrderItemRequest `json:"items"`
	TaxRate       *float64           `json:"tax_rate"`
	Tip           float64            `json:"tip"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	IdempotentKey string             `json:"-"`
	ActorID       int                `json:"-"`
}

type OrderItemRequest struct {
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

// OrderUpdate carries the restricted set of mutable order fields.
// Total is never settable directly; a tip change recomputes it.
type OrderUpdate struct {
	Status        *string  `json:"status"`
	PaymentMethod *string  `json:"payment_method"`
	Tip           *float64 `json:"tip"`
	Paid          *bool    `json:"paid"`
}

// IsEmpty reports whether the update would change nothing.
func (u OrderUpdate) IsEmpty() bool {
	return u.Status == nil && u.PaymentMethod == nil && u.Tip == nil && u.Paid == nil
}

// OrderDetails is the read-only order aggregate returned to callers.
type OrderDetails struct {
	Order
	Table *Table `json:"table,omitempty"`
	Staff *Staff `json:"staff,omitempty"`
}

// OrderStats aggregates report counters over the orders table.
type OrderStats struct {
	TotalOrders     int     `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingOrders   int     `json:"pending_orders"`
	CompletedOrders int     `json:"completed_orders"`
	DailyRevenue    float64 `json:"daily_revenue,omitempty"`
}
