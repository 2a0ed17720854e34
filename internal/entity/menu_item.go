package entity

// MenuItem is the pricing and stock authority for order lines.
// StockQuantity never goes negative; decrements clamp at zero.
type MenuItem struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	CategoryID     int     `json:"category_id"`
	Price          float64 `json:"price"`
	TrackInventory bool    `json:"track_inventory"`
	StockQuantity  int     `json:"stock_quantity"`
	Active         bool    `json:"active"`
}

// StockStatus reports availability for a menu item.
// Quantity is -1 when the item does not track inventory (unlimited).
type StockStatus struct {
	Available bool `json:"available"`
	Quantity  int  `json:"quantity"`
}
