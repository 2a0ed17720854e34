package entity

// Staff is a staff member referenced by orders. Only existence checks
// are needed here; staff management lives elsewhere.
type Staff struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}
