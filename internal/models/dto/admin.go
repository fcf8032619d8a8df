package dto

type RentPayoutRequest struct {
	PropertyID int64   `json:"property_id"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	TotalRent  float64 `json:"total_rent"`
	Notes      string  `json:"notes"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}
