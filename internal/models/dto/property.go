package dto

type CreatePropertyRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	PropertyType string  `json:"property_type"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
	Country      string  `json:"country"`
	TotalValue   float64 `json:"total_value"`
	TotalTokens  int64   `json:"total_tokens"`
	MonthlyRent  float64 `json:"monthly_rent"`
}

// UpdatePropertyRequest carries the editable subset. Nil fields are left
// untouched.
type UpdatePropertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	ZipCode     *string  `json:"zip_code"`
	Country     *string  `json:"country"`
	TotalValue  *float64 `json:"total_value"`
	TotalTokens *int64   `json:"total_tokens"`
	MonthlyRent *float64 `json:"monthly_rent"`
}

type RejectPropertyRequest struct {
	Reason string `json:"reason"`
}
