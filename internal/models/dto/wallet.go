package dto

type DepositRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type WithdrawRequest struct {
	Amount   float64 `json:"amount"`
	BankName string  `json:"bank_name"`
}

type PurchaseRequest struct {
	PropertyID int64 `json:"property_id"`
	Tokens     int64 `json:"tokens"`
}
