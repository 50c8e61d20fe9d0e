package models

// Case is the normalized complaint input the engine and analyzers work on.
type Case struct {
	OrderID         string  `json:"order_id"`
	OrderStatus     string  `json:"order_status"`
	ComplaintText   string  `json:"complaint_text"`
	RefundHistory30 int     `json:"refund_history_30d"`
	HandoffPhoto    bool    `json:"handoff_photo"`
	CourierRating   float64 `json:"courier_rating"`
	OrderValue      float64 `json:"order_value"`
	CustomerID      string  `json:"customer_id"`
	EvidenceCount   int     `json:"evidence_count"`
}

// Field returns a case attribute by its wire name, for policy rule matching.
// Unknown names return (nil, false).
func (c Case) Field(name string) (any, bool) {
	switch name {
	case "order_id":
		return c.OrderID, true
	case "order_status":
		return c.OrderStatus, true
	case "complaint_text":
		return c.ComplaintText, true
	case "refund_history_30d":
		return c.RefundHistory30, true
	case "handoff_photo":
		return c.HandoffPhoto, true
	case "courier_rating":
		return c.CourierRating, true
	case "order_value":
		return c.OrderValue, true
	case "customer_id":
		return c.CustomerID, true
	case "evidence_count":
		return c.EvidenceCount, true
	}
	return nil, false
}
