package feedback

import "time"

// Feedback is a product review. Writing one requires a paid order that
// contains the product; a customer may review the same product more than
// once.
type Feedback struct {
	ID         uint      `json:"id"`
	CustomerID uint      `json:"customer_id"`
	ProductID  uint      `json:"product_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateFeedbackInput struct {
	ProductID uint
	Rating    int
	Comment   string
}
