package domain

// OrderLine represents a line item in an order. Price is the unit price of
// the book captured at order creation; later catalog price changes do not
// affect it. Each book appears at most once per order.
type OrderLine struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the total price for this line item.
func (l *OrderLine) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}
