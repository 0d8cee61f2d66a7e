package models

// Product is a catalog row. Price and cost here are the live values;
// an order copies them into its items at checkout.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Price       Money  `json:"price"`
	Cost        Money  `json:"-"`
	IsService   bool   `json:"is_service"`
	Active      bool   `json:"active"`
}

// Snapshot returns the frozen classification copy stored on a line item.
func (p *Product) Snapshot() *ProductSnapshot {
	return &ProductSnapshot{
		Title:     p.Title,
		Category:  p.Category,
		IsService: p.IsService,
	}
}
