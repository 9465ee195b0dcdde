package domain

// Product is a catalog entry. Orders never reference these rows directly;
// checkout snapshots the fields it needs into LineItems.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Image       string
}
