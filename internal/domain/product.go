package domain

// Product is immutable once created; there are no update or delete paths.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type NewProduct struct {
	Name  string
	Price float64
	Stock int
}
