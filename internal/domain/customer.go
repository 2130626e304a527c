package domain

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type NewCustomer struct {
	Name  string
	Email string
}

// CustomerExistence is the body of the customers service existence endpoint.
type CustomerExistence struct {
	Exists     bool  `json:"exists"`
	CustomerID int64 `json:"customer_id"`
}
