package domain

import "time"

// Category is an engineering specialty tickets are routed by.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Customer is the party a ticket is opened for.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
