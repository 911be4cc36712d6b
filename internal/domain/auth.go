package domain

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	ID         string
	Role       Role
	CategoryID *string
}
