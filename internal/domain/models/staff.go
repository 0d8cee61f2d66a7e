package models

// Staff is an admin dashboard account. Customers do not have accounts.
type Staff struct {
	ID       int64
	Email    string
	PassHash []byte
}
