package domain

// User is a customer account. HashedPassword is opaque to the booking core;
// Balance is in whole currency units and only ever decreases, by payment.
type User struct {
	Username       string
	HashedPassword []byte
	Balance        int
}
