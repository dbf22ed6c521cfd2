// Package domain defines the business logic for the class enrollment service.
package domain

import "time"

// Gender values accepted at signup.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Payment methods accepted at signup. The method is stored with the account
// but never charged.
const (
	PaymentCreditCard = "credit card"
	PaymentCash       = "cash"
)

// Account is a registered member capable of authenticating and enrolling in
// classes. The ID is server-generated and immutable; only the password hash
// changes after creation.
type Account struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	PasswordHash  string
	Gender        string
	PaymentMethod string
	CreatedAt     time.Time
}

// Enrollment records that an account occupies a seat in a class. At most one
// row exists per (account, class) pair.
type Enrollment struct {
	AccountID  string
	ClassID    string
	EnrolledAt time.Time
}
