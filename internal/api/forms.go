package api

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"example.com/fitclass/internal/domain"
)

// FieldErrors maps form field names to validation messages. Validation runs
// before any store access; a non-empty map rejects the submission.
type FieldErrors map[string]string

func (e FieldErrors) add(field, message string) {
	if _, taken := e[field]; !taken {
		e[field] = message
	}
}

func requireLength(errs FieldErrors, field, value string, min, max int) {
	switch {
	case value == "":
		errs.add(field, "This field is required.")
	case len(value) < min:
		errs.add(field, "Field must be at least "+strconv.Itoa(min)+" characters long.")
	case max > 0 && len(value) > max:
		errs.add(field, "Field cannot be longer than "+strconv.Itoa(max)+" characters.")
	}
}

func requireEmail(errs FieldErrors, field, value string, max int) {
	requireLength(errs, field, value, 1, max)
	if _, taken := errs[field]; taken {
		return
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		errs.add(field, "Invalid Email")
	}
}

func requireChoice(errs FieldErrors, field, value string, choices ...string) {
	for _, choice := range choices {
		if value == choice {
			return
		}
	}
	errs.add(field, "Not a valid choice.")
}

// LoginForm carries the credentials submitted to POST /login.
type LoginForm struct {
	Email    string
	Password string
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

// Validate checks the login field rules.
func (f LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	requireEmail(errs, "email", f.Email, 50)
	requireLength(errs, "password", f.Password, 5, 80)
	return errs
}

// SignupForm carries the registration payload submitted to POST /signup.
type SignupForm struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	Gender        string
	PaymentMethod string
}

func parseSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		FirstName:     strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:      strings.TrimSpace(r.PostFormValue("last_name")),
		Email:         strings.TrimSpace(r.PostFormValue("email")),
		Password:      r.PostFormValue("password"),
		Gender:        r.PostFormValue("gender"),
		PaymentMethod: r.PostFormValue("payment_method"),
	}
}

// Validate checks the signup field rules.
func (f SignupForm) Validate() FieldErrors {
	errs := FieldErrors{}
	requireLength(errs, "first_name", f.FirstName, 3, 20)
	requireLength(errs, "last_name", f.LastName, 2, 20)
	requireEmail(errs, "email", f.Email, 40)
	requireLength(errs, "password", f.Password, 5, 80)
	requireChoice(errs, "gender", f.Gender, domain.GenderMale, domain.GenderFemale)
	requireChoice(errs, "payment_method", f.PaymentMethod, domain.PaymentCreditCard, domain.PaymentCash)
	return errs
}

// ChangePasswordForm carries the payload submitted to POST /changepassword.
type ChangePasswordForm struct {
	OldPassword  string
	NewPassword1 string
	NewPassword2 string
}

func parseChangePasswordForm(r *http.Request) ChangePasswordForm {
	return ChangePasswordForm{
		OldPassword:  r.PostFormValue("old_password"),
		NewPassword1: r.PostFormValue("new_password1"),
		NewPassword2: r.PostFormValue("new_password2"),
	}
}

// Validate checks the password-change field rules.
func (f ChangePasswordForm) Validate() FieldErrors {
	errs := FieldErrors{}
	requireLength(errs, "old_password", f.OldPassword, 5, 80)
	requireLength(errs, "new_password1", f.NewPassword1, 5, 80)
	requireLength(errs, "new_password2", f.NewPassword2, 5, 80)
	return errs
}

// AddClassForm carries the payload submitted to POST /adminclasses.
type AddClassForm struct {
	Code           string
	Category       string
	Name           string
	Instructor     string
	Time           string
	Price          string
	SlotsAvailable string
}

func parseAddClassForm(r *http.Request) AddClassForm {
	return AddClassForm{
		Code:           strings.TrimSpace(r.PostFormValue("class_code")),
		Category:       strings.TrimSpace(r.PostFormValue("class_category")),
		Name:           strings.TrimSpace(r.PostFormValue("class_name")),
		Instructor:     strings.TrimSpace(r.PostFormValue("instructor")),
		Time:           strings.TrimSpace(r.PostFormValue("class_time")),
		Price:          strings.TrimSpace(r.PostFormValue("price")),
		SlotsAvailable: strings.TrimSpace(r.PostFormValue("slots_available")),
	}
}

// Validate checks the class-creation field rules.
func (f AddClassForm) Validate() FieldErrors {
	errs := FieldErrors{}
	requireLength(errs, "class_code", f.Code, 1, 10)
	requireLength(errs, "class_category", f.Category, 5, 50)
	requireLength(errs, "class_name", f.Name, 5, 50)
	requireLength(errs, "instructor", f.Instructor, 5, 50)
	requireLength(errs, "class_time", f.Time, 5, 50)

	if price, err := strconv.Atoi(f.Price); err != nil {
		errs.add("price", "Not a valid integer value.")
	} else if price < 0 {
		errs.add("price", "Price must not be negative.")
	}

	if slots, err := strconv.Atoi(f.SlotsAvailable); err != nil {
		errs.add("slots_available", "Not a valid integer value.")
	} else if slots > 20 {
		errs.add("slots_available", "Slots available cannot exceed 20.")
	}
	return errs
}

// Input converts a validated form into the domain payload.
func (f AddClassForm) Input() domain.AddClassInput {
	price, _ := strconv.Atoi(f.Price)
	slots, _ := strconv.Atoi(f.SlotsAvailable)
	return domain.AddClassInput{
		Code:           f.Code,
		Category:       f.Category,
		Name:           f.Name,
		Instructor:     f.Instructor,
		Time:           f.Time,
		Price:          price,
		SlotsAvailable: slots,
	}
}
