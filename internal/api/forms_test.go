package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupFormBoundaries(t *testing.T) {
	valid := SignupForm{
		FirstName:     "Ada",
		LastName:      "Lo",
		Email:         "ada@example.com",
		Password:      "five5",
		Gender:        "female",
		PaymentMethod: "cash",
	}
	require.Empty(t, valid.Validate())

	short := valid
	short.FirstName = "Al"
	require.Contains(t, short.Validate(), "first_name")

	long := valid
	long.Email = "a-very-long-local-part-over-forty@example.com"
	require.Contains(t, long.Validate(), "email")

	badPassword := valid
	badPassword.Password = "four"
	require.Contains(t, badPassword.Validate(), "password")

	missing := SignupForm{}
	errs := missing.Validate()
	for _, field := range []string{"first_name", "last_name", "email", "password", "gender", "payment_method"} {
		require.Contains(t, errs, field)
	}
}

func TestLoginFormRejectsBadEmailSyntax(t *testing.T) {
	form := LoginForm{Email: "not an email", Password: "five5"}
	require.Contains(t, form.Validate(), "email")

	form.Email = "ada@example.com"
	require.Empty(t, form.Validate())
}

func TestAddClassFormRules(t *testing.T) {
	valid := AddClassForm{
		Code:           "ROW1",
		Category:       "Rowing",
		Name:           "Rowing Basics",
		Instructor:     "Coach Holm",
		Time:           "Mon 18:00",
		Price:          "100",
		SlotsAvailable: "20",
	}
	require.Empty(t, valid.Validate())

	got := valid
	got.Code = "ELEVENCHARS"
	require.Contains(t, got.Validate(), "class_code")

	got = valid
	got.Price = "-1"
	require.Contains(t, got.Validate(), "price")

	got = valid
	got.Price = "abc"
	require.Contains(t, got.Validate(), "price")

	got = valid
	got.SlotsAvailable = "21"
	require.Contains(t, got.Validate(), "slots_available")

	// No floor on slots: zero and negative pass validation, the enrollment
	// capacity guard handles them.
	got = valid
	got.SlotsAvailable = "0"
	require.Empty(t, got.Validate())

	input := valid.Input()
	require.Equal(t, 100, input.Price)
	require.Equal(t, 20, input.SlotsAvailable)
}

func TestChangePasswordFormLengths(t *testing.T) {
	form := ChangePasswordForm{OldPassword: "five5", NewPassword1: "six666", NewPassword2: "six666"}
	require.Empty(t, form.Validate())

	form.NewPassword1 = "four"
	require.Contains(t, form.Validate(), "new_password1")
}
