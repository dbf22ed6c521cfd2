package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail indicates an account already exists for the email.
	ErrDuplicateEmail = errors.New("account already exists for email")
	// ErrDuplicateClassCode indicates a class already exists for the code.
	ErrDuplicateClassCode = errors.New("class already exists for code")
	// ErrAccountNotFound is returned when an account cannot be located.
	ErrAccountNotFound = errors.New("account not found")
	// ErrClassNotFound is returned when a class cannot be located by code.
	ErrClassNotFound = errors.New("class not found")
	// ErrInvalidCredentials is returned for any failed login, regardless of
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyEnrolled indicates the account already holds a seat in the class.
	ErrAlreadyEnrolled = errors.New("already enrolled in class")
	// ErrClassFull indicates the class has no slots available.
	ErrClassFull = errors.New("class is full")
	// ErrIncorrectPassword indicates the supplied old password did not match.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrPasswordMismatch indicates the two new-password entries differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Repository captures persistence operations for accounts, classes and
// enrollments.
type Repository interface {
	CreateAccount(ctx context.Context, account Account) error
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id string) (*Account, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error

	CreateClass(ctx context.Context, class Class) error
	ClassByCode(ctx context.Context, code string) (*Class, error)
	ClassesByCategory(ctx context.Context, category string) ([]Class, error)

	// Enroll records the enrollment and decrements the class's slot counter in
	// a single transaction. It returns ErrAlreadyEnrolled when a row for the
	// pair exists and ErrClassFull when no slots remain.
	Enroll(ctx context.Context, accountID, classID string, enrolledAt time.Time) error
	EnrolledClasses(ctx context.Context, accountID string) ([]Class, error)
}

// Service orchestrates enrollment workflows.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService constructs a Service. A bcryptCost of zero selects the library
// default.
func NewService(repo Repository, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// SignUpInput captures the registration payload from the API layer.
type SignUpInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	Gender        string
	PaymentMethod string
}

// SignUp creates a new account with a hashed credential. The email is checked
// before insertion; the storage layer's unique index still backstops the race.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*Account, error) {
	existing, err := s.repo.AccountByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		ID:            uuid.NewString(),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		PasswordHash:  string(hash),
		Gender:        input.Gender,
		PaymentMethod: input.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Authenticate verifies the claimed credential. Both an unknown email and a
// wrong password collapse into ErrInvalidCredentials so the response does not
// reveal which field was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.AccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// AccountByID fetches an account for display.
func (s *Service) AccountByID(ctx context.Context, id string) (*Account, error) {
	account, err := s.repo.AccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Enroll places the account into the class identified by code. The first
// successful call creates exactly one enrollment and frees up exactly one
// slot; repeats return ErrAlreadyEnrolled without mutating state.
func (s *Service) Enroll(ctx context.Context, accountID, code string) (*Class, error) {
	class, err := s.repo.ClassByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	if err := s.repo.Enroll(ctx, accountID, class.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return class, nil
}

// EnrollmentSummary lists the classes the account occupies and the summed
// price across them.
type EnrollmentSummary struct {
	Classes []Class
	Total   int
}

// Summary computes the enrollment summary for an account. A total of zero
// with an empty class list means "none enrolled", not a free schedule.
func (s *Service) Summary(ctx context.Context, accountID string) (*EnrollmentSummary, error) {
	classes, err := s.repo.EnrolledClasses(ctx, accountID)
	if err != nil {
		return nil, err
	}
	summary := &EnrollmentSummary{Classes: classes}
	for _, class := range classes {
		summary.Total += class.Price
	}
	return summary, nil
}

// ChangePassword overwrites the stored credential after verifying the old one
// and the confirmation entry. Any failed check leaves the credential intact.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword, confirmPassword string) error {
	account, err := s.repo.AccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrIncorrectPassword
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, accountID, string(hash))
}

// AddClassInput captures the payload for administrative class creation.
type AddClassInput struct {
	Code           string
	Category       string
	Name           string
	Instructor     string
	Time           string
	Price          int
	SlotsAvailable int
}

// AddClass creates a new class offering.
func (s *Service) AddClass(ctx context.Context, input AddClassInput) (*Class, error) {
	existing, err := s.repo.ClassByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateClassCode
	}

	class := Class{
		ID:             uuid.NewString(),
		Code:           input.Code,
		Category:       input.Category,
		Name:           input.Name,
		Instructor:     input.Instructor,
		Time:           input.Time,
		Price:          input.Price,
		SlotsAvailable: input.SlotsAvailable,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	return &class, nil
}

// ClassesByCategory lists classes in a category, in storage order.
func (s *Service) ClassesByCategory(ctx context.Context, category string) ([]Class, error) {
	return s.repo.ClassesByCategory(ctx, category)
}
