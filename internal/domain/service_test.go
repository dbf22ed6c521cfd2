package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignUpHashesPasswordAndCreatesAccount(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)

	account, err := service.SignUp(context.Background(), SignUpInput{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Password:      "engine1",
		Gender:        GenderFemale,
		PaymentMethod: PaymentCreditCard,
	})
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.NotEqual(t, "engine1", account.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("engine1")))
	require.Len(t, repo.accounts, 1)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)

	input := SignUpInput{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Password:      "engine1",
		Gender:        GenderFemale,
		PaymentMethod: PaymentCash,
	}
	_, err := service.SignUp(context.Background(), input)
	require.NoError(t, err)

	_, err = service.SignUp(context.Background(), input)
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.Len(t, repo.accounts, 1)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)

	created, err := service.SignUp(context.Background(), SignUpInput{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Password:      "engine1",
		Gender:        GenderFemale,
		PaymentMethod: PaymentCash,
	})
	require.NoError(t, err)

	account, err := service.Authenticate(context.Background(), "ada@example.com", "engine1")
	require.NoError(t, err)
	require.Equal(t, created.ID, account.ID)

	_, err = service.Authenticate(context.Background(), "ada@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "nobody@example.com", "engine1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnrollFirstAttemptTakesOneSlot(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)

	account := repo.addAccount(t, "ada@example.com")
	repo.addClass("ROW1", CategoryRowing, 100, 2)

	class, err := service.Enroll(context.Background(), account.ID, "ROW1")
	require.NoError(t, err)
	require.Equal(t, "ROW1", class.Code)
	require.Equal(t, 1, repo.classesByCode["ROW1"].SlotsAvailable)
	require.Len(t, repo.enrollments[account.ID], 1)

	_, err = service.Enroll(context.Background(), account.ID, "ROW1")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.Equal(t, 1, repo.classesByCode["ROW1"].SlotsAvailable)
	require.Len(t, repo.enrollments[account.ID], 1)
}

func TestEnrollUnknownCode(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	account := repo.addAccount(t, "ada@example.com")

	_, err := service.Enroll(context.Background(), account.ID, "NOPE")
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestEnrollRejectsFullClass(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	account := repo.addAccount(t, "ada@example.com")
	repo.addClass("CYC1", CategoryCycling, 80, 0)

	_, err := service.Enroll(context.Background(), account.ID, "CYC1")
	require.ErrorIs(t, err, ErrClassFull)
	require.Empty(t, repo.enrollments[account.ID])
	require.Equal(t, 0, repo.classesByCode["CYC1"].SlotsAvailable)
}

func TestSummaryTotalsPrices(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	account := repo.addAccount(t, "ada@example.com")
	repo.addClass("ROW1", CategoryRowing, 100, 5)
	repo.addClass("STR1", CategoryStrength, 250, 5)

	_, err := service.Enroll(context.Background(), account.ID, "ROW1")
	require.NoError(t, err)
	_, err = service.Enroll(context.Background(), account.ID, "STR1")
	require.NoError(t, err)

	summary, err := service.Summary(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, summary.Classes, 2)
	require.Equal(t, 350, summary.Total)
}

func TestSummaryEmpty(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	account := repo.addAccount(t, "ada@example.com")

	summary, err := service.Summary(context.Background(), account.ID)
	require.NoError(t, err)
	require.Empty(t, summary.Classes)
	require.Zero(t, summary.Total)
}

func TestChangePassword(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	account := repo.addAccount(t, "ada@example.com")
	originalHash := repo.accounts[account.ID].PasswordHash

	err := service.ChangePassword(context.Background(), account.ID, "wrong-old", "newpass1", "newpass1")
	require.ErrorIs(t, err, ErrIncorrectPassword)
	require.Equal(t, originalHash, repo.accounts[account.ID].PasswordHash)

	err = service.ChangePassword(context.Background(), account.ID, "engine1", "newpass1", "newpass2")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	require.Equal(t, originalHash, repo.accounts[account.ID].PasswordHash)

	err = service.ChangePassword(context.Background(), account.ID, "engine1", "newpass1", "newpass1")
	require.NoError(t, err)
	require.NotEqual(t, originalHash, repo.accounts[account.ID].PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.accounts[account.ID].PasswordHash), []byte("newpass1")))
}

func TestAddClass(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)

	input := AddClassInput{
		Code:           "END1",
		Category:       CategoryEndurance,
		Name:           "Endurance Basics",
		Instructor:     "Coach Holm",
		Time:           "Mon 18:00",
		Price:          120,
		SlotsAvailable: 15,
	}
	class, err := service.AddClass(context.Background(), input)
	require.NoError(t, err)
	require.NotEmpty(t, class.ID)
	require.Equal(t, "END1", class.Code)

	_, err = service.AddClass(context.Background(), input)
	require.ErrorIs(t, err, ErrDuplicateClassCode)
}

func TestClassesByCategoryKeepsStorageOrder(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, bcrypt.MinCost)
	repo.addClass("ROW1", CategoryRowing, 100, 5)
	repo.addClass("ROW2", CategoryRowing, 110, 5)
	repo.addClass("CYC1", CategoryCycling, 80, 5)

	classes, err := service.ClassesByCategory(context.Background(), CategoryRowing)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, "ROW1", classes[0].Code)
	require.Equal(t, "ROW2", classes[1].Code)

	empty, err := service.ClassesByCategory(context.Background(), CategoryEndurance)
	require.NoError(t, err)
	require.Empty(t, empty)
}

// memRepo is an in-memory Repository with the same enrollment semantics as
// the Postgres implementation.
type memRepo struct {
	accounts      map[string]Account
	accountsEmail map[string]string
	classesByCode map[string]*Class
	classOrder    []string
	enrollments   map[string]map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		accounts:      make(map[string]Account),
		accountsEmail: make(map[string]string),
		classesByCode: make(map[string]*Class),
		enrollments:   make(map[string]map[string]bool),
	}
}

func (m *memRepo) addAccount(t *testing.T, email string) Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("engine1"), bcrypt.MinCost)
	require.NoError(t, err)
	account := Account{
		ID:            "acct-" + email,
		FirstName:     "ada",
		LastName:      "lovelace",
		Email:         email,
		PasswordHash:  string(hash),
		Gender:        GenderFemale,
		PaymentMethod: PaymentCash,
		CreatedAt:     time.Now().UTC(),
	}
	m.accounts[account.ID] = account
	m.accountsEmail[email] = account.ID
	return account
}

func (m *memRepo) addClass(code, category string, price, slots int) {
	class := &Class{
		ID:             "class-" + code,
		Code:           code,
		Category:       category,
		Name:           code + " class",
		Instructor:     "Coach Holm",
		Time:           "Mon 18:00",
		Price:          price,
		SlotsAvailable: slots,
		CreatedAt:      time.Now().UTC(),
	}
	m.classesByCode[code] = class
	m.classOrder = append(m.classOrder, code)
}

func (m *memRepo) CreateAccount(ctx context.Context, account Account) error {
	if _, taken := m.accountsEmail[account.Email]; taken {
		return ErrDuplicateEmail
	}
	m.accounts[account.ID] = account
	m.accountsEmail[account.Email] = account.ID
	return nil
}

func (m *memRepo) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	id, ok := m.accountsEmail[email]
	if !ok {
		return nil, nil
	}
	account := m.accounts[id]
	return &account, nil
}

func (m *memRepo) AccountByID(ctx context.Context, id string) (*Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (m *memRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	account, ok := m.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	m.accounts[accountID] = account
	return nil
}

func (m *memRepo) CreateClass(ctx context.Context, class Class) error {
	if _, taken := m.classesByCode[class.Code]; taken {
		return ErrDuplicateClassCode
	}
	stored := class
	m.classesByCode[class.Code] = &stored
	m.classOrder = append(m.classOrder, class.Code)
	return nil
}

func (m *memRepo) ClassByCode(ctx context.Context, code string) (*Class, error) {
	class, ok := m.classesByCode[code]
	if !ok {
		return nil, nil
	}
	copied := *class
	return &copied, nil
}

func (m *memRepo) ClassesByCategory(ctx context.Context, category string) ([]Class, error) {
	var classes []Class
	for _, code := range m.classOrder {
		if class := m.classesByCode[code]; class.Category == category {
			classes = append(classes, *class)
		}
	}
	return classes, nil
}

func (m *memRepo) Enroll(ctx context.Context, accountID, classID string, enrolledAt time.Time) error {
	if m.enrollments[accountID][classID] {
		return ErrAlreadyEnrolled
	}
	for _, class := range m.classesByCode {
		if class.ID == classID {
			if class.SlotsAvailable <= 0 {
				return ErrClassFull
			}
			class.SlotsAvailable--
			if m.enrollments[accountID] == nil {
				m.enrollments[accountID] = make(map[string]bool)
			}
			m.enrollments[accountID][classID] = true
			return nil
		}
	}
	return ErrClassNotFound
}

func (m *memRepo) EnrolledClasses(ctx context.Context, accountID string) ([]Class, error) {
	var classes []Class
	for _, code := range m.classOrder {
		class := m.classesByCode[code]
		if m.enrollments[accountID][class.ID] {
			classes = append(classes, *class)
		}
	}
	return classes, nil
}
