// Package api exposes HTTP handlers for the class enrollment service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"unicode"

	"example.com/fitclass/internal/auth"
	"example.com/fitclass/internal/domain"
	"example.com/fitclass/internal/observability"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  *domain.Service
	sessions *auth.Manager
	isAdmin  func(email string) bool
}

// NewHandler builds a Handler. isAdmin decides which account emails receive
// the admin role at login.
func NewHandler(service *domain.Service, sessions *auth.Manager, isAdmin func(email string) bool) *Handler {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Handler{service: service, sessions: sessions, isAdmin: isAdmin}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.index)
	mux.HandleFunc("/contactus1", h.page("contactus1"))
	mux.HandleFunc("/contactus2", h.page("contactus2"))
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/signup", h.signup)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/homepage", h.homepage)
	mux.HandleFunc("/myaccount", h.myAccount)
	mux.HandleFunc("/changepassword", h.changePassword)
	mux.HandleFunc("/enlistclass", h.enlistClass)
	mux.HandleFunc("/enrolledclasses", h.enrolledClasses)
	mux.HandleFunc("/adminclasses", h.adminClasses)
	mux.HandleFunc("/rowingclasses", h.category(domain.CategoryRowing))
	mux.HandleFunc("/cyclingclasses", h.category(domain.CategoryCycling))
	mux.HandleFunc("/strengthclasses", h.category(domain.CategoryStrength))
	mux.HandleFunc("/enduranceclasses", h.category(domain.CategoryEndurance))
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// PageView is the payload a renderer consumes for static pages.
type PageView struct {
	Page  string `json:"page"`
	Flash string `json:"flash,omitempty"`
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "no such page")
		return
	}
	writeJSON(w, http.StatusOK, PageView{Page: "index", Flash: popFlash(w, r)})
}

func (h *Handler) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		writeJSON(w, http.StatusOK, PageView{Page: name, Flash: popFlash(w, r)})
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, PageView{Page: "login", Flash: popFlash(w, r)})
	case http.MethodPost:
		h.submitLogin(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) submitLogin(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	account, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			observability.RecordLogin(false)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password. Please try again.")
			return
		}
		writeServerError(w, err)
		return
	}

	role := auth.RoleMember
	if h.isAdmin(account.Email) {
		role = auth.RoleAdmin
	}
	if err := h.sessions.Issue(w, auth.Claims{
		AccountID: account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		Role:      role,
	}); err != nil {
		writeServerError(w, err)
		return
	}

	observability.RecordLogin(true)
	http.Redirect(w, r, "/homepage", http.StatusSeeOther)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, PageView{Page: "signup", Flash: popFlash(w, r)})
	case http.MethodPost:
		h.submitSignup(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) submitSignup(w http.ResponseWriter, r *http.Request) {
	form := parseSignupForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	_, err := h.service.SignUp(r.Context(), domain.SignUpInput{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Email:         form.Email,
		Password:      form.Password,
		Gender:        form.Gender,
		PaymentMethod: form.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "duplicate_email", "An account with this email already exists.")
			return
		}
		writeServerError(w, err)
		return
	}

	observability.RecordSignup()
	setFlash(w, "Account Created!")
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	h.sessions.Clear(w)
	setFlash(w, "Successfully Logged out!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HomeView greets the authenticated member.
type HomeView struct {
	Page  string `json:"page"`
	Name  string `json:"name"`
	Flash string `json:"flash,omitempty"`
}

func (h *Handler) homepage(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, HomeView{
		Page:  "homepage",
		Name:  titleCase(claims.FirstName),
		Flash: popFlash(w, r),
	})
}

// AccountView exposes account details without the credential.
type AccountView struct {
	AccountID     string `json:"account_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Gender        string `json:"gender"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) myAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}

	account, err := h.service.AccountByID(r.Context(), claims.AccountID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountView{
		AccountID:     account.ID,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		Email:         account.Email,
		Gender:        account.Gender,
		PaymentMethod: account.PaymentMethod,
	})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, PageView{Page: "changepassword", Flash: popFlash(w, r)})
	case http.MethodPost:
		h.submitChangePassword(w, r, claims)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) submitChangePassword(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	form := parseChangePasswordForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	err := h.service.ChangePassword(r.Context(), claims.AccountID, form.OldPassword, form.NewPassword1, form.NewPassword2)
	switch {
	case errors.Is(err, domain.ErrIncorrectPassword):
		writeError(w, http.StatusBadRequest, "incorrect_password", "Incorrect Password")
	case errors.Is(err, domain.ErrPasswordMismatch):
		writeError(w, http.StatusBadRequest, "password_mismatch", "Passwords do not match")
	case err != nil:
		writeServerError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Password successfully updated!"})
	}
}

func (h *Handler) enlistClass(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	code := r.URL.Query().Get("code")
	_, err := h.service.Enroll(r.Context(), claims.AccountID, code)
	switch {
	case errors.Is(err, domain.ErrClassNotFound):
		// Unknown codes redirect without a message, matching the original.
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		setFlash(w, "Already Enlisted in this class!")
	case errors.Is(err, domain.ErrClassFull):
		setFlash(w, "Class is already full!")
	case err != nil:
		writeServerError(w, err)
		return
	default:
		setFlash(w, "Successfully Enlisted!")
	}
	http.Redirect(w, r, "/homepage", http.StatusSeeOther)
}

// ClassView exposes a class offering.
type ClassView struct {
	ClassCode      string `json:"class_code"`
	ClassCategory  string `json:"class_category"`
	ClassName      string `json:"class_name"`
	Instructor     string `json:"instructor"`
	ClassTime      string `json:"class_time"`
	Price          int    `json:"price"`
	SlotsAvailable int    `json:"slots_available"`
}

// EnrolledView lists the classes an account occupies and the payment total.
// NoneEnrolled distinguishes an empty schedule from a total of zero.
type EnrolledView struct {
	Classes      []ClassView `json:"enrolled_classes"`
	PaymentTotal int         `json:"payment_total"`
	NoneEnrolled bool        `json:"none_enrolled"`
	Status       string      `json:"status,omitempty"`
}

func (h *Handler) enrolledClasses(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	summary, err := h.service.Summary(r.Context(), claims.AccountID)
	if err != nil {
		writeServerError(w, err)
		return
	}

	view := EnrolledView{
		Classes:      toClassViews(summary.Classes),
		PaymentTotal: summary.Total,
	}
	if len(summary.Classes) == 0 {
		view.NoneEnrolled = true
		view.Status = "No Classes Enrolled!"
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) adminClasses(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	if !claims.IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden", "admin access required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, PageView{Page: "adminclasses", Flash: popFlash(w, r)})
	case http.MethodPost:
		h.submitAddClass(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) submitAddClass(w http.ResponseWriter, r *http.Request) {
	form := parseAddClassForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	class, err := h.service.AddClass(r.Context(), form.Input())
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateClassCode) {
			writeError(w, http.StatusConflict, "duplicate_class_code", "A class with this code already exists.")
			return
		}
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Status string    `json:"status"`
		Class  ClassView `json:"class"`
	}{
		Status: "Class Successfully Added",
		Class:  toClassView(*class),
	})
}

// CategoryView lists the classes within one category.
type CategoryView struct {
	Category string      `json:"category"`
	Classes  []ClassView `json:"classes"`
	Flash    string      `json:"flash,omitempty"`
}

func (h *Handler) category(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}

		classes, err := h.service.ClassesByCategory(r.Context(), category)
		if err != nil {
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CategoryView{
			Category: category,
			Classes:  toClassViews(classes),
			Flash:    popFlash(w, r),
		})
	}
}

func toClassView(class domain.Class) ClassView {
	return ClassView{
		ClassCode:      class.Code,
		ClassCategory:  class.Category,
		ClassName:      class.Name,
		Instructor:     class.Instructor,
		ClassTime:      class.Time,
		Price:          class.Price,
		SlotsAvailable: class.SlotsAvailable,
	}
}

func toClassViews(classes []domain.Class) []ClassView {
	views := make([]ClassView, 0, len(classes))
	for _, class := range classes {
		views = append(views, toClassView(class))
	}
	return views
}

func titleCase(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func writeValidationErrors(w http.ResponseWriter, errs FieldErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	payload := struct {
		Type   string      `json:"type"`
		Fields FieldErrors `json:"fields"`
	}{Type: "validation_failed", Fields: errs}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeServerError(w http.ResponseWriter, err error) {
	log.Printf("handler error: %v", err)
	writeError(w, http.StatusInternalServerError, "server_error", "something went wrong")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
