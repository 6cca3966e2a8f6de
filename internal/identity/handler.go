package identity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/pkg/httputil"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers public identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Put("/auth/password", h.ChangePassword)
}

// RegisterAdminRoutes registers user-management routes. Mounted behind
// RequireRole(SYSTEM_ADMIN).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Get("/users", h.ListUsers)
	r.Get("/stats", h.Stats)
}

var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrEmailExists, Status: http.StatusConflict},
	{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
	{Error: ErrWeakPassword, Status: http.StatusBadRequest},
	{Error: ErrInvalidRole, Status: http.StatusBadRequest},
	{Error: ErrTooManyAttempts, Status: http.StatusTooManyRequests},
}

// userResponse is the JSON shape of a user in identity responses.
type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	RoleLabel string    `json:"role_label"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      string(u.Role),
		RoleLabel: u.Role.DisplayName(),
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Address  string `json:"address" validate:"required,max=400"`
}

// AuthResponse carries a freshly issued token and the user it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// ChangePasswordRequest represents the password change request body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ChangePassword handles PUT /auth/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, toUserResponse(user))
}

// CreateUserRequest represents the admin user-creation request body.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Address  string `json:"address" validate:"required,max=400"`
	Role     string `json:"role" validate:"required"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, toUserResponse(user))
}

// userSummaryResponse is the JSON shape of an administrative user listing row.
type userSummaryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	StoreRating *float64  `json:"store_rating,omitempty"`
}

func toUserSummaryResponse(u UserSummary) userSummaryResponse {
	return userSummaryResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Address:     u.Address,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		StoreRating: u.StoreRating,
	}
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := UserFilter{
		Name:      q.Get("name"),
		Email:     q.Get("email"),
		Address:   q.Get("address"),
		Role:      domain.Role(q.Get("role")),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	users, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	out := make([]userSummaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserSummaryResponse(u))
	}

	httputil.Success(w, http.StatusOK, out)
}

// GetUser handles GET /users/{id}. Mounted behind RequireSelfOrAdmin.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.service.GetUserSummary(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, toUserSummaryResponse(*user))
}

// statsResponse is the JSON shape of the admin dashboard totals.
type statsResponse struct {
	TotalUsers   int64 `json:"total_users"`
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int64 `json:"total_ratings"`
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PlatformStats(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, statsResponse{
		TotalUsers:   stats.TotalUsers,
		TotalStores:  stats.TotalStores,
		TotalRatings: stats.TotalRatings,
	})
}
