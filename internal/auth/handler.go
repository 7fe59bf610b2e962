package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sharedauth "job-tracker/internal/shared/auth"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/users"
	"job-tracker/internal/validation"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc        *Service
	Classifier *validation.DomainClassifier
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, classifier *validation.DomainClassifier) *Handler {
	return &Handler{Svc: svc, Classifier: classifier}
}

// RegisterRoutes attaches auth routes. They sit under the public /auth/
// prefix, so logout verifies its own token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/auth/hint", h.hint)
	rg.GET("/auth/email-domain", h.emailDomain)
	rg.POST("/auth/password-strength", h.passwordStrength)
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expiresAt"`
	UID       string                 `json:"uid"`
	Email     string                 `json:"email"`
	Provider  string                 `json:"provider"`
	Profile   *users.ProfileResponse `json:"profile"`
}

func toSignInResponse(s SignIn) signInResponse {
	out := signInResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		UID:       s.UID,
		Email:     s.Email,
		Provider:  s.Provider,
	}
	if s.Profile != nil {
		p := users.ToResponse(*s.Profile)
		out.Profile = &p
	}
	return out
}

type noticeResponse struct {
	Message    string `json:"message"`
	DurationMs int64  `json:"durationMs"`
	Error      bool   `json:"error"`
}

func toNotice(n users.Notice) noticeResponse {
	return noticeResponse{Message: n.Message, DurationMs: n.Duration.Milliseconds(), Error: n.Error}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if !validation.PasswordsMatch(req.Password, req.ConfirmPassword) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Passwords do not match", map[string]string{
			"confirmPassword": "Passwords do not match",
		})
		return
	}
	out, err := h.Svc.Register(c.Request.Context(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(c, FlowRegister, req.Email, err)
		return
	}
	respond.Created(c, toSignInResponse(out))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	out, err := h.Svc.Login(c.Request.Context(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(c, FlowLogin, req.Email, err)
		return
	}
	respond.OK(c, toSignInResponse(out))
}

func (h *Handler) logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	claims, err := sharedauth.VerifyJWT(token)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), claims); err != nil {
		respond.Internal(c, "failed to sign out")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) hint(c *gin.Context) {
	flow := FlowLogin
	if c.Query("flow") == string(FlowRegister) {
		flow = FlowRegister
	}
	code := Code(c.Query("code"))
	if code == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "code is required", nil)
		return
	}
	var n users.Notice
	if c.Query("provider") == sharedauth.ProviderGoogle {
		n = GoogleHint(flow, code)
	} else {
		n = Hint(flow, code, c.Query("email"), h.Classifier)
	}
	respond.OK(c, toNotice(n))
}

func (h *Handler) emailDomain(c *gin.Context) {
	email := c.Query("email")
	a := h.Classifier.Analyze(email)
	respond.OK(c, gin.H{
		"analysis":   a,
		"suggestion": h.Classifier.AuthSuggestion(email),
	})
}

func (h *Handler) passwordStrength(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	respond.OK(c, validation.PasswordStrength(req.Password))
}

func (h *Handler) writeError(c *gin.Context, flow Flow, email string, err error) {
	code := CodeOf(err)
	n := Hint(flow, code, email, h.Classifier)
	respond.Error(c, statusFor(code), string(code), n.Message, gin.H{"durationMs": n.Duration.Milliseconds()})
}

func statusFor(code Code) int {
	switch code {
	case CodeInvalidEmail, CodeWeakPassword:
		return http.StatusBadRequest
	case CodeInvalidCredential, CodeUserNotFound, CodeWrongPassword:
		return http.StatusUnauthorized
	case CodeUserDisabled, CodeNotAllowed:
		return http.StatusForbidden
	case CodeEmailInUse, CodeAccountExists:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
