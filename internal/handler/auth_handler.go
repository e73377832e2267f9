package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/edufy-app/roster-api/internal/middleware"
	"github.com/edufy-app/roster-api/internal/models"
	"github.com/edufy-app/roster-api/internal/service"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
	"github.com/edufy-app/roster-api/pkg/response"
)

// AuthHandler exposes the sign-in wizard and session endpoints. Each
// request drives a fresh flow from the email step up to the step the
// endpoint implements.
type AuthHandler struct {
	flows     *service.FlowFactory
	auth      *service.AuthService
	validator *validator.Validate
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(flows *service.FlowFactory, auth *service.AuthService, validate *validator.Validate) *AuthHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AuthHandler{flows: flows, auth: auth, validator: validate}
}

func (h *AuthHandler) bind(c *gin.Context, payload interface{}) error {
	if err := c.ShouldBindJSON(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return nil
}

// Lookup godoc
// @Summary Resolve the next sign-in step for an email
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LookupRequest true "Lookup payload"
// @Success 200 {object} response.Envelope
// @Router /auth/lookup [post]
func (h *AuthHandler) Lookup(c *gin.Context) {
	var req models.LookupRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	flow := h.flows.Start(req.Role, req.Mode)
	if err := flow.SubmitEmail(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.LookupResponse{Next: string(flow.Step())})
}

// Login godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	flow := h.flows.Start(req.Role, models.FlowModeSignIn)
	if err := flow.SubmitEmail(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	if flow.Step() == service.StepCreatePassword {
		response.Error(c, appErrors.ErrPasswordNotSet)
		return
	}

	res, err := flow.SubmitPassword(c.Request.Context(), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Activate godoc
// @Summary Complete first-login password setup
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.ActivateRequest true "Activation payload"
// @Success 200 {object} response.Envelope
// @Router /auth/activate [post]
func (h *AuthHandler) Activate(c *gin.Context) {
	var req models.ActivateRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	flow := h.flows.Start(req.Role, models.FlowModeSignIn)
	if err := flow.SubmitEmail(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	if flow.Step() != service.StepCreatePassword {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "password already set"))
		return
	}

	res, err := flow.SubmitCreatePassword(c.Request.Context(), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Register godoc
// @Summary Self-service sign-up
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	flow := h.flows.Start(req.Role, models.FlowModeSignUp)
	if err := flow.SubmitEmail(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	res, err := flow.SubmitSignUp(c.Request.Context(), service.SignUpInput{
		Name:            req.Name,
		Subjects:        req.Subjects,
		Password:        req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Session godoc
// @Summary Current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrNoSession)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Logout godoc
// @Summary Revoke the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFrom(c)
	if token == "" {
		response.NoContent(c)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
