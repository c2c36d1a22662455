package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/middleware"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/service"
)

type AdminHandler struct {
	Admins *service.AdminService
}

func NewAdminHandler(a *service.AdminService) *AdminHandler {
	return &AdminHandler{Admins: a}
}

type adminCredentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// Setup creates the first admin; it is refused once one exists.
func (h *AdminHandler) Setup(c echo.Context) error {
	var req adminCredentialsReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Email = model.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Admins.Setup(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Admin created successfully",
		"admin":   adminPart{ID: a.ID, Email: a.Email},
	})
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req adminCredentialsReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	req.Email = model.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tok, a, err := h.Admins.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":     tok.Token,
		"expiresAt": tok.Exp,
		"admin":     adminPart{ID: a.ID, Email: a.Email},
	})
}

// Me returns the authenticated admin.
func (h *AdminHandler) Me(c echo.Context) error {
	id, _ := middleware.AdminID(c)
	return c.JSON(http.StatusOK, echo.Map{"admin": adminPart{ID: id, Email: middleware.AdminEmail(c)}})
}
