package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/apperr"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

// OpportunityStore is implemented by repository.OpportunityRepo.
type OpportunityStore interface {
	List(ctx context.Context, f repository.OpportunityFilter) ([]model.Opportunity, error)
	GetByID(ctx context.Context, id uint64) (model.Opportunity, error)
	Create(ctx context.Context, o model.Opportunity) (uint64, error)
	Update(ctx context.Context, o model.Opportunity) error
	Delete(ctx context.Context, id uint64) error
}

type OpportunityHandler struct {
	Store OpportunityStore
	// Invalidate drops cached listings after a write.  Optional.
	Invalidate func(ctx context.Context) error
	Now        func() time.Time
}

func NewOpportunityHandler(store OpportunityStore, invalidate func(ctx context.Context) error) *OpportunityHandler {
	return &OpportunityHandler{Store: store, Invalidate: invalidate, Now: time.Now}
}

type opportunityReq struct {
	Title          string    `json:"title" validate:"required,max=200"`
	Description    string    `json:"description" validate:"required"`
	Category       string    `json:"category" validate:"required,oneof=scholarship internship job fellowship competition"`
	Organization   string    `json:"organization" validate:"required,max=200"`
	Location       string    `json:"location" validate:"max=200"`
	Deadline       time.Time `json:"deadline" validate:"required"`
	Requirements   []string  `json:"requirements"`
	Benefits       []string  `json:"benefits"`
	ApplicationURL string    `json:"applicationUrl" validate:"omitempty,url"`
	IsFeatured     bool      `json:"isFeatured"`
	Status         string    `json:"status" validate:"omitempty,oneof=active closed"`
}

func (r opportunityReq) apply(o *model.Opportunity) {
	o.Title = strings.TrimSpace(r.Title)
	o.Description = strings.TrimSpace(r.Description)
	o.Category = r.Category
	o.Organization = strings.TrimSpace(r.Organization)
	o.Location = strings.TrimSpace(r.Location)
	o.Deadline = r.Deadline.UTC()
	o.Requirements = r.Requirements
	o.Benefits = r.Benefits
	o.ApplicationURL = strings.TrimSpace(r.ApplicationURL)
	o.IsFeatured = r.IsFeatured
	o.Status = r.Status
	if o.Status == "" {
		o.Status = "active"
	}
}

// List returns opportunities newest first, filtered by category, search text
// and, with featured=true, featured listings only.
func (h *OpportunityHandler) List(c echo.Context) error {
	f := repository.OpportunityFilter{
		Category: strings.ToLower(strings.TrimSpace(c.QueryParam("category"))),
		Search:   c.QueryParam("search"),
		Status:   strings.ToLower(strings.TrimSpace(c.QueryParam("status"))),
		Limit:    queryInt(c, "limit", 20, 1, 100),
	}
	// only featured=true narrows the list; any other value is ignored
	if c.QueryParam("featured") == "true" {
		featured := true
		f.Featured = &featured
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OpportunityHandler) Get(c echo.Context) error {
	id, err := opportunityID(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OpportunityHandler) Create(c echo.Context) error {
	var req opportunityReq
	if err := bind(c, &req); err != nil {
		return err
	}
	now := h.Now().UTC()
	var o model.Opportunity
	req.apply(&o)
	o.CreatedAt, o.UpdatedAt = now, now

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Store.Create(ctx, o)
	if err != nil {
		return err
	}
	o.ID = id
	if o.Requirements == nil {
		o.Requirements = []string{}
	}
	if o.Benefits == nil {
		o.Benefits = []string{}
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, o)
}

func (h *OpportunityHandler) Update(c echo.Context) error {
	id, err := opportunityID(c)
	if err != nil {
		return err
	}
	var req opportunityReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	req.apply(&o)
	o.UpdatedAt = h.Now().UTC()
	if err := h.Store.Update(ctx, o); err != nil {
		return notFoundOr(err)
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, o)
}

func (h *OpportunityHandler) Delete(c echo.Context) error {
	id, err := opportunityID(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		return notFoundOr(err)
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Opportunity deleted"})
}

func (h *OpportunityHandler) invalidate(c echo.Context) {
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(context.WithoutCancel(c.Request().Context())); err != nil {
		c.Logger().Warnf("opportunity cache invalidation failed: %v", err)
	}
}

func opportunityID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid opportunity id", apperr.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Opportunity not found")
	}
	return err
}
