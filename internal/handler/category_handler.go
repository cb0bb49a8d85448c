package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// CategoryHandler serves category endpoints.
type CategoryHandler struct {
	base
	svc service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{base: base{logger: logger}, svc: svc}
}

// CategoryRequest names a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// Create godoc
// @Summary Create a category
// @Tags category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} map[string]interface{}
// @Success 200 {object} map[string]interface{} "already exists"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /category/create-category [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	category, err := h.svc.Create(c.Request().Context(), req.Name)
	if apperrors.Is(err, apperrors.ErrCategoryExists) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Category Already Exists"})
	}
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error in Category")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "new category created",
		"category": category,
	})
}

// Update godoc
// @Summary Rename a category
// @Tags category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} map[string]interface{}
// @Router /category/update-category/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid category id")
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}

	category, err := h.svc.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while updating category")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Category Updated Successfully",
		"category": category,
	})
}

// List godoc
// @Summary List categories
// @Tags category
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /category/get-category [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while getting all categories")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "All Categories List",
		"category": categories,
	})
}

// Single godoc
// @Summary Get a category by slug
// @Tags category
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /category/single-category/{slug} [get]
func (h *CategoryHandler) Single(c echo.Context) error {
	category, err := h.svc.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error While getting Single Category")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Get Single Category Successfully",
		"category": category,
	})
}

// Delete godoc
// @Summary Delete a category
// @Tags category
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /category/delete-category/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid category id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "error while deleting category")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Category Deleted Successfully"})
}
