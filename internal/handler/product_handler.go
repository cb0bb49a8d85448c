package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// ProductHandler serves catalog product endpoints.
type ProductHandler struct {
	base
	svc service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{base: base{logger: logger}, svc: svc}
}

// productInput reads the multipart product form. The photo is only described
// here; the service opens it after the other fields validate.
func productInput(c echo.Context) (service.ProductInput, error) {
	in := service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Quantity:    c.FormValue("quantity"),
		Shipping:    c.FormValue("shipping"),
	}
	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	in.Photo = &service.PhotoUpload{
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
	return in, nil
}

// Create godoc
// @Summary Create a product
// @Tags product
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param price formData number true "Price"
// @Param category formData string true "Category ID"
// @Param quantity formData integer true "Quantity"
// @Param shipping formData boolean false "Shipping"
// @Param photo formData file false "Photo, at most 1MB"
// @Success 201 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /product/create-product [post]
func (h *ProductHandler) Create(c echo.Context) error {
	in, err := productInput(c)
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "invalid product form")
	}
	product, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error in creating product")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "Product Created Successfully",
		"products": product,
	})
}

// Update godoc
// @Summary Replace a product
// @Tags product
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param pid path string true "Product ID"
// @Success 201 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /product/update-product/{pid} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := paramID(c, "pid")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid product id")
	}
	in, err := productInput(c)
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "invalid product form")
	}
	product, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error in Update product")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "Product Updated Successfully",
		"products": product,
	})
}

// List godoc
// @Summary Newest products
// @Tags product
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /product/get-product [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.svc.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error in getting products")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"counTotal": len(products),
		"message":   "AllProducts",
		"products":  products,
	})
}

// Single godoc
// @Summary Get a product by slug
// @Tags product
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /product/get-product/{slug} [get]
func (h *ProductHandler) Single(c echo.Context) error {
	product, err := h.svc.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while getting single product")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Single Product Fetched",
		"product": product,
	})
}

// Photo godoc
// @Summary Product photo bytes
// @Tags product
// @Produce octet-stream
// @Param pid path string true "Product ID"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /product/product-photo/{pid} [get]
func (h *ProductHandler) Photo(c echo.Context) error {
	id, err := paramID(c, "pid")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid product id")
	}
	photo, err := h.svc.Photo(c.Request().Context(), id)
	if apperrors.Is(err, apperrors.ErrPhotoNotFound) {
		return c.JSON(http.StatusNotFound, apperrors.Fail("photo not found", nil))
	}
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while getting photo")
	}
	return c.Blob(http.StatusOK, photo.ContentType, photo.Data)
}

// Delete godoc
// @Summary Delete a product
// @Tags product
// @Produce json
// @Security BearerAuth
// @Param pid path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Router /product/delete-product/{pid} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "pid")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid product id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while deleting product")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product Deleted successfully"})
}

// Filter godoc
// @Summary Filter by categories and price range
// @Tags product
// @Accept json
// @Produce json
// @Param request body service.FilterInput true "checked category ids and [min,max] price"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /product/product-filters [post]
func (h *ProductHandler) Filter(c echo.Context) error {
	var in service.FilterInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("Error While Filtering Products", err))
	}
	products, err := h.svc.Filter(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Error While Filtering Products")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Count godoc
// @Summary Number of products
// @Tags product
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /product/product-count [get]
func (h *ProductHandler) Count(c echo.Context) error {
	total, err := h.svc.Count(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Error in product count")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "total": total})
}

// Page godoc
// @Summary One page of products
// @Tags product
// @Produce json
// @Param page path integer true "Page, starting at 1"
// @Success 200 {object} map[string]interface{}
// @Router /product/product-list/{page} [get]
func (h *ProductHandler) Page(c echo.Context) error {
	page := 1
	if raw := c.Param("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apperrors.Fail("error in per page ctrl", err))
		}
		page = n
	}
	products, err := h.svc.Page(c.Request().Context(), page)
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "error in per page ctrl")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Search godoc
// @Summary Case-insensitive search over name and description
// @Tags product
// @Produce json
// @Param keyword path string true "Keyword"
// @Success 200 {array} model.Product
// @Router /product/search/{keyword} [get]
func (h *ProductHandler) Search(c echo.Context) error {
	products, err := h.svc.Search(c.Request().Context(), c.Param("keyword"))
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Error In Search Product API")
	}
	return c.JSON(http.StatusOK, products)
}

// Related godoc
// @Summary Similar products
// @Tags product
// @Produce json
// @Param pid path string true "Product ID"
// @Param cid path string true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /product/related-product/{pid}/{cid} [get]
func (h *ProductHandler) Related(c echo.Context) error {
	pid, err := paramID(c, "pid")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "error while getting related product")
	}
	cid, err := paramID(c, "cid")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "error while getting related product")
	}
	products, err := h.svc.Related(c.Request().Context(), pid, cid)
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "error while getting related product")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// ByCategory godoc
// @Summary Products of a category
// @Tags product
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} map[string]interface{}
// @Router /product/product-category/{slug} [get]
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category, products, err := h.svc.ByCategory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Error While Getting products")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"category": category,
		"products": products,
	})
}
