package handler

import (
	"errors"
	"io"
	"net/http"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImageFormField is the multipart field carrying a product image
const ImageFormField = "image"

// ProductHandler handles product, variation and product image endpoints
type ProductHandler struct {
	BaseHandler
	productService   *catalogapp.ProductService
	variationService *catalogapp.VariationService
	maxImageSize     int64
}

// NewProductHandler creates a new ProductHandler. maxImageSize caps how much
// of an uploaded file is read into memory.
func NewProductHandler(
	productService *catalogapp.ProductService,
	variationService *catalogapp.VariationService,
	maxImageSize int64,
) *ProductHandler {
	return &ProductHandler{
		productService:   productService,
		variationService: variationService,
		maxImageSize:     maxImageSize,
	}
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	product, err := h.productService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID retrieves a product by its ID
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List retrieves a paginated list of products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update updates an existing product
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete deletes a product that holds no stock
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage stores the multipart "image" file as the product image
func (h *ProductHandler) UploadImage(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(ImageFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body too large")
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Multipart field \""+ImageFormField+"\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), tenantID, id, catalogapp.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Image redirects to a presigned link for the product image, or returns the
// link itself with ?format=json
func (h *ProductHandler) Image(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	link, err := h.productService.ImageURL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("format") == "json" {
		h.Success(c, link)
		return
	}
	c.Redirect(http.StatusFound, link.URL)
}

// ListVariations returns the variations of a product
func (h *ProductHandler) ListVariations(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	variations, err := h.variationService.ListByProduct(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variations)
}

// CreateVariation adds a variation to a product
func (h *ProductHandler) CreateVariation(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.CreateVariationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(session)

	variation, err := h.variationService.Create(c.Request.Context(), session.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variation)
}

// UpdateVariation edits a variation
func (h *ProductHandler) UpdateVariation(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	variationID, ok := h.pathID(c, "vid")
	if !ok {
		return
	}

	var req catalogapp.UpdateVariationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	variation, err := h.variationService.Update(c.Request.Context(), tenantID, variationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variation)
}

// DeleteVariation removes a variation that holds no stock
func (h *ProductHandler) DeleteVariation(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	variationID, ok := h.pathID(c, "vid")
	if !ok {
		return
	}

	if err := h.variationService.Delete(c.Request.Context(), tenantID, variationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
