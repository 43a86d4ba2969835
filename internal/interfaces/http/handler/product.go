package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/lumina/storefront/internal/application/catalog"
	"github.com/lumina/storefront/internal/interfaces/http/dto"
)

// ProductHandler serves the storefront catalog and the admin product console
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// ListStorefront godoc
// @ID           listStorefrontProducts
// @Summary      List products
// @Description  Active products, newest first, optionally filtered by category
// @Tags         storefront
// @Produce      json
// @Param        category query string false "Category filter"
// @Success      200 {object} APIResponse[[]catalogapp.ProductCard]
// @Failure      500 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) ListStorefront(c *gin.Context) {
	products, err := h.productService.ListStorefront(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetDetail godoc
// @ID           getStorefrontProduct
// @Summary      Get product
// @Description  Product detail by id or slug, with up to four related products
// @Tags         storefront
// @Produce      json
// @Param        id path string true "Product id or slug"
// @Success      200 {object} APIResponse[catalogapp.ProductDetail]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetDetail(c *gin.Context) {
	detail, err := h.productService.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// AdminList godoc
// @ID           listAdminProducts
// @Summary      List all products
// @Description  Products in every status, most recently updated first
// @Tags         admin-products
// @Produce      json
// @Param        status query string false "DRAFT, ACTIVE or ARCHIVED"
// @Param        category query string false "Category filter"
// @Param        search query string false "Title or SKU search"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]catalogapp.AdminProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var filter catalogapp.AdminListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	products, err := h.productService.AdminList(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// AdminGet godoc
// @ID           getAdminProduct
// @Summary      Get product (admin)
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.AdminProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @ID           createProduct
// @Summary      Create product
// @Description  Creates a product; the slug is generated from the title
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.AdminProductResponse]
// @Failure      400 {object} ValidationErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update product
// @Description  Partial update; variants are replaced when supplied
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.UpdateProductRequest true "Changes"
// @Success      200 {object} APIResponse[catalogapp.AdminProductResponse]
// @Failure      400 {object} ValidationErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SyncInventory godoc
// @ID           syncInventory
// @Summary      Sync supplier inventory
// @Tags         admin-products
// @Produce      json
// @Success      200 {object} APIResponse[catalogapp.SyncInventoryResult]
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/sync-inventory [post]
func (h *ProductHandler) SyncInventory(c *gin.Context) {
	result, err := h.productService.SyncInventory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UploadImage godoc
// @ID           uploadProductImage
// @Summary      Upload product image
// @Description  Stores a JPEG, PNG, GIF or WebP image and returns its public URL
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image"
// @Success      201 {object} APIResponse[catalogapp.UploadImageResult]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/uploads [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "file", Message: "This field is required"}})
		return
	}
	if fileHeader.Size > h.imageService.MaxSize() {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.imageService.MaxSize()+1))
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}

	result, err := h.imageService.UploadImage(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
