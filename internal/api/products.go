package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/samber/lo"
)

const maxImageSize = 10 << 20

func (h *Handler) registerProductRoutes(r *gin.RouterGroup) {
	p := r.Group("/products")
	{
		p.GET("", h.ListProducts)
		p.GET("/:id", h.GetProduct)
		p.POST("", AdminOnly(), h.CreateProduct)
		p.POST("/:id/images", AdminOnly(), h.UploadProductImage)
		p.DELETE("/:id", AdminOnly(), h.DeleteProduct)
		p.POST("/purge", AdminOnly(), h.PurgeProducts)
	}
}

func (h *Handler) ListProducts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	page := domain.Page{Limit: limit, Offset: offset}
	if err := page.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}

	products, err := h.products.ListProducts(c.Request.Context(), page)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": lo.Map(products, toProductResponse)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product, 0))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	id, err := h.products.InsertProduct(ctx, domain.Product{Name: req.Name, Images: req.Images})
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.products.GetProduct(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(product, 0))
}

// UploadProductImage expects a multipart form with the image in the "file" field.
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > maxImageSize {
		badRequest(c, "image exceeds 10 MiB")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	ref, err := h.catalog.AttachImage(c.Request.Context(), id, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ref": ref})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.catalog.DeleteReferenced(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

func (h *Handler) PurgeProducts(c *gin.Context) {
	var req PurgeProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if req.Confirmation != catalog.PurgeConfirmation {
		badRequest(c, "confirmation must be exactly "+catalog.PurgeConfirmation)
		return
	}

	result, err := h.catalog.DeleteAllReferenced(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":        result.Outcome,
		"affected":       result.Affected,
		"media_failures": result.MediaFailures,
	})
}
