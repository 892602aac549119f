package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/product"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type ProductSpecsRepository interface {
	List(ctx context.Context) ([]product.Spec, error)
	Create(ctx context.Context, s product.Spec) (product.Spec, error)
	Update(ctx context.Context, id int64, s product.Spec) (product.Spec, error)
	Delete(ctx context.Context, id int64) error
}

type ProductSpecsHandler struct {
	specs ProductSpecsRepository
}

func NewProductSpecsHandler(specs ProductSpecsRepository) *ProductSpecsHandler {
	return &ProductSpecsHandler{specs: specs}
}

func (h *ProductSpecsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	specs, err := h.specs.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list product specs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"productSpecs": specs})
}

type ProductSpecRequest struct {
	ProductID   int64  `json:"productId" binding:"required,gt=0"`
	VendorID    int64  `json:"vendorId" binding:"required,gt=0"`
	UnitID      int64  `json:"unitId" binding:"required,gt=0"`
	Description string `json:"description" binding:"required"`
	CaseSize    int    `json:"caseSize" binding:"required,gt=0"`
	UnitSize    string `json:"unitSize" binding:"required,numeric"`
	Brand       string `json:"brand"`
	SKU         string `json:"sku"`
}

func (req *ProductSpecRequest) toSpec() product.Spec {
	return product.Spec{
		ProductID:   req.ProductID,
		VendorID:    req.VendorID,
		UnitID:      req.UnitID,
		Description: strings.TrimSpace(req.Description),
		CaseSize:    req.CaseSize,
		UnitSize:    strings.TrimSpace(req.UnitSize),
		Brand:       strings.TrimSpace(req.Brand),
		SKU:         strings.TrimSpace(req.SKU),
	}
}

func (h *ProductSpecsHandler) Create(ctx *gin.Context) {
	var req ProductSpecRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	created, err := h.specs.Create(cctx, req.toSpec())

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrSpecExists):
			RespondConflict(ctx, "Spec already exists for this product and vendor")
		case errors.Is(err, postgres.ErrSpecReference):
			RespondValidation(ctx, "Referenced product, vendor, or unit not found", nil)
		default:
			RespondInternal(ctx, "Could not create product spec")
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"productSpec": created})
}

type UpdateProductSpecRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
	ProductSpecRequest
}

func (h *ProductSpecsHandler) Update(ctx *gin.Context) {
	var req UpdateProductSpecRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	updated, err := h.specs.Update(cctx, req.ID, req.toSpec())

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrSpecNotFound):
			RespondNotFound(ctx, "Product spec not found")
		case errors.Is(err, postgres.ErrSpecExists):
			RespondConflict(ctx, "Spec already exists for this product and vendor")
		case errors.Is(err, postgres.ErrSpecReference):
			RespondValidation(ctx, "Referenced product, vendor, or unit not found", nil)
		default:
			RespondInternal(ctx, "Could not update product spec")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"productSpec": updated})
}

func (h *ProductSpecsHandler) Delete(ctx *gin.Context) {
	id, ok := queryID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.specs.Delete(cctx, id); err != nil {
		if errors.Is(err, postgres.ErrSpecNotFound) {
			RespondNotFound(ctx, "Product spec not found")
			return
		}

		RespondInternal(ctx, "Could not delete product spec")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
