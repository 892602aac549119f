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

type ProductsRepository interface {
	List(ctx context.Context) ([]product.Product, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, name, nameKR string, categoryID, unitGroupID int64) (product.Product, error)
	Update(ctx context.Context, id int64, name, nameKR string, categoryID, unitGroupID int64) (product.Product, error)
	Delete(ctx context.Context, id int64) error
}

type UnitGroupChecker interface {
	GroupExists(ctx context.Context, id int64) (bool, error)
}

type ProductsHandler struct {
	products ProductsRepository
	groups   UnitGroupChecker
}

func NewProductsHandler(products ProductsRepository, groups UnitGroupChecker) *ProductsHandler {
	return &ProductsHandler{products: products, groups: groups}
}

func (h *ProductsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	products, err := h.products.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

type ProductRequest struct {
	Name        string `json:"name" binding:"required"`
	NameKR      string `json:"nameKr"`
	CategoryID  int64  `json:"categoryId" binding:"required,gt=0"`
	UnitGroupID int64  `json:"unitGroupId" binding:"required,gt=0"`
}

// checkReferences rejects writes pointing at a category or unit group
// that does not exist.
func (h *ProductsHandler) checkReferences(ctx *gin.Context, cctx context.Context, req ProductRequest) bool {
	ok, err := h.products.CategoryExists(cctx, req.CategoryID)

	if err != nil {
		RespondInternal(ctx, "Could not verify category")
		return false
	}

	if !ok {
		RespondValidation(ctx, "Unknown category", gin.H{"categoryId": req.CategoryID})
		return false
	}

	ok, err = h.groups.GroupExists(cctx, req.UnitGroupID)

	if err != nil {
		RespondInternal(ctx, "Could not verify unit group")
		return false
	}

	if !ok {
		RespondValidation(ctx, "Unknown unit group", gin.H{"unitGroupId": req.UnitGroupID})
		return false
	}

	return true
}

func (h *ProductsHandler) Create(ctx *gin.Context) {
	var req ProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if !h.checkReferences(ctx, cctx, req) {
		return
	}

	created, err := h.products.Create(cctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.NameKR), req.CategoryID, req.UnitGroupID)

	if err != nil {
		if errors.Is(err, postgres.ErrProductExists) {
			RespondConflict(ctx, "Product already exists for this unit group")
			return
		}

		RespondInternal(ctx, "Could not create product")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"product": created})
}

type UpdateProductRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
	ProductRequest
}

func (h *ProductsHandler) Update(ctx *gin.Context) {
	var req UpdateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if !h.checkReferences(ctx, cctx, req.ProductRequest) {
		return
	}

	updated, err := h.products.Update(cctx, req.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.NameKR), req.CategoryID, req.UnitGroupID)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrProductNotFound):
			RespondNotFound(ctx, "Product not found")
		case errors.Is(err, postgres.ErrProductExists):
			RespondConflict(ctx, "Product already exists for this unit group")
		default:
			RespondInternal(ctx, "Could not update product")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": updated})
}

func (h *ProductsHandler) Delete(ctx *gin.Context) {
	id, ok := queryID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.products.Delete(cctx, id); err != nil {
		switch {
		case errors.Is(err, postgres.ErrProductNotFound):
			RespondNotFound(ctx, "Product not found")
		case errors.Is(err, postgres.ErrProductInUse):
			RespondConflict(ctx, "Product is referenced by specs")
		default:
			RespondInternal(ctx, "Could not delete product")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
