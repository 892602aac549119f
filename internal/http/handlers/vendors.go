package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/vendor"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type VendorsRepository interface {
	List(ctx context.Context) ([]vendor.Vendor, error)
	Create(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error)
	Update(ctx context.Context, id int64, v vendor.Vendor) (vendor.Vendor, error)
	Delete(ctx context.Context, id int64) error
}

type VendorsHandler struct {
	vendors VendorsRepository
}

func NewVendorsHandler(vendors VendorsRepository) *VendorsHandler {
	return &VendorsHandler{vendors: vendors}
}

func (h *VendorsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	vendors, err := h.vendors.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list vendors")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

type VendorRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=INVENTORY SERVICE UTILITY OTHER"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	AccountNumber string `json:"accountNumber"`
}

func (req *VendorRequest) toVendor() (vendor.Vendor, bool) {
	t, ok := vendor.ParseType(req.Type)

	if !ok {
		return vendor.Vendor{}, false
	}

	return vendor.Vendor{
		Name:          strings.TrimSpace(req.Name),
		Type:          t,
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		Website:       strings.TrimSpace(req.Website),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
	}, true
}

func (h *VendorsHandler) Create(ctx *gin.Context) {
	var req VendorRequest

	if !BindJSON(ctx, &req) {
		return
	}

	v, ok := req.toVendor()

	if !ok {
		RespondValidation(ctx, "Invalid vendor type", gin.H{"type": req.Type})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	created, err := h.vendors.Create(cctx, v)

	if err != nil {
		if errors.Is(err, postgres.ErrVendorNameTaken) {
			RespondConflict(ctx, "Vendor name already exists")
			return
		}

		RespondInternal(ctx, "Could not create vendor")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"vendor": created})
}

type UpdateVendorRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
	VendorRequest
}

func (h *VendorsHandler) Update(ctx *gin.Context) {
	var req UpdateVendorRequest

	if !BindJSON(ctx, &req) {
		return
	}

	v, ok := req.toVendor()

	if !ok {
		RespondValidation(ctx, "Invalid vendor type", gin.H{"type": req.Type})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	updated, err := h.vendors.Update(cctx, req.ID, v)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrVendorNotFound):
			RespondNotFound(ctx, "Vendor not found")
		case errors.Is(err, postgres.ErrVendorNameTaken):
			RespondConflict(ctx, "Vendor name already exists")
		default:
			RespondInternal(ctx, "Could not update vendor")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"vendor": updated})
}

func (h *VendorsHandler) Delete(ctx *gin.Context) {
	id, ok := queryID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.vendors.Delete(cctx, id); err != nil {
		switch {
		case errors.Is(err, postgres.ErrVendorNotFound):
			RespondNotFound(ctx, "Vendor not found")
		case errors.Is(err, postgres.ErrVendorInUse):
			RespondConflict(ctx, "Vendor is referenced by product specs")
		default:
			RespondInternal(ctx, "Could not delete vendor")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
