package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/backoffice/internal/config"
	"github.com/geocoder89/backoffice/internal/domain/unit"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type UnitsRepository interface {
	ListGroups(ctx context.Context) ([]unit.Group, error)
	CreateGroup(ctx context.Context, name string) (unit.Group, error)
	UpdateGroup(ctx context.Context, id int64, name string) (unit.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	CreateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error)
	UpdateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error)
	DeleteUnit(ctx context.Context, id int64) error
}

// UnitsHandler serves one combined endpoint for unit groups and units;
// the `kind` field picks which entity a write targets.
type UnitsHandler struct {
	units UnitsRepository
}

func NewUnitsHandler(units UnitsRepository) *UnitsHandler {
	return &UnitsHandler{units: units}
}

func (h *UnitsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	groups, err := h.units.ListGroups(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list unit groups")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unitGroups": groups})
}

type UnitRequest struct {
	Kind         string `json:"kind" binding:"required,oneof=group unit"`
	ID           int64  `json:"id"`
	Name         string `json:"name" binding:"required"`
	UnitGroupID  int64  `json:"unitGroupId"`
	Abbreviation string `json:"abbreviation"`
	Factor       string `json:"factor" binding:"omitempty,numeric"`
}

func (req *UnitRequest) toUnit() (unit.Unit, bool) {
	if req.UnitGroupID <= 0 || req.Abbreviation == "" || req.Factor == "" {
		return unit.Unit{}, false
	}

	return unit.Unit{
		ID:           req.ID,
		UnitGroupID:  req.UnitGroupID,
		Name:         strings.TrimSpace(req.Name),
		Abbreviation: strings.TrimSpace(req.Abbreviation),
		Factor:       strings.TrimSpace(req.Factor),
	}, true
}

func (h *UnitsHandler) Create(ctx *gin.Context) {
	var req UnitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if req.Kind == "group" {
		created, err := h.units.CreateGroup(cctx, strings.TrimSpace(req.Name))

		if err != nil {
			if errors.Is(err, postgres.ErrUnitGroupNameTaken) {
				RespondConflict(ctx, "Unit group name already exists")
				return
			}

			RespondInternal(ctx, "Could not create unit group")
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{"unitGroup": created})
		return
	}

	u, ok := req.toUnit()

	if !ok {
		RespondValidation(ctx, "Units need unitGroupId, abbreviation, and factor", nil)
		return
	}

	created, err := h.units.CreateUnit(cctx, u)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUnitExists):
			RespondConflict(ctx, "Unit name or abbreviation already exists in this group")
		case errors.Is(err, postgres.ErrUnitGroupNotFound):
			RespondValidation(ctx, "Unknown unit group", gin.H{"unitGroupId": req.UnitGroupID})
		default:
			RespondInternal(ctx, "Could not create unit")
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"unit": created})
}

func (h *UnitsHandler) Update(ctx *gin.Context) {
	var req UnitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.ID <= 0 {
		RespondBadRequest(ctx, "Missing or invalid id", gin.H{"param": "id"})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if req.Kind == "group" {
		updated, err := h.units.UpdateGroup(cctx, req.ID, strings.TrimSpace(req.Name))

		if err != nil {
			switch {
			case errors.Is(err, postgres.ErrUnitGroupNotFound):
				RespondNotFound(ctx, "Unit group not found")
			case errors.Is(err, postgres.ErrUnitGroupNameTaken):
				RespondConflict(ctx, "Unit group name already exists")
			default:
				RespondInternal(ctx, "Could not update unit group")
			}
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"unitGroup": updated})
		return
	}

	u, ok := req.toUnit()

	if !ok {
		RespondValidation(ctx, "Units need unitGroupId, abbreviation, and factor", nil)
		return
	}

	updated, err := h.units.UpdateUnit(cctx, u)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUnitNotFound):
			RespondNotFound(ctx, "Unit not found")
		case errors.Is(err, postgres.ErrUnitExists):
			RespondConflict(ctx, "Unit name or abbreviation already exists in this group")
		case errors.Is(err, postgres.ErrUnitGroupNotFound):
			RespondValidation(ctx, "Unknown unit group", gin.H{"unitGroupId": req.UnitGroupID})
		default:
			RespondInternal(ctx, "Could not update unit")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unit": updated})
}

func (h *UnitsHandler) Delete(ctx *gin.Context) {
	kind := ctx.Query("kind")

	if kind != "group" && kind != "unit" {
		RespondBadRequest(ctx, "kind must be group or unit", gin.H{"param": "kind"})
		return
	}

	id, ok := queryID(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if kind == "group" {
		if err := h.units.DeleteGroup(cctx, id); err != nil {
			switch {
			case errors.Is(err, postgres.ErrUnitGroupNotFound):
				RespondNotFound(ctx, "Unit group not found")
			case errors.Is(err, postgres.ErrUnitGroupInUse):
				RespondConflict(ctx, "Unit group still has units")
			default:
				RespondInternal(ctx, "Could not delete unit group")
			}
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.units.DeleteUnit(cctx, id); err != nil {
		switch {
		case errors.Is(err, postgres.ErrUnitNotFound):
			RespondNotFound(ctx, "Unit not found")
		case errors.Is(err, postgres.ErrUnitInUse):
			RespondConflict(ctx, "Unit is used by product specs")
		default:
			RespondInternal(ctx, "Could not delete unit")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
