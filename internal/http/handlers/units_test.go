package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/backoffice/internal/domain/unit"
	"github.com/geocoder89/backoffice/internal/http/handlers"
	"github.com/geocoder89/backoffice/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type fakeUnitsRepo struct {
	listGroupsFn  func(ctx context.Context) ([]unit.Group, error)
	createGroupFn func(ctx context.Context, name string) (unit.Group, error)
	updateGroupFn func(ctx context.Context, id int64, name string) (unit.Group, error)
	deleteGroupFn func(ctx context.Context, id int64) error
	createUnitFn  func(ctx context.Context, u unit.Unit) (unit.Unit, error)
	updateUnitFn  func(ctx context.Context, u unit.Unit) (unit.Unit, error)
	deleteUnitFn  func(ctx context.Context, id int64) error

	groupWrites int
	unitWrites  int
}

func (f *fakeUnitsRepo) ListGroups(ctx context.Context) ([]unit.Group, error) {
	if f.listGroupsFn != nil {
		return f.listGroupsFn(ctx)
	}
	return []unit.Group{}, nil
}

func (f *fakeUnitsRepo) CreateGroup(ctx context.Context, name string) (unit.Group, error) {
	f.groupWrites++
	if f.createGroupFn != nil {
		return f.createGroupFn(ctx, name)
	}
	return unit.Group{ID: 1, Name: name, Units: []unit.Unit{}}, nil
}

func (f *fakeUnitsRepo) UpdateGroup(ctx context.Context, id int64, name string) (unit.Group, error) {
	f.groupWrites++
	if f.updateGroupFn != nil {
		return f.updateGroupFn(ctx, id, name)
	}
	return unit.Group{ID: id, Name: name, Units: []unit.Unit{}}, nil
}

func (f *fakeUnitsRepo) DeleteGroup(ctx context.Context, id int64) error {
	f.groupWrites++
	if f.deleteGroupFn != nil {
		return f.deleteGroupFn(ctx, id)
	}
	return nil
}

func (f *fakeUnitsRepo) CreateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	f.unitWrites++
	if f.createUnitFn != nil {
		return f.createUnitFn(ctx, u)
	}
	u.ID = 1
	return u, nil
}

func (f *fakeUnitsRepo) UpdateUnit(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	f.unitWrites++
	if f.updateUnitFn != nil {
		return f.updateUnitFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUnitsRepo) DeleteUnit(ctx context.Context, id int64) error {
	f.unitWrites++
	if f.deleteUnitFn != nil {
		return f.deleteUnitFn(ctx, id)
	}
	return nil
}

func unitsRouter(repo *fakeUnitsRepo) *gin.Engine {
	h := handlers.NewUnitsHandler(repo)

	r := gin.New()
	r.GET("/api/units", h.List)
	r.POST("/api/units", h.Create)
	r.PUT("/api/units", h.Update)
	r.DELETE("/api/units", h.Delete)

	return r
}

func TestCreateUnitKindDispatch(t *testing.T) {
	t.Run("kind group creates a group", func(t *testing.T) {
		repo := &fakeUnitsRepo{}
		r := unitsRouter(repo)

		w := postJSON(r, "/api/units", gin.H{"kind": "group", "name": "Weight"})

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
		}
		if repo.groupWrites != 1 || repo.unitWrites != 0 {
			t.Errorf("writes group=%d unit=%d, want 1/0", repo.groupWrites, repo.unitWrites)
		}
	})

	t.Run("kind unit creates a unit", func(t *testing.T) {
		repo := &fakeUnitsRepo{}
		r := unitsRouter(repo)

		w := postJSON(r, "/api/units", gin.H{
			"kind":         "unit",
			"name":         "Gram",
			"unitGroupId":  1,
			"abbreviation": "g",
			"factor":       "0.001",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
		}
		if repo.groupWrites != 0 || repo.unitWrites != 1 {
			t.Errorf("writes group=%d unit=%d, want 0/1", repo.groupWrites, repo.unitWrites)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		r := unitsRouter(&fakeUnitsRepo{})

		w := postJSON(r, "/api/units", gin.H{"kind": "thing", "name": "Weight"})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
		}
	})

	t.Run("unit without group fields rejected", func(t *testing.T) {
		r := unitsRouter(&fakeUnitsRepo{})

		w := postJSON(r, "/api/units", gin.H{"kind": "unit", "name": "Gram"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422 (body %s)", w.Code, w.Body.String())
		}
	})
}

func TestDeleteUnitKindDispatch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		repo       *fakeUnitsRepo
		wantStatus int
	}{
		{"delete group", "?kind=group&id=1", &fakeUnitsRepo{}, http.StatusOK},
		{"delete unit", "?kind=unit&id=1", &fakeUnitsRepo{}, http.StatusOK},
		{"missing kind", "?id=1", &fakeUnitsRepo{}, http.StatusBadRequest},
		{"missing id", "?kind=unit", &fakeUnitsRepo{}, http.StatusBadRequest},
		{
			"group still has units", "?kind=group&id=1",
			&fakeUnitsRepo{deleteGroupFn: func(context.Context, int64) error {
				return postgres.ErrUnitGroupInUse
			}},
			http.StatusConflict,
		},
		{
			"unit used by specs", "?kind=unit&id=1",
			&fakeUnitsRepo{deleteUnitFn: func(context.Context, int64) error {
				return postgres.ErrUnitInUse
			}},
			http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := unitsRouter(tt.repo)

			req := httptest.NewRequest(http.MethodDelete, "/api/units"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListUnitsNestsUnitsInGroups(t *testing.T) {
	repo := &fakeUnitsRepo{listGroupsFn: func(context.Context) ([]unit.Group, error) {
		return []unit.Group{
			{
				ID:   1,
				Name: "Weight",
				Units: []unit.Unit{
					{ID: 1, UnitGroupID: 1, Name: "Kilogram", Abbreviation: "kg", Factor: "1"},
					{ID: 2, UnitGroupID: 1, Name: "Gram", Abbreviation: "g", Factor: "0.001"},
				},
			},
		}, nil
	}}

	r := unitsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	body := w.Body.String()

	for _, want := range []string{"Weight", "Kilogram", "0.001"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %s", want, body)
		}
	}
}
