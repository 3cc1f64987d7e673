package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

const testCategoryID = "0190a8b0-0000-7000-8000-00000000c001"

func newCategoryRouter(t *testing.T, stub *stubCategoryService) *gin.Engine {
	t.Helper()
	handler := newTestHandler(t, handlerStubs{categories: stub})

	router := gin.New()
	group := router.Group("/categories", withTestUserID(testUserID))
	group.POST("", handler.HandleCreateCategory)
	group.GET("", handler.HandleListCategories)
	group.GET("/:id", handler.HandleGetCategory)
	group.PATCH("/:id", handler.HandleUpdateCategory)
	group.DELETE("/:id", handler.HandleDeleteCategory)
	return router
}

func testCategory() *models.Category {
	now := time.Now()
	return &models.Category{
		ID:        testCategoryID,
		UserID:    testUserID,
		Name:      "Work",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestHandleCreateCategorySuccess(t *testing.T) {
	var got services.CreateCategoryParams
	router := newCategoryRouter(t, &stubCategoryService{
		createFn: func(params services.CreateCategoryParams) (*models.Category, error) {
			got = params
			category := testCategory()
			category.Color = params.Color
			return category, nil
		},
	})

	resp := doJSON(t, router, http.MethodPost, "/categories", map[string]any{
		"name":  "Work",
		"color": "#FF5733",
	})
	mustStatus(t, resp, http.StatusCreated)

	if got.UserID != testUserID || got.Name != "Work" {
		t.Fatalf("unexpected params %+v", got)
	}

	body := decodeBody(t, resp)
	if body["name"] != "Work" || body["color"] != "#FF5733" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleCreateCategoryConflict(t *testing.T) {
	router := newCategoryRouter(t, &stubCategoryService{
		createFn: func(services.CreateCategoryParams) (*models.Category, error) {
			return nil, services.ErrCategoryNameTaken
		},
	})

	resp := doJSON(t, router, http.MethodPost, "/categories", map[string]any{"name": "Work"})
	mustStatus(t, resp, http.StatusConflict)
}

func TestHandleCreateCategoryRejectsBadColor(t *testing.T) {
	router := newCategoryRouter(t, &stubCategoryService{
		createFn: func(services.CreateCategoryParams) (*models.Category, error) {
			t.Fatal("create must not be called on invalid input")
			return nil, nil
		},
	})

	for _, color := range []string{"FF5733", "#FF573", "#GGGGGG", "#FFF"} {
		resp := doJSON(t, router, http.MethodPost, "/categories", map[string]any{
			"name":  "Work",
			"color": color,
		})
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("color %q: expected 422, got %d", color, resp.Code)
		}
	}
}

func TestHandleGetCategoryOwnership(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"absent resource is not found", services.ErrCategoryNotFound, http.StatusNotFound},
		{"foreign resource is forbidden", services.ErrForbidden, http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			router := newCategoryRouter(t, &stubCategoryService{
				getFn: func(categoryID, userID string) (*models.Category, error) {
					return nil, tc.err
				},
			})

			resp := doJSON(t, router, http.MethodGet, "/categories/"+testCategoryID, nil)
			mustStatus(t, resp, tc.status)
		})
	}
}

func TestHandleGetCategoryInvalidID(t *testing.T) {
	router := newCategoryRouter(t, &stubCategoryService{
		getFn: func(categoryID, userID string) (*models.Category, error) {
			t.Fatal("a malformed id must not reach the service")
			return nil, nil
		},
	})

	resp := doJSON(t, router, http.MethodGet, "/categories/not-a-uuid", nil)
	mustStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestHandleListCategories(t *testing.T) {
	router := newCategoryRouter(t, &stubCategoryService{
		listFn: func(userID string) ([]models.Category, error) {
			if userID != testUserID {
				t.Fatalf("unexpected user id %q", userID)
			}
			return []models.Category{*testCategory()}, nil
		},
	})

	resp := doJSON(t, router, http.MethodGet, "/categories", nil)
	mustStatus(t, resp, http.StatusOK)
}

func TestHandleUpdateCategoryPartial(t *testing.T) {
	var got services.UpdateCategoryParams
	router := newCategoryRouter(t, &stubCategoryService{
		updateFn: func(params services.UpdateCategoryParams) (*models.Category, error) {
			got = params
			return testCategory(), nil
		},
	})

	resp := doJSON(t, router, http.MethodPatch, "/categories/"+testCategoryID, map[string]any{
		"description": "team projects",
	})
	mustStatus(t, resp, http.StatusOK)

	if got.Name != nil || got.Color != nil {
		t.Fatalf("absent fields must stay nil, got %+v", got)
	}
	if got.Description == nil || *got.Description != "team projects" {
		t.Fatalf("unexpected description %+v", got.Description)
	}
}

func TestHandleDeleteCategory(t *testing.T) {
	deleted := false
	router := newCategoryRouter(t, &stubCategoryService{
		deleteFn: func(categoryID, userID string) error {
			deleted = true
			return nil
		},
	})

	resp := doJSON(t, router, http.MethodDelete, "/categories/"+testCategoryID, nil)
	mustStatus(t, resp, http.StatusNoContent)
	if !deleted {
		t.Fatal("expected the delete to reach the service")
	}
}
