package controllers

import (
	"net/http"

	"inkpost/app/services"

	"github.com/sirupsen/logrus"
)

// CategoryController handles HTTP requests for categories
type CategoryController struct {
	categoryService *services.CategoryService
	log             logrus.FieldLogger
}

func NewCategoryController(categoryService *services.CategoryService, log logrus.FieldLogger) *CategoryController {
	return &CategoryController{categoryService: categoryService, log: log}
}

// Index handles GET /api/categories
func (cc *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := cc.categoryService.List(r.Context())
	if err != nil {
		sendError(w, r, cc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/categories
func (cc *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	if callerID(r) == 0 {
		sendError(w, r, cc.log, services.ErrUnauthenticated)
		return
	}
	var in services.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		sendError(w, r, cc.log, err)
		return
	}
	category, err := cc.categoryService.Create(r.Context(), in)
	if err != nil {
		sendError(w, r, cc.log, err)
		return
	}
	sendJSON(w, http.StatusCreated, category)
}
