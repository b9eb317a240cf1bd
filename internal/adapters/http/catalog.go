package httpadapter

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func (rt *Router) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := rt.svc.Catalog.Departments(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (rt *Router) listCategories(w http.ResponseWriter, r *http.Request) {
	var departmentID *int64
	if err := runtime.BindQueryParameter("form", true, false, "department_id", r.URL.Query(), &departmentID); err != nil {
		writeError(w, r, http.StatusBadRequest, "department_id must be an integer")
		return
	}

	categories, err := rt.svc.Catalog.Categories(r.Context(), domain.CategoryFilter{DepartmentID: departmentID})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (rt *Router) exportCatalog(w http.ResponseWriter, r *http.Request) {
	if rt.svc.CatalogAdmin == nil {
		writeError(w, r, http.StatusNotFound, "catalog administration is disabled")
		return
	}
	snapshot, err := rt.svc.CatalogAdmin.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   rt.svc.Catalog.Status(),
		"snapshot": snapshot,
	})
}

func (rt *Router) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	status, err := rt.svc.Catalog.Reload(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
