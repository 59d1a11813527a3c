// Package http provides http transport for the catalog
package http

import (
	stdhttp "net/http"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/services/catalog/domain"
	svc "preloadassist/internal/services/catalog/service"
)

// Register mounts catalog endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/categories", h.listCategories)
	httpkit.Get(r, "/categories/tree", h.tree)
	httpkit.PostJSON[domain.SyncInput](r, "/categories/sync", h.sync)
	httpkit.PostJSON[domain.ToggleInput](r, "/categories/{id}/toggle", h.toggleCategory)
	httpkit.PostJSON[domain.SettingsInput](r, "/categories/{id}/settings", h.saveSettings)
	httpkit.Get(r, "/categories/{id}/facets/{facet}/values", h.facetValues)
	httpkit.PostJSON[domain.FacetValuesInput](r, "/categories/{id}/facets/{facet}/values", h.saveFacetValues)

	httpkit.Get(r, "/facets", h.listFacets)
	httpkit.Post(r, "/facets/import", h.importFacets)
	httpkit.PostJSON[domain.ToggleInput](r, "/facets/{name}/toggle", h.toggleFacet)

	httpkit.Get(r, "/parameters", h.listParameters)
	httpkit.PostJSON[domain.ParameterInput](r, "/parameters", h.saveParameter)
	httpkit.Delete(r, "/parameters/{name}", h.deleteParameter)
	httpkit.PostJSON[domain.PositionInput](r, "/parameters/{name}/position", h.moveParameter)
}

type handlers struct{ svc svc.Service }

// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Category "ok"
// @Router /catalog/categories [get]
func (h *handlers) listCategories(r *stdhttp.Request) (any, error) {
	return h.svc.ListCategories(r.Context())
}

// @Summary Category tree, depth-first
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.TreeItem "ok"
// @Router /catalog/categories/tree [get]
func (h *handlers) tree(r *stdhttp.Request) (any, error) {
	return h.svc.Hierarchy(r.Context())
}

// @Summary Sync the storefront taxonomy
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body domain.SyncInput true "Categories"
// @Success 200 {object} domain.SyncResult "ok"
// @Router /catalog/categories/sync [post]
func (h *handlers) sync(r *stdhttp.Request, in domain.SyncInput) (any, error) {
	return h.svc.SyncCategories(r.Context(), in.Categories)
}

// @Summary Enable or disable a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Category id"
// @Param payload body domain.ToggleInput true "Flag"
// @Success 200 {object} domain.Category "ok"
// @Router /catalog/categories/{id}/toggle [post]
func (h *handlers) toggleCategory(r *stdhttp.Request, in domain.ToggleInput) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.SetCategoryEnabled(r.Context(), id, in.Enabled)
}

// @Summary Replace a category's facet and parameter selection
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Category id"
// @Param payload body domain.SettingsInput true "Selection"
// @Success 200 {object} domain.Category "ok"
// @Router /catalog/categories/{id}/settings [post]
func (h *handlers) saveSettings(r *stdhttp.Request, in domain.SettingsInput) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.SaveCategorySettings(r.Context(), id, in)
}

// @Summary Facet values with the category's selection
// @Tags Catalog
// @Produce json
// @Param id path int true "Category id"
// @Param facet path string true "Facet name"
// @Success 200 {array} domain.FacetValue "ok"
// @Router /catalog/categories/{id}/facets/{facet}/values [get]
func (h *handlers) facetValues(r *stdhttp.Request) (any, error) {
	id, facet, err := categoryFacet(r)
	if err != nil {
		return nil, err
	}
	return h.svc.FacetValuesWithStatus(r.Context(), id, facet)
}

// @Summary Save the category's selected facet values
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Category id"
// @Param facet path string true "Facet name"
// @Param payload body domain.FacetValuesInput true "Selected values"
// @Success 200 {array} domain.FacetValue "ok"
// @Router /catalog/categories/{id}/facets/{facet}/values [post]
func (h *handlers) saveFacetValues(r *stdhttp.Request, in domain.FacetValuesInput) (any, error) {
	id, facet, err := categoryFacet(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.SaveFacetValues(r.Context(), id, facet, in.Selected); err != nil {
		return nil, err
	}
	return h.svc.FacetValuesWithStatus(r.Context(), id, facet)
}

func categoryFacet(r *stdhttp.Request) (int64, string, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return 0, "", err
	}
	facet, err := httpkit.Param(r, "facet")
	return id, facet, err
}

// @Summary List imported facets
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Facet "ok"
// @Router /catalog/facets [get]
func (h *handlers) listFacets(r *stdhttp.Request) (any, error) {
	return h.svc.ListFacets(r.Context())
}

// @Summary Import a faceted search export
// @Description The body is the export document itself: {"facets":[...]}
// @Tags Catalog
// @Accept json
// @Produce json
// @Success 200 {object} domain.ImportResult "ok"
// @Router /catalog/facets/import [post]
func (h *handlers) importFacets(r *stdhttp.Request) (any, error) {
	raw, err := httpkit.RawBody(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ImportFacets(r.Context(), raw)
}

// @Summary Enable or disable a facet
// @Tags Catalog
// @Accept json
// @Produce json
// @Param name path string true "Facet name"
// @Param payload body domain.ToggleInput true "Flag"
// @Success 200 {object} domain.Facet "ok"
// @Router /catalog/facets/{name}/toggle [post]
func (h *handlers) toggleFacet(r *stdhttp.Request, in domain.ToggleInput) (any, error) {
	name, err := httpkit.Param(r, "name")
	if err != nil {
		return nil, err
	}
	return h.svc.SetFacetEnabled(r.Context(), name, in.Enabled)
}

// @Summary List custom parameters
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Parameter "ok"
// @Router /catalog/parameters [get]
func (h *handlers) listParameters(r *stdhttp.Request) (any, error) {
	return h.svc.ListParameters(r.Context())
}

// @Summary Create or replace a parameter
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body domain.ParameterInput true "Parameter"
// @Success 200 {object} domain.Parameter "ok"
// @Router /catalog/parameters [post]
func (h *handlers) saveParameter(r *stdhttp.Request, in domain.ParameterInput) (any, error) {
	return h.svc.SaveParameter(r.Context(), in)
}

// @Summary Delete a parameter
// @Tags Catalog
// @Param name path string true "Parameter name"
// @Success 204 "deleted"
// @Router /catalog/parameters/{name} [delete]
func (h *handlers) deleteParameter(r *stdhttp.Request) (any, error) {
	name, err := httpkit.Param(r, "name")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteParameter(r.Context(), name); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Move a parameter before or after the facets
// @Tags Catalog
// @Accept json
// @Produce json
// @Param name path string true "Parameter name"
// @Param payload body domain.PositionInput true "Position"
// @Success 200 {object} domain.Parameter "ok"
// @Router /catalog/parameters/{name}/position [post]
func (h *handlers) moveParameter(r *stdhttp.Request, in domain.PositionInput) (any, error) {
	name, err := httpkit.Param(r, "name")
	if err != nil {
		return nil, err
	}
	return h.svc.UpdateParameterPosition(r.Context(), name, in.Position)
}
