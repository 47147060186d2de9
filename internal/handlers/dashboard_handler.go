package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/plotsight/api/internal/assets"
	apierrors "github.com/stwalsh4118/plotsight/api/internal/errors"
	"github.com/stwalsh4118/plotsight/api/internal/ingest"
	"github.com/stwalsh4118/plotsight/api/internal/middleware"
	"github.com/stwalsh4118/plotsight/api/internal/repository"
	"github.com/stwalsh4118/plotsight/api/internal/services"
)

// queryDateLayout is the wire format for the date-range parameters.
const queryDateLayout = "2006-01-02"

// DashboardHandler handles dataset and view HTTP requests.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// ViewRequest represents the query parameters for the view endpoint.
// The owners parameter is read separately: an absent parameter means
// "all configured owners" while an explicitly empty one means none.
type ViewRequest struct {
	Start         string   `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End           string   `form:"end" binding:"omitempty,datetime=2006-01-02"`
	MinSize       *float64 `form:"min_size" binding:"omitempty,gte=0"`
	MaxSize       *float64 `form:"max_size" binding:"omitempty,gte=0"`
	IncludeUnsold *bool    `form:"include_unsold"`
}

// ListResponse represents the response for the datasets list endpoint.
type ListResponse struct {
	Datasets []services.DatasetInfo `json:"datasets"`
	Count    int                    `json:"count"`
}

// SummaryResponse represents the response for the summary endpoint.
type SummaryResponse struct {
	DatasetID string      `json:"dataset_id"`
	Summary   interface{} `json:"summary"`
}

// List handles GET /api/v1/datasets.
// It returns every configured dataset with stats and legend metadata.
func (h *DashboardHandler) List(c *gin.Context) {
	infos := h.service.ListDatasets(c.Request.Context())
	c.JSON(http.StatusOK, ListResponse{
		Datasets: infos,
		Count:    len(infos),
	})
}

// View handles GET /api/v1/datasets/:id/view.
// It recomputes the filtered, styled view for the requested criteria.
func (h *DashboardHandler) View(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	params, ok := h.buildParams(c, req)
	if !ok {
		return
	}

	id := c.Param("id")
	if log != nil {
		log.Info("Processing view request", map[string]interface{}{
			"dataset": id,
		})
	}

	viewResp, err := h.service.View(c.Request.Context(), id, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, viewResp)
}

// Summary handles GET /api/v1/datasets/:id/summary.
// It returns the sold-summary table alone, owner-scoped.
func (h *DashboardHandler) Summary(c *gin.Context) {
	id := c.Param("id")

	summary, err := h.service.Summary(c.Request.Context(), id, ownersParam(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		DatasetID: id,
		Summary:   summary,
	})
}

// buildParams converts a bound ViewRequest into service params,
// rejecting inverted ranges. The bool is false when a response has
// already been written.
func (h *DashboardHandler) buildParams(c *gin.Context, req ViewRequest) (services.ViewParams, bool) {
	params := services.ViewParams{
		Owners:        ownersParam(c),
		MinSize:       req.MinSize,
		MaxSize:       req.MaxSize,
		IncludeUnsold: true,
	}
	if req.IncludeUnsold != nil {
		params.IncludeUnsold = *req.IncludeUnsold
	}

	// Formats were validated by binding; parse cannot fail here.
	if req.Start != "" {
		t, _ := time.Parse(queryDateLayout, req.Start)
		params.Start = &t
	}
	if req.End != "" {
		t, _ := time.Parse(queryDateLayout, req.End)
		params.End = &t
	}

	if params.Start != nil && params.End != nil && params.End.Before(*params.Start) {
		apierrors.BadRequest(c, "start must not be after end", map[string]interface{}{
			"start": req.Start,
			"end":   req.End,
		})
		return services.ViewParams{}, false
	}
	if params.MinSize != nil && params.MaxSize != nil && *params.MaxSize < *params.MinSize {
		apierrors.BadRequest(c, "min_size must not exceed max_size", map[string]interface{}{
			"min_size": *params.MinSize,
			"max_size": *params.MaxSize,
		})
		return services.ViewParams{}, false
	}

	return params, true
}

// ownersParam reads the comma-separated owners parameter. Nil means the
// parameter was absent; an empty slice means it was given but empty.
func ownersParam(c *gin.Context) []string {
	raw, present := c.GetQuery("owners")
	if !present {
		return nil
	}
	owners := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			owners = append(owners, trimmed)
		}
	}
	return owners
}

// respondServiceError maps service-level errors onto the API error
// taxonomy.
func respondServiceError(c *gin.Context, err error) {
	var schemaErr *ingest.SchemaError
	var assetErr *assets.MissingAssetError

	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		apierrors.NotFound(c, "No dataset with this id")
	case errors.As(err, &schemaErr):
		apierrors.SchemaError(c, schemaErr.Error(), err)
	case errors.As(err, &assetErr):
		apierrors.MissingAsset(c, assetErr.Error())
	case errors.Is(err, repository.ErrSheetUnavailable):
		apierrors.DatasetUnavailable(c, "Failed to fetch the inventory sheet", err)
	default:
		apierrors.InternalServerError(c, "Failed to compute dataset view", err)
	}
}
