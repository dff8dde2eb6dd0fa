package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

const exportPageLimit = 1000

// ExportHandler is the read-only surface for partner systems that sync the
// codelists by API key instead of a user session.
type ExportHandler struct {
	voltageLevelService   *service.VoltageLevelService
	networkTypeService    *service.NetworkTypeService
	classificationService *service.ClassificationService
}

func NewExportHandler(
	voltageLevelService *service.VoltageLevelService,
	networkTypeService *service.NetworkTypeService,
	classificationService *service.ClassificationService,
) *ExportHandler {
	return &ExportHandler{
		voltageLevelService:   voltageLevelService,
		networkTypeService:    networkTypeService,
		classificationService: classificationService,
	}
}

func RegisterExportRoutes(group *gin.RouterGroup, apiKeys []string, handler *ExportHandler) {
	if handler == nil {
		return
	}

	export := group.Group("/export")
	export.Use(middleware.APIKeyAuth(apiKeys))

	export.GET("/voltage-levels", handler.VoltageLevels)
	export.GET("/network-types", handler.NetworkTypes)
	export.GET("/classifications/tree", handler.ClassificationTree)
}

func (h *ExportHandler) VoltageLevels(c *gin.Context) {
	items, _, err := h.voltageLevelService.List(c.Request.Context(), repository.CodelistListFilter{
		Pagination: repository.Pagination{Limit: exportPageLimit},
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, items)
}

func (h *ExportHandler) NetworkTypes(c *gin.Context) {
	items, _, err := h.networkTypeService.List(c.Request.Context(), repository.CodelistListFilter{
		Pagination: repository.Pagination{Limit: exportPageLimit},
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, items)
}

func (h *ExportHandler) ClassificationTree(c *gin.Context) {
	roots, err := h.classificationService.FindTree(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, roots)
}
