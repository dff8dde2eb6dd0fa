package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	inputsanitize "github.com/cermakludek/legislative-enums-sub000/internal/api/sanitize"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

type VoltageLevelHandler struct {
	voltageLevelService *service.VoltageLevelService
}

type voltageLevelRequest struct {
	Code        string  `json:"code" binding:"required"`
	NameCs      string  `json:"name_cs" binding:"required"`
	NameEn      *string `json:"name_en"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

func NewVoltageLevelHandler(voltageLevelService *service.VoltageLevelService) *VoltageLevelHandler {
	return &VoltageLevelHandler{voltageLevelService: voltageLevelService}
}

func RegisterVoltageLevelRoutes(group *gin.RouterGroup, voltageLevelService *service.VoltageLevelService) {
	if voltageLevelService == nil {
		return
	}

	handler := NewVoltageLevelHandler(voltageLevelService)
	levels := group.Group("/voltage-levels")

	levels.GET("/", handler.List)
	levels.GET("/:id", handler.Get)

	levels.POST("/", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Create)
	levels.PUT("/:id", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Update)
	levels.DELETE("/:id", middleware.JWTAuth(), middleware.RequireRole("admin"), handler.Delete)
}

func (h *VoltageLevelHandler) List(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	filter := repository.CodelistListFilter{
		Pagination: paginationFrom(page, pageSize),
	}
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		cleaned := inputsanitize.Text(keyword)
		filter.Keyword = &cleaned
	}

	items, total, err := h.voltageLevelService.List(c.Request.Context(), filter)
	if err != nil {
		handleVoltageLevelServiceError(c, err)
		return
	}

	response.Paginated(c, items, page, pageSize, total)
}

func (h *VoltageLevelHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	item, err := h.voltageLevelService.FindByID(c.Request.Context(), id)
	if err != nil {
		handleVoltageLevelServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *VoltageLevelHandler) Create(c *gin.Context) {
	var req voltageLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	item, err := h.voltageLevelService.Create(c.Request.Context(), middleware.ActorFromContext(c), service.VoltageLevelInput{
		Code:        req.Code,
		NameCs:      req.NameCs,
		NameEn:      req.NameEn,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		handleVoltageLevelServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *VoltageLevelHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	var req voltageLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	item, err := h.voltageLevelService.Update(c.Request.Context(), middleware.ActorFromContext(c), id, service.VoltageLevelInput{
		Code:        req.Code,
		NameCs:      req.NameCs,
		NameEn:      req.NameEn,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		handleVoltageLevelServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *VoltageLevelHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	if err := h.voltageLevelService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		handleVoltageLevelServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func handleVoltageLevelServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVoltageLevelNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCodelistNotFound, "voltage level not found")
	case errors.Is(err, service.ErrVoltageLevelCodeExists):
		response.Fail(c, http.StatusConflict, response.ErrCodeConflict, "voltage level code already exists")
	case errors.Is(err, service.ErrInvalidVoltageLevelInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
