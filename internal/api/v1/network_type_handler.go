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

type NetworkTypeHandler struct {
	networkTypeService *service.NetworkTypeService
}

type networkTypeRequest struct {
	Code        string  `json:"code" binding:"required"`
	NameCs      string  `json:"name_cs" binding:"required"`
	NameEn      *string `json:"name_en"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

func NewNetworkTypeHandler(networkTypeService *service.NetworkTypeService) *NetworkTypeHandler {
	return &NetworkTypeHandler{networkTypeService: networkTypeService}
}

func RegisterNetworkTypeRoutes(group *gin.RouterGroup, networkTypeService *service.NetworkTypeService) {
	if networkTypeService == nil {
		return
	}

	handler := NewNetworkTypeHandler(networkTypeService)
	types := group.Group("/network-types")

	types.GET("/", handler.List)
	types.GET("/:id", handler.Get)

	types.POST("/", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Create)
	types.PUT("/:id", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Update)
	types.DELETE("/:id", middleware.JWTAuth(), middleware.RequireRole("admin"), handler.Delete)
}

func (h *NetworkTypeHandler) List(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	filter := repository.CodelistListFilter{
		Pagination: paginationFrom(page, pageSize),
	}
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		cleaned := inputsanitize.Text(keyword)
		filter.Keyword = &cleaned
	}

	items, total, err := h.networkTypeService.List(c.Request.Context(), filter)
	if err != nil {
		handleNetworkTypeServiceError(c, err)
		return
	}

	response.Paginated(c, items, page, pageSize, total)
}

func (h *NetworkTypeHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	item, err := h.networkTypeService.FindByID(c.Request.Context(), id)
	if err != nil {
		handleNetworkTypeServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *NetworkTypeHandler) Create(c *gin.Context) {
	var req networkTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	item, err := h.networkTypeService.Create(c.Request.Context(), middleware.ActorFromContext(c), service.NetworkTypeInput{
		Code:        req.Code,
		NameCs:      req.NameCs,
		NameEn:      req.NameEn,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		handleNetworkTypeServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *NetworkTypeHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	var req networkTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	item, err := h.networkTypeService.Update(c.Request.Context(), middleware.ActorFromContext(c), id, service.NetworkTypeInput{
		Code:        req.Code,
		NameCs:      req.NameCs,
		NameEn:      req.NameEn,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		handleNetworkTypeServiceError(c, err)
		return
	}

	response.Success(c, item)
}

func (h *NetworkTypeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	if err := h.networkTypeService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		handleNetworkTypeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func handleNetworkTypeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNetworkTypeNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCodelistNotFound, "network type not found")
	case errors.Is(err, service.ErrNetworkTypeCodeExists):
		response.Fail(c, http.StatusConflict, response.ErrCodeConflict, "network type code already exists")
	case errors.Is(err, service.ErrInvalidNetworkTypeInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
