package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	"github.com/cermakludek/legislative-enums-sub000/internal/model"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

type AuditHandler struct {
	auditQuery *service.AuditQueryService
}

func NewAuditHandler(auditQuery *service.AuditQueryService) *AuditHandler {
	return &AuditHandler{auditQuery: auditQuery}
}

func RegisterAuditRoutes(group *gin.RouterGroup, auditQuery *service.AuditQueryService) {
	if auditQuery == nil {
		return
	}

	handler := NewAuditHandler(auditQuery)
	audit := group.Group("/audit")
	audit.Use(middleware.JWTAuth())

	audit.GET("/", handler.List)
	audit.GET("/entity-types", handler.EntityTypes)
	audit.GET("/authors", handler.Authors)
	audit.GET("/:id", handler.Get)
}

func (h *AuditHandler) List(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "unauthorized")
		return
	}
	if !isEditor(claims.Role) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, "forbidden")
		return
	}

	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	filter := service.AuditQueryFilter{}
	if raw := strings.TrimSpace(c.Query("entity_type")); raw != "" {
		filter.EntityType = &raw
	}
	if raw := strings.TrimSpace(c.Query("change_type")); raw != "" {
		changeType := model.ChangeType(strings.ToUpper(raw))
		if !changeType.Valid() {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid change_type")
			return
		}
		filter.ChangeType = &changeType
	}
	if raw := strings.TrimSpace(c.Query("changed_by")); raw != "" {
		filter.ChangedBy = &raw
	}
	if raw := strings.TrimSpace(c.Query("search")); raw != "" {
		filter.Search = &raw
	}

	// Sort params are bound so callers sending them get no error, but the
	// list is always newest first.
	if raw := strings.TrimSpace(c.Query("sort_by")); raw != "" {
		filter.SortBy = &raw
	}
	if raw := strings.TrimSpace(c.Query("sort_order")); raw != "" {
		filter.SortOrder = &raw
	}

	items, total, err := h.auditQuery.FindWithFilters(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Paginated(c, items, page, pageSize, total)
}

func (h *AuditHandler) Get(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "unauthorized")
		return
	}
	if !isEditor(claims.Role) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, "forbidden")
		return
	}

	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	entry, err := h.auditQuery.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}
	if entry == nil {
		response.Fail(c, http.StatusNotFound, response.ErrAuditNotFound, "audit entry not found")
		return
	}

	response.Success(c, entry)
}

func (h *AuditHandler) EntityTypes(c *gin.Context) {
	values, err := h.auditQuery.GetDistinctEntityTypes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, values)
}

func (h *AuditHandler) Authors(c *gin.Context) {
	values, err := h.auditQuery.GetDistinctChangedBy(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, values)
}
