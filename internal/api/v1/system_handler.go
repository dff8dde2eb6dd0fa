package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
	loggerpkg "github.com/cermakludek/legislative-enums-sub000/pkg/logger"
)

type SystemHandler struct {
	systemService *service.SystemService
	logStore      *loggerpkg.SystemLogStore
}

func NewSystemHandler(systemService *service.SystemService, logStore *loggerpkg.SystemLogStore) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		logStore:      logStore,
	}
}

func RegisterSystemRoutes(group *gin.RouterGroup, systemService *service.SystemService, logStore *loggerpkg.SystemLogStore) {
	if systemService == nil {
		return
	}

	handler := NewSystemHandler(systemService, logStore)
	system := group.Group("/system")
	system.Use(middleware.JWTAuth(), middleware.RequireRole("admin"))

	system.GET("/status", handler.Status)
	system.GET("/logs", handler.Logs)
}

func (h *SystemHandler) Status(c *gin.Context) {
	status, err := h.systemService.Status(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	response.Success(c, status)
}

func (h *SystemHandler) Logs(c *gin.Context) {
	if h.logStore == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal, "log store unavailable")
		return
	}

	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 50)
	level := strings.TrimSpace(c.Query("level"))

	entries, total := h.logStore.List(page, pageSize, level)
	response.Paginated(c, entries, page, pageSize, total)
}
