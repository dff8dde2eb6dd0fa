package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cermakludek/legislative-enums-sub000/internal/api/middleware"
	"github.com/cermakludek/legislative-enums-sub000/internal/api/response"
	inputsanitize "github.com/cermakludek/legislative-enums-sub000/internal/api/sanitize"
	"github.com/cermakludek/legislative-enums-sub000/internal/repository"
	"github.com/cermakludek/legislative-enums-sub000/internal/service"
)

type ClassificationHandler struct {
	classificationService *service.ClassificationService
}

type classificationRequest struct {
	Code      string  `json:"code" binding:"required"`
	NameCs    string  `json:"name_cs" binding:"required"`
	NameEn    *string `json:"name_en"`
	Level     int     `json:"level" binding:"required"`
	ParentID  *int64  `json:"parent_id"`
	ValidFrom *string `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
	SortOrder int     `json:"sort_order"`
}

func NewClassificationHandler(classificationService *service.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{classificationService: classificationService}
}

func RegisterClassificationRoutes(group *gin.RouterGroup, classificationService *service.ClassificationService) {
	if classificationService == nil {
		return
	}

	handler := NewClassificationHandler(classificationService)
	nodes := group.Group("/classifications")

	nodes.GET("/", handler.List)
	nodes.GET("/tree", handler.Tree)
	nodes.GET("/search", handler.Search)
	nodes.GET("/possible-parents", handler.PossibleParents)
	nodes.GET("/:id", handler.Get)
	nodes.GET("/:id/children", handler.Children)
	nodes.GET("/:id/subtree", handler.Subtree)

	nodes.POST("/", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Create)
	nodes.PUT("/:id", middleware.JWTAuth(), middleware.RequireRole("admin", "editor"), handler.Update)
	nodes.DELETE("/:id", middleware.JWTAuth(), middleware.RequireRole("admin"), handler.Delete)
}

func (h *ClassificationHandler) List(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	filter := repository.ClassificationListFilter{
		Pagination: paginationFrom(page, pageSize),
	}
	if raw := strings.TrimSpace(c.Query("level")); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid level")
			return
		}
		filter.Level = &level
	}
	if raw := strings.TrimSpace(c.Query("parent_id")); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid parent_id")
			return
		}
		filter.ParentID = &parentID
	}
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		cleaned := inputsanitize.Text(keyword)
		filter.Keyword = &cleaned
	}

	items, total, err := h.classificationService.List(c.Request.Context(), filter)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Paginated(c, items, page, pageSize, total)
}

func (h *ClassificationHandler) Tree(c *gin.Context) {
	roots, err := h.classificationService.FindTree(c.Request.Context())
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, roots)
}

func (h *ClassificationHandler) Search(c *gin.Context) {
	query := inputsanitize.Text(c.Query("q"))

	items, err := h.classificationService.Search(c.Request.Context(), query)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, items)
}

func (h *ClassificationHandler) PossibleParents(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("level"))
	level, err := strconv.Atoi(raw)
	if raw == "" || err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid level")
		return
	}

	parents, err := h.classificationService.GetPossibleParents(c.Request.Context(), level)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, parents)
}

func (h *ClassificationHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	node, err := h.classificationService.FindByID(c.Request.Context(), id)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, node)
}

func (h *ClassificationHandler) Children(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	children, err := h.classificationService.FindChildren(c.Request.Context(), id)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, children)
}

func (h *ClassificationHandler) Subtree(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	node, err := h.classificationService.FindWithChildren(c.Request.Context(), id)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, node)
}

func (h *ClassificationHandler) Create(c *gin.Context) {
	input, ok := bindClassificationInput(c)
	if !ok {
		return
	}

	node, err := h.classificationService.Create(c.Request.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, node)
}

func (h *ClassificationHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	input, ok := bindClassificationInput(c)
	if !ok {
		return
	}

	node, err := h.classificationService.Update(c.Request.Context(), middleware.ActorFromContext(c), id, input)
	if err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, node)
}

func (h *ClassificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid id")
		return
	}

	if err := h.classificationService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		handleClassificationServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func bindClassificationInput(c *gin.Context) (service.ClassificationInput, bool) {
	var req classificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return service.ClassificationInput{}, false
	}

	validFrom, err := parseDatePtr(req.ValidFrom)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid valid_from")
		return service.ClassificationInput{}, false
	}
	validTo, err := parseDatePtr(req.ValidTo)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid valid_to")
		return service.ClassificationInput{}, false
	}

	return service.ClassificationInput{
		Code:      req.Code,
		NameCs:    req.NameCs,
		NameEn:    req.NameEn,
		Level:     req.Level,
		ParentID:  req.ParentID,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		SortOrder: req.SortOrder,
	}, true
}

// parseDatePtr accepts RFC3339 timestamps and bare dates; validity bounds in
// the legislative source material are usually dates only.
func parseDatePtr(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		utc := ts.UTC()
		return &utc, nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		utc := ts.UTC()
		return &utc, nil
	}

	return nil, errors.New("invalid time")
}

func handleClassificationServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassificationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCodelistNotFound, "classification node not found")
	case errors.Is(err, service.ErrClassificationCodeExists):
		response.Fail(c, http.StatusConflict, response.ErrCodeConflict, "classification code already exists")
	case errors.Is(err, service.ErrInvalidLevel):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidLevel, "level must be between 1 and 4")
	case errors.Is(err, service.ErrParentRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrParentRequired, "parent is required below the top level")
	case errors.Is(err, service.ErrParentNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrParentNotFound, "parent classification node not found")
	case errors.Is(err, service.ErrHasChildren):
		response.Fail(c, http.StatusConflict, response.ErrHasChildren, "classification node still has children")
	case errors.Is(err, service.ErrInvalidClassificationInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
