package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvforge/internal/api/middleware"
	"cvforge/internal/database"
	"cvforge/internal/tasks"
)

// TemplateHandler 负责模板目录。
// 普通用户只读；模板的增改走内部密钥保护的管理路由。
type TemplateHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
}

func NewTemplateHandler(db *gorm.DB, asynqClient *asynq.Client) *TemplateHandler {
	return &TemplateHandler{db: db, asynqClient: asynqClient}
}

// enqueueTemplatePreview 触发缩略图重新生成。失败只记日志，不影响管理操作结果。
func (h *TemplateHandler) enqueueTemplatePreview(c *gin.Context, templateID uint) {
	if h.asynqClient == nil {
		return
	}
	task, err := tasks.NewTemplatePreviewTask(templateID, middleware.GetCorrelationID(c))
	if err == nil {
		_, err = h.asynqClient.Enqueue(task, asynq.MaxRetry(3))
	}
	if err != nil {
		middleware.LoggerFromContext(c).Warn("enqueue template preview failed",
			slog.Uint64("template_id", uint64(templateID)), slog.Any("error", err))
	}
}

type templateListItem struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	IsPremium       bool   `json:"is_premium"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

type templateDetailResponse struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Description     string         `json:"description,omitempty"`
	IsPremium       bool           `json:"is_premium"`
	PreviewImageURL string         `json:"preview_image_url,omitempty"`
	Config          datatypes.JSON `json:"config"`
}

// GET /v1/templates
// 列表：支持 category 与 is_premium 过滤，最新的在前。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Template{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if premiumStr := c.Query("is_premium"); premiumStr != "" {
		premium, err := strconv.ParseBool(premiumStr)
		if err != nil {
			BadRequest(c, "invalid is_premium filter")
			return
		}
		query = query.Where("is_premium = ?", premium)
	}

	var templates []database.Template
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		Internal(c, "failed to list templates")
		return
	}

	items := make([]templateListItem, 0, len(templates))
	for _, t := range templates {
		items = append(items, templateListItem{
			ID:              t.ID,
			Name:            t.Name,
			Category:        t.Category,
			IsPremium:       t.IsPremium,
			PreviewImageURL: t.PreviewImageURL,
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid template id")
		return
	}

	var model database.Template
	if err := h.db.WithContext(c.Request.Context()).First(&model, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return
	}

	c.JSON(http.StatusOK, templateDetailResponse{
		ID:              model.ID,
		Name:            model.Name,
		Category:        model.Category,
		Description:     model.Description,
		IsPremium:       model.IsPremium,
		PreviewImageURL: model.PreviewImageURL,
		Config:          model.Config,
	})
}

type upsertTemplateRequest struct {
	Name        string         `json:"name" binding:"required"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	IsPremium   bool           `json:"is_premium"`
	Config      datatypes.JSON `json:"config" binding:"required"`
}

// POST /v1/internal/templates（内部密钥保护）
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req upsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	model := database.Template{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsPremium:   req.IsPremium,
		Config:      req.Config,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&model).Error; err != nil {
		Internal(c, "failed to create template")
		return
	}

	h.enqueueTemplatePreview(c, model.ID)
	c.JSON(http.StatusCreated, gin.H{"id": model.ID, "name": model.Name})
}

// PUT /v1/internal/templates/:id（内部密钥保护）
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req upsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid template id")
		return
	}

	ctx := c.Request.Context()
	var model database.Template
	if err := h.db.WithContext(ctx).First(&model, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return
	}

	if err := h.db.WithContext(ctx).Model(&model).Updates(map[string]any{
		"name":        req.Name,
		"category":    req.Category,
		"description": req.Description,
		"is_premium":  req.IsPremium,
		"config":      req.Config,
	}).Error; err != nil {
		Internal(c, "failed to update template")
		return
	}

	h.enqueueTemplatePreview(c, model.ID)
	c.JSON(http.StatusOK, gin.H{"id": model.ID})
}

// DELETE /v1/internal/templates/:id（内部密钥保护）
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid template id")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Delete(&database.Template{}, uint(id)).Error; err != nil {
		Internal(c, "failed to delete template")
		return
	}
	c.Status(http.StatusNoContent)
}
