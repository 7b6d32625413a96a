package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"cvforge/internal/ai"
	"cvforge/internal/api/middleware"
	"cvforge/internal/cv"
	"cvforge/internal/database"
	"cvforge/internal/preview"
	"cvforge/internal/tasks"
)

// CVHandler 是简历文档的持久化网关与预览入口。
// 每个项目至多一份 CV，upsert 以项目 id 为键；所有操作每次都重新校验项目所有权。
type CVHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	suggester   ai.Suggester
}

// NewCVHandler 构造 CVHandler。
func NewCVHandler(db *gorm.DB, asynqClient *asynq.Client, suggester ai.Suggester) *CVHandler {
	return &CVHandler{
		db:          db,
		asynqClient: asynqClient,
		suggester:   suggester,
	}
}

type cvResponse struct {
	Exists    bool         `json:"exists"`
	ID        uint         `json:"id,omitempty"`
	ProjectID uint         `json:"project_id,omitempty"`
	Document  *cv.Document `json:"document,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// GetProjectCV 返回项目的 CV 文档。
// 文档尚不存在不是错误：返回 200 与 exists:false，调用方在首次保存时创建。
func (h *CVHandler) GetProjectCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	var model database.CVDocument
	if err := h.db.WithContext(ctx).Where("project_id = ?", project.ID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, cvResponse{Exists: false})
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	doc, err := model.Document()
	if err != nil {
		Internal(c, "failed to decode cv")
		return
	}

	c.JSON(http.StatusOK, cvResponse{
		Exists:    true,
		ID:        model.ID,
		ProjectID: model.ProjectID,
		Document:  &doc,
		UpdatedAt: model.UpdatedAt,
	})
}

// UpsertProjectCV 以项目为键做 create-or-update。
// 请求体是字段级补丁：缺省字段保留既有值；updated_at 由服务端维护。
func (h *CVHandler) UpsertProjectCV(c *gin.Context) {
	var patch cv.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	model, err := h.upsertDocument(ctx, project.ID, userID, patch)
	if err != nil {
		Internal(c, "failed to save cv")
		return
	}

	doc, err := model.Document()
	if err != nil {
		Internal(c, "failed to decode cv")
		return
	}

	c.JSON(http.StatusOK, cvResponse{
		Exists:    true,
		ID:        model.ID,
		ProjectID: model.ProjectID,
		Document:  &doc,
		UpdatedAt: model.UpdatedAt,
	})
}

// upsertDocument 加载（或初始化）文档、应用补丁并整体写回。
// 并发首次保存时 project_id 唯一索引兜底，冲突方重读后重试一次。
func (h *CVHandler) upsertDocument(ctx context.Context, projectID, userID uint, patch cv.DocumentPatch) (*database.CVDocument, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var model database.CVDocument
		err := h.db.WithContext(ctx).Where("project_id = ?", projectID).First(&model).Error
		creating := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !creating {
			return nil, err
		}

		existing := cv.Document{}
		if !creating {
			if existing, err = model.Document(); err != nil {
				return nil, err
			}
		}

		next := patch.Apply(existing)
		if creating {
			model = database.CVDocument{ProjectID: projectID, UserID: userID}
		}
		if err := model.SetDocument(next); err != nil {
			return nil, err
		}

		if creating {
			if err := h.db.WithContext(ctx).Create(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
					continue
				}
				return nil, err
			}
			return &model, nil
		}

		if err := h.db.WithContext(ctx).Save(&model).Error; err != nil {
			return nil, err
		}
		return &model, nil
	}
	return nil, gorm.ErrDuplicatedKey
}

// DeleteCV 删除指定 CV 文档（按文档 id 寻址，归属校验同样合并为 404）。
func (h *CVHandler) DeleteCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	cvID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid cv id")
		return
	}

	ctx := c.Request.Context()
	var model database.CVDocument
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(cvID), userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.CVDocument{}, model.ID).Error; err != nil {
		Internal(c, "failed to delete cv")
		return
	}

	c.Status(http.StatusNoContent)
}

// PreviewProjectCV 同步渲染预览 HTML。
// 选中模板缺失或无模板时使用默认配置；渲染是纯函数，不触达对象存储。
func (h *CVHandler) PreviewProjectCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	model, doc, err := h.loadProjectDocument(ctx, project.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not found")
			return
		}
		Internal(c, "failed to load cv")
		return
	}

	cfg := h.templateConfigFor(ctx, model.TemplateID)
	html, err := preview.Render(doc, cfg)
	if err != nil {
		Internal(c, "failed to render preview")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// SnapshotProjectCV 将快照生成任务入队并立即返回 202。
func (h *CVHandler) SnapshotProjectCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	var model database.CVDocument
	if err := h.db.WithContext(ctx).Where("project_id = ?", project.ID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPreviewSnapshotTask(model.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue snapshot generation")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "snapshot generation request accepted",
		"task_id": info.ID,
	})
}

// GetSuggestions 返回针对当前文档的建议清单。来源是同步的规则建议器。
func (h *CVHandler) GetSuggestions(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	_, doc, err := h.loadProjectDocument(ctx, project.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		Internal(c, "failed to load cv")
		return
	}

	suggestions, err := h.suggester.Suggest(ctx, doc)
	if err != nil {
		Internal(c, "failed to generate suggestions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ApplySuggestion 把一条建议合并进文档并通过同一条 upsert 路径持久化。
// 建议走与手工编辑完全相同的更新操作，没有任何旁路。
func (h *CVHandler) ApplySuggestion(c *gin.Context) {
	var suggestion cv.Suggestion
	if err := c.ShouldBindJSON(&suggestion); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	_, doc, err := h.loadProjectDocument(ctx, project.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		Internal(c, "failed to load cv")
		return
	}

	editor := cv.NewEditor(project.ID, gatewayFunc(h.upsertForUser(userID)), nil)
	editor.Load(doc)
	if err := editor.ApplySuggestion(suggestion); err != nil {
		switch {
		case errors.Is(err, cv.ErrSuggestionNotApplicable):
			c.JSON(http.StatusOK, gin.H{"applied": false, "reason": "informational only"})
		case errors.Is(err, cv.ErrMalformedSuggestion):
			BadRequest(c, "malformed suggestion")
		default:
			Internal(c, "failed to apply suggestion")
		}
		return
	}

	if err := editor.Save(ctx); err != nil {
		Internal(c, "failed to save cv")
		return
	}

	updated := editor.Document()
	c.JSON(http.StatusOK, gin.H{"applied": true, "document": updated})
}

// gatewayFunc 让闭包满足 cv.Gateway。
type gatewayFunc func(ctx context.Context, projectID uint, patch cv.DocumentPatch) (cv.Document, error)

func (f gatewayFunc) Upsert(ctx context.Context, projectID uint, patch cv.DocumentPatch) (cv.Document, error) {
	return f(ctx, projectID, patch)
}

func (h *CVHandler) upsertForUser(userID uint) func(ctx context.Context, projectID uint, patch cv.DocumentPatch) (cv.Document, error) {
	return func(ctx context.Context, projectID uint, patch cv.DocumentPatch) (cv.Document, error) {
		model, err := h.upsertDocument(ctx, projectID, userID, patch)
		if err != nil {
			return cv.Document{}, err
		}
		return model.Document()
	}
}

func (h *CVHandler) loadProjectDocument(ctx context.Context, projectID uint) (*database.CVDocument, cv.Document, error) {
	var model database.CVDocument
	if err := h.db.WithContext(ctx).Where("project_id = ?", projectID).First(&model).Error; err != nil {
		return nil, cv.Document{}, err
	}
	doc, err := model.Document()
	if err != nil {
		return nil, cv.Document{}, err
	}
	return &model, doc, nil
}

func (h *CVHandler) templateConfigFor(ctx context.Context, templateID *uint) cv.TemplateConfig {
	if templateID == nil {
		return cv.DefaultTemplateConfig()
	}
	var tpl database.Template
	if err := h.db.WithContext(ctx).First(&tpl, *templateID).Error; err != nil {
		return cv.DefaultTemplateConfig()
	}
	return tpl.TemplateConfigOrDefault()
}
