package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvforge/internal/api/middleware"
	"cvforge/internal/database"
	"cvforge/internal/storage"
)

// ProjectHandler 负责求职项目的增删改查。
// 所有权校验失败与记录不存在统一返回 404，不向调用方泄露项目是否存在。
type ProjectHandler struct {
	db      *gorm.DB
	storage *storage.Client
}

// NewProjectHandler 构造 ProjectHandler。
func NewProjectHandler(db *gorm.DB, storageClient *storage.Client) *ProjectHandler {
	return &ProjectHandler{db: db, storage: storageClient}
}

var errInvalidProjectID = errors.New("invalid project id")

type createProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Color       string `json:"color"`
}

type updateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Color       *string `json:"color"`
}

type projectResponse struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Status           string    `json:"status"`
	Color            string    `json:"color,omitempty"`
	CVCount          int64     `json:"cv_count"`
	CoverLetterCount int64     `json:"cover_letter_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func isValidProjectStatus(status string) bool {
	switch status {
	case database.ProjectStatusDraft, database.ProjectStatusActive, database.ProjectStatusArchived:
		return true
	}
	return false
}

// ListProjects 按状态/搜索词过滤并排序返回当前用户的全部项目。
// sort_by ∈ {created_at, updated_at, title}，order ∈ {asc, desc}；
// title 排序不区分大小写。每个条目附带 CV 与求职信数量。
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	query := h.db.WithContext(ctx).Model(&database.Project{}).Where("user_id = ?", userID)

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !isValidProjectStatus(status) {
			BadRequest(c, "invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	sortBy := c.DefaultQuery("sort_by", "updated_at")
	order := c.DefaultQuery("order", "desc")
	if order != "asc" && order != "desc" {
		BadRequest(c, "invalid order")
		return
	}
	switch sortBy {
	case "created_at", "updated_at":
		query = query.Order(sortBy + " " + order)
	case "title":
		query = query.Order("LOWER(title) " + order)
	default:
		BadRequest(c, "invalid sort_by")
		return
	}

	var projects []database.Project
	if err := query.Find(&projects).Error; err != nil {
		Internal(c, "failed to list projects")
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		item, err := h.newProjectResponse(ctx, p)
		if err != nil {
			Internal(c, "failed to count project documents")
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}

// GetProject 返回指定项目。
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	project, err := getProjectForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	item, err := h.newProjectResponse(c.Request.Context(), *project)
	if err != nil {
		Internal(c, "failed to count project documents")
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateProject 创建新项目，标题去除空白后不得为空。
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		BadRequest(c, "title must not be blank")
		return
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = database.ProjectStatusDraft
	}
	if !isValidProjectStatus(status) {
		BadRequest(c, "invalid status")
		return
	}

	project := database.Project{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		Color:       strings.TrimSpace(req.Color),
		UserID:      userID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
		Internal(c, "failed to create project")
		return
	}

	item, err := h.newProjectResponse(c.Request.Context(), project)
	if err != nil {
		Internal(c, "failed to count project documents")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateProject 局部更新：只改动请求中出现的字段，所有者不可变更。
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			BadRequest(c, "title must not be blank")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !isValidProjectStatus(*req.Status) {
			BadRequest(c, "invalid status")
			return
		}
		updates["status"] = *req.Status
	}
	if req.Color != nil {
		updates["color"] = strings.TrimSpace(*req.Color)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			Internal(c, "failed to update project")
			return
		}
		if err := h.db.WithContext(ctx).First(project, project.ID).Error; err != nil {
			Internal(c, "failed to reload project")
			return
		}
	}

	item, err := h.newProjectResponse(ctx, *project)
	if err != nil {
		Internal(c, "failed to count project documents")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteProject 在单个事务中删除项目与全部归属文档，不留孤儿记录。
// 对象存储里的快照在事务提交后按前缀清理，失败不影响删除结果。
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&database.CVDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&database.CoverLetter{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Project{}, project.ID).Error
	})
	if err != nil {
		Internal(c, "failed to delete project")
		return
	}

	if h.storage != nil {
		prefix := fmt.Sprintf("snapshots/%d/%d/", userID, project.ID)
		if err := h.storage.DeletePrefix(ctx, prefix); err != nil {
			middleware.LoggerFromContext(c).Warn("cleanup project snapshots failed",
				slog.String("prefix", prefix), slog.Any("error", err))
		}
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) newProjectResponse(ctx context.Context, p database.Project) (projectResponse, error) {
	var cvCount, letterCount int64
	if err := h.db.WithContext(ctx).Model(&database.CVDocument{}).
		Where("project_id = ?", p.ID).Count(&cvCount).Error; err != nil {
		return projectResponse{}, err
	}
	if err := h.db.WithContext(ctx).Model(&database.CoverLetter{}).
		Where("project_id = ?", p.ID).Count(&letterCount).Error; err != nil {
		return projectResponse{}, err
	}
	return projectResponse{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Status:           p.Status,
		Color:            p.Color,
		CVCount:          cvCount,
		CoverLetterCount: letterCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

// getProjectForUser 加载归属当前用户的项目。
// 项目不存在与归属他人不作区分，统一以 gorm.ErrRecordNotFound 上抛。
func getProjectForUser(ctx context.Context, db *gorm.DB, idParam string, userID uint) (*database.Project, error) {
	projectID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidProjectID
	}

	var project database.Project
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(projectID), userID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func respondProjectLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidProjectID):
		BadRequest(c, "invalid project id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "project not found")
	default:
		Internal(c, "failed to query project")
	}
}
