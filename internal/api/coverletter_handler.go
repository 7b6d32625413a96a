package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvforge/internal/database"
)

// CoverLetterHandler 负责项目内求职信的增删改查。
type CoverLetterHandler struct {
	db *gorm.DB
}

// NewCoverLetterHandler 构造 CoverLetterHandler。
func NewCoverLetterHandler(db *gorm.DB) *CoverLetterHandler {
	return &CoverLetterHandler{db: db}
}

type createCoverLetterRequest struct {
	Title          string `json:"title" binding:"required"`
	CompanyName    string `json:"company_name"`
	PositionTitle  string `json:"position_title"`
	Content        string `json:"content"`
	JobDescription string `json:"job_description"`
}

type updateCoverLetterRequest struct {
	Title          *string `json:"title"`
	CompanyName    *string `json:"company_name"`
	PositionTitle  *string `json:"position_title"`
	Content        *string `json:"content"`
	JobDescription *string `json:"job_description"`
}

type coverLetterResponse struct {
	ID             uint      `json:"id"`
	ProjectID      uint      `json:"project_id"`
	Title          string    `json:"title"`
	CompanyName    string    `json:"company_name,omitempty"`
	PositionTitle  string    `json:"position_title,omitempty"`
	Content        string    `json:"content,omitempty"`
	JobDescription string    `json:"job_description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newCoverLetterResponse(m database.CoverLetter) coverLetterResponse {
	return coverLetterResponse{
		ID:             m.ID,
		ProjectID:      m.ProjectID,
		Title:          m.Title,
		CompanyName:    m.CompanyName,
		PositionTitle:  m.PositionTitle,
		Content:        m.Content,
		JobDescription: m.JobDescription,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ListCoverLetters 列出项目内全部求职信，最近更新的在前。
func (h *CoverLetterHandler) ListCoverLetters(c *gin.Context) {
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

	var letters []database.CoverLetter
	if err := h.db.WithContext(ctx).
		Where("project_id = ?", project.ID).
		Order("updated_at DESC").
		Find(&letters).Error; err != nil {
		Internal(c, "failed to list cover letters")
		return
	}

	items := make([]coverLetterResponse, 0, len(letters))
	for _, m := range letters {
		items = append(items, newCoverLetterResponse(m))
	}
	c.JSON(http.StatusOK, items)
}

// CreateCoverLetter 在项目内新建求职信。
func (h *CoverLetterHandler) CreateCoverLetter(c *gin.Context) {
	var req createCoverLetterRequest
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

	ctx := c.Request.Context()
	project, err := getProjectForUser(ctx, h.db, c.Param("id"), userID)
	if err != nil {
		respondProjectLookupError(c, err)
		return
	}

	letter := database.CoverLetter{
		ProjectID:      project.ID,
		UserID:         userID,
		Title:          title,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		PositionTitle:  strings.TrimSpace(req.PositionTitle),
		Content:        req.Content,
		JobDescription: req.JobDescription,
	}

	if err := h.db.WithContext(ctx).Create(&letter).Error; err != nil {
		Internal(c, "failed to create cover letter")
		return
	}

	c.JSON(http.StatusCreated, newCoverLetterResponse(letter))
}

// GetCoverLetter 返回单封求职信。
func (h *CoverLetterHandler) GetCoverLetter(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	letter, err := h.getCoverLetterForUser(c, userID)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, newCoverLetterResponse(*letter))
}

// UpdateCoverLetter 局部更新：只改动请求中出现的字段。
func (h *CoverLetterHandler) UpdateCoverLetter(c *gin.Context) {
	var req updateCoverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	letter, err := h.getCoverLetterForUser(c, userID)
	if err != nil {
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
	if req.CompanyName != nil {
		updates["company_name"] = strings.TrimSpace(*req.CompanyName)
	}
	if req.PositionTitle != nil {
		updates["position_title"] = strings.TrimSpace(*req.PositionTitle)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.JobDescription != nil {
		updates["job_description"] = *req.JobDescription
	}

	ctx := c.Request.Context()
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(letter).Updates(updates).Error; err != nil {
			Internal(c, "failed to update cover letter")
			return
		}
		if err := h.db.WithContext(ctx).First(letter, letter.ID).Error; err != nil {
			Internal(c, "failed to reload cover letter")
			return
		}
	}

	c.JSON(http.StatusOK, newCoverLetterResponse(*letter))
}

// DeleteCoverLetter 删除单封求职信。
func (h *CoverLetterHandler) DeleteCoverLetter(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	letter, err := h.getCoverLetterForUser(c, userID)
	if err != nil {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Delete(&database.CoverLetter{}, letter.ID).Error; err != nil {
		Internal(c, "failed to delete cover letter")
		return
	}
	c.Status(http.StatusNoContent)
}

// getCoverLetterForUser 加载归属当前用户的求职信；失败时已写好响应。
func (h *CoverLetterHandler) getCoverLetterForUser(c *gin.Context, userID uint) (*database.CoverLetter, error) {
	letterID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid cover letter id")
		return nil, err
	}

	var letter database.CoverLetter
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", uint(letterID), userID).
		First(&letter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cover letter not found")
		} else {
			Internal(c, "failed to query cover letter")
		}
		return nil, err
	}
	return &letter, nil
}
