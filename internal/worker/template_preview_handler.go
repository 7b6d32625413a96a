package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"cvforge/internal/cv"
	"cvforge/internal/database"
	"cvforge/internal/preview"
	"cvforge/internal/snapshot"
	"cvforge/internal/storage"
	"cvforge/internal/tasks"
)

// TemplatePreviewHandler 负责模板缩略图生成任务：
// 用示例文档套用模板配置渲染，截图后写回 preview_image_url。
type TemplatePreviewHandler struct {
	db      *gorm.DB
	storage *storage.Client
	logger  *slog.Logger
}

func NewTemplatePreviewHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	logger *slog.Logger,
) *TemplatePreviewHandler {
	return &TemplatePreviewHandler{
		db:      db,
		storage: storageClient,
		logger:  logger,
	}
}

func (h *TemplatePreviewHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger

	var payload tasks.TemplatePreviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal template preview payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.Int("template_id", int(payload.TemplateID)),
		slog.String("correlation_id", payload.CorrelationID),
	)
	log.Info("Starting template preview generation task...")

	var template database.Template
	if err := h.db.WithContext(ctx).First(&template, payload.TemplateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("template not found, skipping task")
			return nil
		}
		log.Error("query template failed", slog.Any("error", err))
		return err
	}

	html, err := preview.Render(sampleDocument(), template.TemplateConfigOrDefault())
	if err != nil {
		log.Error("render template sample failed", slog.Any("error", err))
		return err
	}

	previewBytes, err := snapshot.CapturePNGFromHTML(html)
	if err != nil {
		log.Error("capture template screenshot failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("thumbnails/template/%d/preview.png", template.ID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(previewBytes), int64(len(previewBytes)), "image/png"); err != nil {
		log.Error("upload template preview failed", slog.Any("error", err))
		return err
	}

	const presignTTL = 7 * 24 * time.Hour
	url, err := h.storage.GeneratePresignedURL(ctx, objectName, presignTTL)
	if err != nil {
		log.Error("generate template preview url failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).
		Model(&template).
		Update("preview_image_url", url).Error; err != nil {
		log.Error("update template preview url failed", slog.Any("error", err))
		return err
	}

	log.Info("Template preview generation completed.")
	return nil
}

// sampleDocument 是模板缩略图使用的固定示例内容。
func sampleDocument() cv.Document {
	return cv.Document{
		Title: "Sample Resume",
		PersonalInfo: cv.PersonalInfo{
			FullName: "Alex Morgan",
			Title:    "Senior Software Engineer",
			Email:    "alex.morgan@example.com",
			Location: "Berlin, Germany",
			Summary:  "Engineer with a decade of experience building distributed systems.",
		},
		Experience: []cv.ExperienceEntry{
			{
				ID:          "sample-exp-1",
				Company:     "Acme Corp",
				Position:    "Senior Software Engineer",
				StartDate:   "2021-03",
				Current:     true,
				Description: "Leads the platform team.",
			},
		},
		Education: []cv.EducationEntry{
			{
				ID:          "sample-edu-1",
				Institution: "Technical University",
				Degree:      "B.Sc.",
				Field:       "Computer Science",
				StartDate:   "2012-09",
				EndDate:     "2016-06",
			},
		},
		Skills: []cv.SkillCategory{
			{ID: "sample-skill-1", Category: "Languages", Items: []string{"Go", "TypeScript"}},
		},
	}
}
