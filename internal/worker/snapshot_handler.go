package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvforge/internal/cv"
	"cvforge/internal/database"
	"cvforge/internal/errcode"
	"cvforge/internal/preview"
	"cvforge/internal/snapshot"
	"cvforge/internal/storage"
	"cvforge/internal/tasks"
)

// SnapshotTaskHandler 负责消费 CV 预览快照生成任务。
type SnapshotTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewSnapshotTaskHandler 创建任务处理器。
func NewSnapshotTaskHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
) *SnapshotTaskHandler {
	return &SnapshotTaskHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *SnapshotTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.PreviewSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("cv_document_id", int(payload.CVDocumentID)),
	)
	log.Info("Starting preview snapshot task...")

	var model database.CVDocument
	if err := h.db.WithContext(ctx).First(&model, payload.CVDocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("cv document not found, skipping task")
			return nil
		}
		log.Error("query cv document failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(model.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := SnapshotNotifyMessage{
			Status:        "error",
			CVDocumentID:  model.ID,
			ProjectID:     model.ProjectID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishSnapshotNotify(ctx, model.UserID, notify); err != nil {
			log.Error("publish snapshot error notification failed", slog.Any("error", err))
		}
	}()

	doc, err := model.Document()
	if err != nil {
		log.Error("decode cv document failed", slog.Any("error", err))
		return err
	}

	cfg := h.templateConfig(ctx, model.TemplateID)
	html, err := preview.Render(doc, cfg)
	if err != nil {
		log.Error("render preview html failed", slog.Any("error", err))
		return err
	}

	pngBytes, err := snapshot.CapturePNGFromHTML(html)
	if err != nil {
		log.Error("capture snapshot failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("snapshots/%d/%d/%d.png", model.UserID, model.ProjectID, time.Now().UnixMilli())
	reader := bytes.NewReader(pngBytes)
	if _, err := h.storage.UploadFile(ctx, objectName, reader, int64(len(pngBytes)), "image/png"); err != nil {
		log.Error("upload snapshot to minio failed", slog.Any("error", err))
		return err
	}

	previousKey := model.SnapshotKey
	if err := h.db.WithContext(ctx).Model(&model).
		Update("snapshot_key", objectName).Error; err != nil {
		log.Error("update cv document snapshot key failed", slog.Any("error", err))
		return err
	}

	if previousKey != "" && previousKey != objectName {
		if err := h.storage.DeleteObject(ctx, previousKey); err != nil {
			log.Warn("delete stale snapshot failed",
				slog.String("object_key", previousKey), slog.Any("error", err))
		}
	}

	notify := SnapshotNotifyMessage{
		Status:        "completed",
		CVDocumentID:  model.ID,
		ProjectID:     model.ProjectID,
		SnapshotKey:   objectName,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := h.publishSnapshotNotify(ctx, model.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("Preview snapshot task completed successfully.")
	return nil
}

func (h *SnapshotTaskHandler) templateConfig(ctx context.Context, templateID *uint) cv.TemplateConfig {
	if templateID == nil {
		return cv.DefaultTemplateConfig()
	}
	var tpl database.Template
	if err := h.db.WithContext(ctx).First(&tpl, *templateID).Error; err != nil {
		return cv.DefaultTemplateConfig()
	}
	return tpl.TemplateConfigOrDefault()
}

func (h *SnapshotTaskHandler) publishSnapshotNotify(ctx context.Context, userID uint, notify SnapshotNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
