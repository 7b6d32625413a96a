package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePreviewSnapshot = "cv:preview_snapshot"
	TypeTemplatePreview = "template:preview"
)

// PreviewSnapshotPayload 描述生成 CV 预览快照所需的最小信息。
type PreviewSnapshotPayload struct {
	CVDocumentID  uint   `json:"cv_document_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewPreviewSnapshotTask 构造一个新的快照生成任务。
func NewPreviewSnapshotTask(cvDocumentID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PreviewSnapshotPayload{
		CVDocumentID:  cvDocumentID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePreviewSnapshot, payload), nil
}

// TemplatePreviewPayload 描述生成模板缩略图所需的最小信息。
type TemplatePreviewPayload struct {
	TemplateID    uint   `json:"template_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewTemplatePreviewTask 构造一个新的模板缩略图任务。
func NewTemplatePreviewTask(templateID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TemplatePreviewPayload{
		TemplateID:    templateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTemplatePreview, payload), nil
}
