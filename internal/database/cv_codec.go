package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"cvforge/internal/cv"
)

// Document 将 CVDocument 的 JSONB 列解码为结构化的 cv.Document。
// 空列视为零值，不报错；损坏的 JSON 属于系统错误。
func (m *CVDocument) Document() (cv.Document, error) {
	doc := cv.Document{
		Title:      m.Title,
		TemplateID: m.TemplateID,
	}
	if err := decodeColumn(m.PersonalInfo, &doc.PersonalInfo); err != nil {
		return cv.Document{}, fmt.Errorf("decode personal_info: %w", err)
	}
	if err := decodeColumn(m.Experience, &doc.Experience); err != nil {
		return cv.Document{}, fmt.Errorf("decode experience: %w", err)
	}
	if err := decodeColumn(m.Education, &doc.Education); err != nil {
		return cv.Document{}, fmt.Errorf("decode education: %w", err)
	}
	if err := decodeColumn(m.Skills, &doc.Skills); err != nil {
		return cv.Document{}, fmt.Errorf("decode skills: %w", err)
	}
	if err := decodeColumn(m.Certifications, &doc.Certifications); err != nil {
		return cv.Document{}, fmt.Errorf("decode certifications: %w", err)
	}
	if err := decodeColumn(m.Languages, &doc.Languages); err != nil {
		return cv.Document{}, fmt.Errorf("decode languages: %w", err)
	}
	return doc, nil
}

// SetDocument 将结构化文档编码回各 JSONB 列。
func (m *CVDocument) SetDocument(doc cv.Document) error {
	m.Title = doc.Title
	m.TemplateID = doc.TemplateID

	var err error
	if m.PersonalInfo, err = encodeColumn(doc.PersonalInfo); err != nil {
		return fmt.Errorf("encode personal_info: %w", err)
	}
	if m.Experience, err = encodeColumn(doc.Experience); err != nil {
		return fmt.Errorf("encode experience: %w", err)
	}
	if m.Education, err = encodeColumn(doc.Education); err != nil {
		return fmt.Errorf("encode education: %w", err)
	}
	if m.Skills, err = encodeColumn(doc.Skills); err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	if m.Certifications, err = encodeColumn(doc.Certifications); err != nil {
		return fmt.Errorf("encode certifications: %w", err)
	}
	if m.Languages, err = encodeColumn(doc.Languages); err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}
	return nil
}

// TemplateConfigOrDefault 解码模板配置；空或损坏的配置回退默认值。
func (t *Template) TemplateConfigOrDefault() cv.TemplateConfig {
	cfg := cv.DefaultTemplateConfig()
	if len(t.Config) == 0 {
		return cfg
	}
	if err := json.Unmarshal(t.Config, &cfg); err != nil {
		return cv.DefaultTemplateConfig()
	}
	if cfg.Layout == "" {
		cfg.Layout = cv.LayoutSingleColumn
	}
	return cfg
}

func decodeColumn(col datatypes.JSON, out any) error {
	if len(col) == 0 {
		return nil
	}
	return json.Unmarshal(col, out)
}

func encodeColumn(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
