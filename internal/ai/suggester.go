package ai

import (
	"context"
	"fmt"
	"strings"

	"cvforge/internal/cv"
)

// Suggester 是建议来源的抽象。实现必须同步返回，不做后台轮询，
// 方便测试注入假实现。
type Suggester interface {
	Suggest(ctx context.Context, doc cv.Document) ([]cv.Suggestion, error)
}

// StaticSuggester 基于固定规则生成建议，不调用任何外部服务。
// 相同文档输入产生相同输出。
type StaticSuggester struct{}

// NewStaticSuggester 返回规则建议器。
func NewStaticSuggester() *StaticSuggester {
	return &StaticSuggester{}
}

var defaultKeywords = []string{"Docker", "Kubernetes", "CI/CD"}

// Suggest 按文档现状生成建议清单。
func (s *StaticSuggester) Suggest(_ context.Context, doc cv.Document) ([]cv.Suggestion, error) {
	var out []cv.Suggestion

	if len(doc.Skills) > 0 {
		out = append(out, cv.Suggestion{
			ID:          "keyword-devops",
			Kind:        cv.SuggestionKeyword,
			Title:       "Add in-demand keywords",
			Description: "Recruiters frequently filter on these terms.",
			Keyword: &cv.KeywordSuggestion{
				CategoryID: doc.Skills[0].ID,
				Keywords:   append([]string(nil), defaultKeywords...),
			},
		})
	}

	if strings.TrimSpace(doc.PersonalInfo.Summary) == "" {
		text := "Results-driven professional with a track record of delivering measurable impact."
		if doc.PersonalInfo.Title != "" {
			text = fmt.Sprintf("Results-driven %s with a track record of delivering measurable impact.",
				strings.ToLower(doc.PersonalInfo.Title))
		}
		out = append(out, cv.Suggestion{
			ID:          "content-summary",
			Kind:        cv.SuggestionContent,
			Title:       "Write a professional summary",
			Description: "A short summary helps recruiters place you at a glance.",
			Content: &cv.ContentSuggestion{
				Section: "summary",
				Text:    text,
			},
		})
	}

	sections := []struct {
		name    string
		present bool
	}{
		{"experience", len(doc.Experience) > 0},
		{"education", len(doc.Education) > 0},
		{"certification", len(doc.Certifications) > 0},
		{"language", len(doc.Languages) > 0},
	}
	for _, sec := range sections {
		if sec.present {
			continue
		}
		section := sec.name
		out = append(out, cv.Suggestion{
			ID:          "structure-" + section,
			Kind:        cv.SuggestionStructure,
			Title:       "Add a " + section + " entry",
			Description: "This section is empty.",
			Structure:   &cv.StructureSuggestion{Section: section},
		})
	}

	out = append(out, cv.Suggestion{
		ID:    "ats-score",
		Kind:  cv.SuggestionATS,
		Title: "ATS compatibility",
		ATS:   atsReport(doc),
	})

	return out, nil
}

// atsReport 用固定规则打分：每个缺失维度扣分并记录问题。
func atsReport(doc cv.Document) *cv.ATSSuggestion {
	score := 100
	var issues []string

	deduct := func(points int, issue string) {
		score -= points
		issues = append(issues, issue)
	}

	if strings.TrimSpace(doc.PersonalInfo.Summary) == "" {
		deduct(15, "missing professional summary")
	}
	if doc.PersonalInfo.Email == "" {
		deduct(10, "missing contact email")
	}
	if len(doc.Experience) == 0 {
		deduct(25, "no work experience listed")
	}
	if len(doc.Skills) == 0 {
		deduct(20, "no skills listed")
	}
	if len(doc.Education) == 0 {
		deduct(10, "no education listed")
	}
	if score < 0 {
		score = 0
	}
	return &cv.ATSSuggestion{Score: score, Issues: issues}
}
