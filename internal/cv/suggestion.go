package cv

import "errors"

// SuggestionKind 是 AI 建议的判别标签。
type SuggestionKind string

// 建议种类；Apply 路径按 Kind 穷举匹配，不依赖数组位置或 id 字符串约定。
const (
	SuggestionKeyword   SuggestionKind = "keyword"
	SuggestionContent   SuggestionKind = "content"
	SuggestionStructure SuggestionKind = "structure"
	SuggestionATS       SuggestionKind = "ats"
)

var (
	// ErrMalformedSuggestion 表示建议的 Kind 与载荷不一致。
	ErrMalformedSuggestion = errors.New("suggestion payload does not match its kind")
	// ErrSuggestionNotApplicable 表示该建议仅供展示，没有可合并的修改。
	ErrSuggestionNotApplicable = errors.New("suggestion is informational only")
)

// Suggestion 是带判别标签的联合类型：Kind 决定哪个载荷字段有效。
// 建议来源是黑盒（外部 AI 服务），应用建议必须走与手工编辑完全相同的更新操作。
type Suggestion struct {
	ID          string               `json:"id"`
	Kind        SuggestionKind       `json:"kind"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Keyword     *KeywordSuggestion   `json:"keyword,omitempty"`
	Content     *ContentSuggestion   `json:"content,omitempty"`
	Structure   *StructureSuggestion `json:"structure,omitempty"`
	ATS         *ATSSuggestion       `json:"ats,omitempty"`
}

// KeywordSuggestion 建议向某个技能分组补充关键词。
type KeywordSuggestion struct {
	CategoryID string   `json:"category_id"`
	Keywords   []string `json:"keywords"`
}

// ContentSuggestion 建议替换某个文本字段的内容。
// Section 取 "summary" 或 "experience"；后者需要 EntryID 定位条目。
type ContentSuggestion struct {
	Section string `json:"section"`
	EntryID string `json:"entry_id,omitempty"`
	Text    string `json:"text"`
}

// StructureSuggestion 建议补充一个缺失的分区条目。
// Section 取 "experience"、"education"、"certification" 或 "language"。
type StructureSuggestion struct {
	Section string `json:"section"`
}

// ATSSuggestion 携带 ATS 评分与问题清单，仅供展示。
type ATSSuggestion struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// ApplySuggestion 把建议合并进文档。
// 合并路径与手工编辑完全一致：关键词走 AddSkill，文本走 SetSummary/UpdateExperience，
// 结构建议走对应的 Add 操作。AI 来源的修改不做任何特殊处理。
func (e *Editor) ApplySuggestion(s Suggestion) error {
	switch s.Kind {
	case SuggestionKeyword:
		if s.Keyword == nil {
			return ErrMalformedSuggestion
		}
		for _, kw := range s.Keyword.Keywords {
			e.AddSkill(s.Keyword.CategoryID, kw)
		}
		return nil
	case SuggestionContent:
		if s.Content == nil {
			return ErrMalformedSuggestion
		}
		switch s.Content.Section {
		case "summary":
			e.SetSummary(s.Content.Text)
			return nil
		case "experience":
			text := s.Content.Text
			e.UpdateExperience(s.Content.EntryID, ExperiencePatch{Description: &text})
			return nil
		default:
			return ErrMalformedSuggestion
		}
	case SuggestionStructure:
		if s.Structure == nil {
			return ErrMalformedSuggestion
		}
		switch s.Structure.Section {
		case "experience":
			e.AddExperience()
		case "education":
			e.AddEducation()
		case "certification":
			e.AddCertification()
		case "language":
			e.AddLanguage()
		default:
			return ErrMalformedSuggestion
		}
		return nil
	case SuggestionATS:
		if s.ATS == nil {
			return ErrMalformedSuggestion
		}
		return ErrSuggestionNotApplicable
	default:
		return ErrMalformedSuggestion
	}
}
