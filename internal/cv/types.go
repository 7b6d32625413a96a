package cv

// Document 表示一份完整的简历文档（存储在 CVDocument 各 JSONB 列中的结构化数据）。
// 所有切片均为有序序列，条目 id 在各自序列内唯一，由客户端生成后整个会话保持稳定。
type Document struct {
	Title          string               `json:"title"`
	TemplateID     *uint                `json:"template_id,omitempty"`
	PersonalInfo   PersonalInfo         `json:"personal_info"`
	Experience     []ExperienceEntry    `json:"experience"`
	Education      []EducationEntry     `json:"education"`
	Skills         []SkillCategory      `json:"skills"`
	Certifications []CertificationEntry `json:"certifications,omitempty"`
	Languages      []LanguageEntry      `json:"languages,omitempty"`
}

// PersonalInfo 描述抬头与联系方式，除序列 id 外全部可选。
type PersonalInfo struct {
	FullName string `json:"full_name,omitempty"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// ExperienceEntry 表示一段工作经历。
// 约束：Current 为 true 时 EndDate 必须为空；StartDate 必填，格式 "YYYY-MM"。
type ExperienceEntry struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

// EducationEntry 表示一段教育经历。
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

// SkillCategory 表示一个技能分组。Items 内不允许出现完全相同的字符串。
type SkillCategory struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// CertificationEntry 表示一条认证记录。
type CertificationEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url,omitempty"`
}

// LanguageEntry 表示一条语言能力记录。
type LanguageEntry struct {
	ID          string `json:"id"`
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// TemplateConfig 是模板 Config(JSONB) 的结构化形式，编辑侧只读。
type TemplateConfig struct {
	Colors TemplateColors `json:"colors"`
	Fonts  TemplateFonts  `json:"fonts"`
	Layout string         `json:"layout"`
}

// TemplateColors 描述模板配色。
type TemplateColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Text      string `json:"text"`
}

// TemplateFonts 描述模板字体。
type TemplateFonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// 支持的布局取值；未知取值一律回退 LayoutSingleColumn。
const (
	LayoutSingleColumn = "single-column"
	LayoutTwoColumn    = "two-column"
)

// DefaultTemplateConfig 返回未选择模板时使用的默认配置。
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		Colors: TemplateColors{
			Primary:   "#2563eb",
			Secondary: "#64748b",
			Text:      "#1e293b",
		},
		Fonts: TemplateFonts{
			Heading: "Inter",
			Body:    "Inter",
		},
		Layout: LayoutSingleColumn,
	}
}

// Clone 返回文档的深拷贝，切片不与原文档共享底层数组。
func (d Document) Clone() Document {
	out := d
	if d.TemplateID != nil {
		id := *d.TemplateID
		out.TemplateID = &id
	}
	out.Experience = append([]ExperienceEntry(nil), d.Experience...)
	out.Education = append([]EducationEntry(nil), d.Education...)
	if d.Skills != nil {
		out.Skills = make([]SkillCategory, len(d.Skills))
		for i, cat := range d.Skills {
			cat.Items = append([]string(nil), cat.Items...)
			out.Skills[i] = cat
		}
	}
	out.Certifications = append([]CertificationEntry(nil), d.Certifications...)
	out.Languages = append([]LanguageEntry(nil), d.Languages...)
	return out
}
