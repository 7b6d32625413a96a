package cv

// 各实体的补丁类型：所有字段均为指针，nil 表示不改动（absent means unchanged）。
// 补丁在边界处校验，应用时只替换显式给出的字段。

// DocumentPatch 是持久化网关 upsert 的输入：缺省字段保留既有值。
// TemplateID 为 nil 表示不改动，因此取消模板选择需要显式的 ClearTemplate。
type DocumentPatch struct {
	Title          *string               `json:"title,omitempty"`
	TemplateID     *uint                 `json:"template_id,omitempty"`
	ClearTemplate  bool                  `json:"clear_template,omitempty"`
	PersonalInfo   *PersonalInfo         `json:"personal_info,omitempty"`
	Experience     *[]ExperienceEntry    `json:"experience,omitempty"`
	Education      *[]EducationEntry     `json:"education,omitempty"`
	Skills         *[]SkillCategory      `json:"skills,omitempty"`
	Certifications *[]CertificationEntry `json:"certifications,omitempty"`
	Languages      *[]LanguageEntry      `json:"languages,omitempty"`
}

// ExperiencePatch 描述对单条工作经历的字段级修改。
type ExperiencePatch struct {
	Company     *string `json:"company,omitempty"`
	Position    *string `json:"position,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Current     *bool   `json:"current,omitempty"`
	Description *string `json:"description,omitempty"`
}

// EducationPatch 描述对单条教育经历的字段级修改。
type EducationPatch struct {
	Institution *string `json:"institution,omitempty"`
	Degree      *string `json:"degree,omitempty"`
	Field       *string `json:"field,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	GPA         *string `json:"gpa,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SkillCategoryPatch 描述对技能分组名称的修改；Items 由 AddSkill/RemoveSkill 维护。
type SkillCategoryPatch struct {
	Category *string `json:"category,omitempty"`
}

// CertificationPatch 描述对单条认证记录的字段级修改。
type CertificationPatch struct {
	Name   *string `json:"name,omitempty"`
	Issuer *string `json:"issuer,omitempty"`
	Date   *string `json:"date,omitempty"`
	URL    *string `json:"url,omitempty"`
}

// LanguagePatch 描述对单条语言记录的字段级修改。
type LanguagePatch struct {
	Language    *string `json:"language,omitempty"`
	Proficiency *string `json:"proficiency,omitempty"`
}

// Apply 将补丁应用到文档副本并返回，nil 字段保持不变。
func (p DocumentPatch) Apply(doc Document) Document {
	out := doc.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.ClearTemplate {
		out.TemplateID = nil
	} else if p.TemplateID != nil {
		id := *p.TemplateID
		out.TemplateID = &id
	}
	if p.PersonalInfo != nil {
		out.PersonalInfo = *p.PersonalInfo
	}
	if p.Experience != nil {
		out.Experience = append([]ExperienceEntry(nil), (*p.Experience)...)
	}
	if p.Education != nil {
		out.Education = append([]EducationEntry(nil), (*p.Education)...)
	}
	if p.Skills != nil {
		out.Skills = append([]SkillCategory(nil), (*p.Skills)...)
	}
	if p.Certifications != nil {
		out.Certifications = append([]CertificationEntry(nil), (*p.Certifications)...)
	}
	if p.Languages != nil {
		out.Languages = append([]LanguageEntry(nil), (*p.Languages)...)
	}
	return out
}
