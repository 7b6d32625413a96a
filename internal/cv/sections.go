package cv

import (
	"strings"

	"github.com/google/uuid"
)

// 分区编辑操作：全部是对内存切片的纯全函数，不做任何 I/O，也从不原地修改入参。
// 定位条目一律按 id；id 不存在时静默返回原序列的副本（这是约定行为，不是错误）。

// IDGenerator 生成序列内唯一的条目 id。默认使用 uuid，测试可注入确定性实现。
type IDGenerator func() string

// NewEntryID 是默认的条目 id 生成器。
var NewEntryID IDGenerator = uuid.NewString

// AddExperience 追加一条空白工作经历，不影响既有条目的顺序与 id。
func AddExperience(entries []ExperienceEntry, gen IDGenerator) []ExperienceEntry {
	if gen == nil {
		gen = NewEntryID
	}
	out := append([]ExperienceEntry(nil), entries...)
	return append(out, ExperienceEntry{ID: gen()})
}

// UpdateExperience 按 id 定位条目并应用补丁；Current 置为 true 时同步清空 EndDate。
func UpdateExperience(entries []ExperienceEntry, id string, patch ExperiencePatch) []ExperienceEntry {
	out := append([]ExperienceEntry(nil), entries...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Company != nil {
			out[i].Company = *patch.Company
		}
		if patch.Position != nil {
			out[i].Position = *patch.Position
		}
		if patch.Location != nil {
			out[i].Location = *patch.Location
		}
		if patch.StartDate != nil {
			out[i].StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			out[i].EndDate = *patch.EndDate
		}
		if patch.Description != nil {
			out[i].Description = *patch.Description
		}
		if patch.Current != nil {
			out[i].Current = *patch.Current
			if *patch.Current {
				out[i].EndDate = ""
			}
		}
		break
	}
	return out
}

// RemoveExperience 过滤掉指定 id 的条目；id 不存在时等价于原序列（幂等）。
func RemoveExperience(entries []ExperienceEntry, id string) []ExperienceEntry {
	out := make([]ExperienceEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// AddEducation 追加一条空白教育经历。
func AddEducation(entries []EducationEntry, gen IDGenerator) []EducationEntry {
	if gen == nil {
		gen = NewEntryID
	}
	out := append([]EducationEntry(nil), entries...)
	return append(out, EducationEntry{ID: gen()})
}

// UpdateEducation 按 id 应用补丁。
func UpdateEducation(entries []EducationEntry, id string, patch EducationPatch) []EducationEntry {
	out := append([]EducationEntry(nil), entries...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Institution != nil {
			out[i].Institution = *patch.Institution
		}
		if patch.Degree != nil {
			out[i].Degree = *patch.Degree
		}
		if patch.Field != nil {
			out[i].Field = *patch.Field
		}
		if patch.StartDate != nil {
			out[i].StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			out[i].EndDate = *patch.EndDate
		}
		if patch.GPA != nil {
			out[i].GPA = *patch.GPA
		}
		if patch.Description != nil {
			out[i].Description = *patch.Description
		}
		break
	}
	return out
}

// RemoveEducation 过滤掉指定 id 的条目（幂等）。
func RemoveEducation(entries []EducationEntry, id string) []EducationEntry {
	out := make([]EducationEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// AddSkillCategory 追加一个空白技能分组。
func AddSkillCategory(cats []SkillCategory, gen IDGenerator) []SkillCategory {
	if gen == nil {
		gen = NewEntryID
	}
	out := cloneSkillCategories(cats)
	return append(out, SkillCategory{ID: gen(), Items: []string{}})
}

// UpdateSkillCategory 按 id 修改分组名。
func UpdateSkillCategory(cats []SkillCategory, id string, patch SkillCategoryPatch) []SkillCategory {
	out := cloneSkillCategories(cats)
	for i := range out {
		if out[i].ID == id {
			if patch.Category != nil {
				out[i].Category = *patch.Category
			}
			break
		}
	}
	return out
}

// RemoveSkillCategory 过滤掉指定 id 的分组（幂等）。
func RemoveSkillCategory(cats []SkillCategory, id string) []SkillCategory {
	out := make([]SkillCategory, 0, len(cats))
	for _, c := range cats {
		if c.ID != id {
			c.Items = append([]string(nil), c.Items...)
			out = append(out, c)
		}
	}
	return out
}

// AddSkill 向指定分组追加一项技能。
// 文本 trim 后为空，或与该分组内既有项完全相同（区分大小写）时为 no-op。
func AddSkill(cats []SkillCategory, categoryID, text string) []SkillCategory {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return cloneSkillCategories(cats)
	}
	out := cloneSkillCategories(cats)
	for i := range out {
		if out[i].ID != categoryID {
			continue
		}
		for _, item := range out[i].Items {
			if item == trimmed {
				return out
			}
		}
		out[i].Items = append(out[i].Items, trimmed)
		break
	}
	return out
}

// RemoveSkill 按位置移除技能项；越界为 no-op。
func RemoveSkill(cats []SkillCategory, categoryID string, index int) []SkillCategory {
	out := cloneSkillCategories(cats)
	for i := range out {
		if out[i].ID != categoryID {
			continue
		}
		if index < 0 || index >= len(out[i].Items) {
			return out
		}
		out[i].Items = append(out[i].Items[:index], out[i].Items[index+1:]...)
		break
	}
	return out
}

// AddCertification 追加一条空白认证记录。
func AddCertification(entries []CertificationEntry, gen IDGenerator) []CertificationEntry {
	if gen == nil {
		gen = NewEntryID
	}
	out := append([]CertificationEntry(nil), entries...)
	return append(out, CertificationEntry{ID: gen()})
}

// UpdateCertification 按 id 应用补丁。
func UpdateCertification(entries []CertificationEntry, id string, patch CertificationPatch) []CertificationEntry {
	out := append([]CertificationEntry(nil), entries...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Name != nil {
			out[i].Name = *patch.Name
		}
		if patch.Issuer != nil {
			out[i].Issuer = *patch.Issuer
		}
		if patch.Date != nil {
			out[i].Date = *patch.Date
		}
		if patch.URL != nil {
			out[i].URL = *patch.URL
		}
		break
	}
	return out
}

// RemoveCertification 过滤掉指定 id 的条目（幂等）。
func RemoveCertification(entries []CertificationEntry, id string) []CertificationEntry {
	out := make([]CertificationEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// AddLanguage 追加一条空白语言记录。
func AddLanguage(entries []LanguageEntry, gen IDGenerator) []LanguageEntry {
	if gen == nil {
		gen = NewEntryID
	}
	out := append([]LanguageEntry(nil), entries...)
	return append(out, LanguageEntry{ID: gen()})
}

// UpdateLanguage 按 id 应用补丁。
func UpdateLanguage(entries []LanguageEntry, id string, patch LanguagePatch) []LanguageEntry {
	out := append([]LanguageEntry(nil), entries...)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Language != nil {
			out[i].Language = *patch.Language
		}
		if patch.Proficiency != nil {
			out[i].Proficiency = *patch.Proficiency
		}
		break
	}
	return out
}

// RemoveLanguage 过滤掉指定 id 的条目（幂等）。
func RemoveLanguage(entries []LanguageEntry, id string) []LanguageEntry {
	out := make([]LanguageEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func cloneSkillCategories(cats []SkillCategory) []SkillCategory {
	out := make([]SkillCategory, len(cats))
	for i, c := range cats {
		c.Items = append([]string(nil), c.Items...)
		out[i] = c
	}
	return out
}
