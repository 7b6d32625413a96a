package cv

import (
	"context"
	"sync"
)

// Gateway 是聚合编辑器眼中的持久化网关：按项目 id 做 create-or-update。
// 缺省字段保留既有值；实现方必须在每次调用时重新校验调用者对项目的所有权。
type Gateway interface {
	Upsert(ctx context.Context, projectID uint, patch DocumentPatch) (Document, error)
}

// Editor 持有规范的内存文档，组合各分区编辑操作，
// 并维护 HasUnsavedChanges / IsSaving 两个派生状态。
// 所有方法并发安全；保存期间的请求被直接忽略（同一文档的保存串行化）。
type Editor struct {
	mu        sync.Mutex
	projectID uint
	doc       Document
	gateway   Gateway
	gen       IDGenerator
	rev       uint64
	dirty     bool
	saving    bool
}

// NewEditor 构造编辑器。gen 为 nil 时使用默认 uuid 生成器。
func NewEditor(projectID uint, gateway Gateway, gen IDGenerator) *Editor {
	if gen == nil {
		gen = NewEntryID
	}
	return &Editor{
		projectID: projectID,
		gateway:   gateway,
		gen:       gen,
		doc:       Document{},
	}
}

// Load 用既有文档水合编辑器，并清除未保存标记。
func (e *Editor) Load(doc Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc.Clone()
	e.dirty = false
}

// Document 返回当前文档的副本。
func (e *Editor) Document() Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// HasUnsavedChanges 报告自上次成功保存以来是否有任何字段级修改。
func (e *Editor) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// IsSaving 报告是否有保存请求在途。
func (e *Editor) IsSaving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Save 将当前文档整体 upsert 到网关。
// 没有未保存修改、或已有保存在途时为 no-op。
// 成功后只有在保存期间没有新修改时才清除未保存标记；
// 失败只清除 IsSaving，内存中的修改原样保留，由调用方重试。
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.saving || !e.dirty {
		e.mu.Unlock()
		return nil
	}
	e.saving = true
	snapshot := e.doc.Clone()
	snapshotRev := e.rev
	e.mu.Unlock()

	patch := DocumentPatch{
		Title:          &snapshot.Title,
		PersonalInfo:   &snapshot.PersonalInfo,
		Experience:     &snapshot.Experience,
		Education:      &snapshot.Education,
		Skills:         &snapshot.Skills,
		Certifications: &snapshot.Certifications,
		Languages:      &snapshot.Languages,
	}
	if snapshot.TemplateID != nil {
		patch.TemplateID = snapshot.TemplateID
	} else {
		patch.ClearTemplate = true
	}

	_, err := e.gateway.Upsert(ctx, e.projectID, patch)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		return err
	}
	if e.rev == snapshotRev {
		e.dirty = false
	}
	return nil
}

// mutate 在锁内应用修改并置脏。所有编辑入口都经过这里。
// rev 单调递增，Save 用它判断保存期间是否产生了新修改。
func (e *Editor) mutate(fn func(doc *Document)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.doc)
	e.rev++
	e.dirty = true
}

// SetTitle 修改文档标题。
func (e *Editor) SetTitle(title string) {
	e.mutate(func(doc *Document) { doc.Title = title })
}

// SetTemplate 切换模板；模板选择变更同样计入未保存状态。
func (e *Editor) SetTemplate(templateID *uint) {
	e.mutate(func(doc *Document) {
		if templateID == nil {
			doc.TemplateID = nil
			return
		}
		id := *templateID
		doc.TemplateID = &id
	})
}

// SetPersonalInfo 整体替换个人信息分区。
func (e *Editor) SetPersonalInfo(info PersonalInfo) {
	e.mutate(func(doc *Document) { doc.PersonalInfo = info })
}

// SetSummary 修改概要段落。
func (e *Editor) SetSummary(summary string) {
	e.mutate(func(doc *Document) { doc.PersonalInfo.Summary = summary })
}

// AddExperience 追加空白工作经历并返回其 id，新条目按约定由 UI 自动展开编辑。
func (e *Editor) AddExperience() string {
	var id string
	e.mutate(func(doc *Document) {
		doc.Experience = AddExperience(doc.Experience, func() string {
			id = e.gen()
			return id
		})
	})
	return id
}

// UpdateExperience 按 id 应用补丁（id 不存在时静默）。
func (e *Editor) UpdateExperience(id string, patch ExperiencePatch) {
	e.mutate(func(doc *Document) { doc.Experience = UpdateExperience(doc.Experience, id, patch) })
}

// RemoveExperience 按 id 移除（幂等）。
func (e *Editor) RemoveExperience(id string) {
	e.mutate(func(doc *Document) { doc.Experience = RemoveExperience(doc.Experience, id) })
}

// AddEducation 追加空白教育经历并返回其 id。
func (e *Editor) AddEducation() string {
	var id string
	e.mutate(func(doc *Document) {
		doc.Education = AddEducation(doc.Education, func() string {
			id = e.gen()
			return id
		})
	})
	return id
}

// UpdateEducation 按 id 应用补丁。
func (e *Editor) UpdateEducation(id string, patch EducationPatch) {
	e.mutate(func(doc *Document) { doc.Education = UpdateEducation(doc.Education, id, patch) })
}

// RemoveEducation 按 id 移除（幂等）。
func (e *Editor) RemoveEducation(id string) {
	e.mutate(func(doc *Document) { doc.Education = RemoveEducation(doc.Education, id) })
}

// AddSkillCategory 追加空白技能分组并返回其 id。
func (e *Editor) AddSkillCategory() string {
	var id string
	e.mutate(func(doc *Document) {
		doc.Skills = AddSkillCategory(doc.Skills, func() string {
			id = e.gen()
			return id
		})
	})
	return id
}

// RemoveSkillCategory 按 id 移除分组（幂等）。
func (e *Editor) RemoveSkillCategory(id string) {
	e.mutate(func(doc *Document) { doc.Skills = RemoveSkillCategory(doc.Skills, id) })
}

// AddSkill 向分组追加技能项。空白、重复或分组不存在时文档不变，也不置脏。
func (e *Editor) AddSkill(categoryID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := AddSkill(e.doc.Skills, categoryID, text)
	if skillItemCount(next) == skillItemCount(e.doc.Skills) {
		return
	}
	e.doc.Skills = next
	e.rev++
	e.dirty = true
}

// RemoveSkill 按位置移除技能项。索引越界或分组不存在时文档不变，也不置脏。
func (e *Editor) RemoveSkill(categoryID string, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := RemoveSkill(e.doc.Skills, categoryID, index)
	if skillItemCount(next) == skillItemCount(e.doc.Skills) {
		return
	}
	e.doc.Skills = next
	e.rev++
	e.dirty = true
}

func skillItemCount(cats []SkillCategory) int {
	total := 0
	for _, cat := range cats {
		total += len(cat.Items)
	}
	return total
}

// AddCertification 追加空白认证记录并返回其 id。
func (e *Editor) AddCertification() string {
	var id string
	e.mutate(func(doc *Document) {
		doc.Certifications = AddCertification(doc.Certifications, func() string {
			id = e.gen()
			return id
		})
	})
	return id
}

// UpdateCertification 按 id 应用补丁。
func (e *Editor) UpdateCertification(id string, patch CertificationPatch) {
	e.mutate(func(doc *Document) { doc.Certifications = UpdateCertification(doc.Certifications, id, patch) })
}

// RemoveCertification 按 id 移除（幂等）。
func (e *Editor) RemoveCertification(id string) {
	e.mutate(func(doc *Document) { doc.Certifications = RemoveCertification(doc.Certifications, id) })
}

// AddLanguage 追加空白语言记录并返回其 id。
func (e *Editor) AddLanguage() string {
	var id string
	e.mutate(func(doc *Document) {
		doc.Languages = AddLanguage(doc.Languages, func() string {
			id = e.gen()
			return id
		})
	})
	return id
}

// UpdateLanguage 按 id 应用补丁。
func (e *Editor) UpdateLanguage(id string, patch LanguagePatch) {
	e.mutate(func(doc *Document) { doc.Languages = UpdateLanguage(doc.Languages, id, patch) })
}

// RemoveLanguage 按 id 移除（幂等）。
func (e *Editor) RemoveLanguage(id string) {
	e.mutate(func(doc *Document) { doc.Languages = RemoveLanguage(doc.Languages, id) })
}
