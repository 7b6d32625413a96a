package cv

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway 同步完成 upsert，测试不依赖真实网络或定时器。
type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	lastID  uint
	last    DocumentPatch
	failErr error
	block   chan struct{}
}

func (g *fakeGateway) Upsert(_ context.Context, projectID uint, patch DocumentPatch) (Document, error) {
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastID = projectID
	g.last = patch
	if g.failErr != nil {
		return Document{}, g.failErr
	}
	return patch.Apply(Document{}), nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestEditorLoadClearsDirty(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.SetTitle("draft")
	require.True(t, ed.HasUnsavedChanges())

	ed.Load(Document{Title: "persisted"})

	assert.False(t, ed.HasUnsavedChanges())
	assert.Equal(t, "persisted", ed.Document().Title)
}

func TestEveryMutationMarksDirty(t *testing.T) {
	mutations := map[string]func(*Editor){
		"title":          func(e *Editor) { e.SetTitle("x") },
		"template":       func(e *Editor) { id := uint(2); e.SetTemplate(&id) },
		"personal info":  func(e *Editor) { e.SetPersonalInfo(PersonalInfo{FullName: "Ada"}) },
		"summary":        func(e *Editor) { e.SetSummary("hi") },
		"add experience": func(e *Editor) { e.AddExperience() },
		"add education":  func(e *Editor) { e.AddEducation() },
		"add skills":     func(e *Editor) { e.AddSkillCategory() },
		"add cert":       func(e *Editor) { e.AddCertification() },
		"add language":   func(e *Editor) { e.AddLanguage() },
	}
	for name, mutate := range mutations {
		ed := NewEditor(1, &fakeGateway{}, seqGen())
		ed.Load(Document{})
		mutate(ed)
		assert.True(t, ed.HasUnsavedChanges(), "mutation %q must mark dirty", name)
	}
}

func TestSaveClearsFlagsOnSuccess(t *testing.T) {
	gw := &fakeGateway{}
	ed := NewEditor(7, gw, seqGen())
	ed.SetTitle("My CV")

	require.NoError(t, ed.Save(context.Background()))

	assert.False(t, ed.HasUnsavedChanges())
	assert.False(t, ed.IsSaving())
	assert.Equal(t, uint(7), gw.lastID)
	require.NotNil(t, gw.last.Title)
	assert.Equal(t, "My CV", *gw.last.Title)
}

func TestSaveKeepsDirtyOnFailure(t *testing.T) {
	gw := &fakeGateway{failErr: errors.New("network down")}
	ed := NewEditor(1, gw, seqGen())
	ed.SetTitle("My CV")

	err := ed.Save(context.Background())

	require.Error(t, err)
	assert.True(t, ed.HasUnsavedChanges(), "in-memory edits must survive a failed save")
	assert.False(t, ed.IsSaving())
	assert.Equal(t, "My CV", ed.Document().Title)
}

func TestSaveIsNoopWhenClean(t *testing.T) {
	gw := &fakeGateway{}
	ed := NewEditor(1, gw, seqGen())
	ed.Load(Document{Title: "persisted"})

	require.NoError(t, ed.Save(context.Background()))

	assert.Equal(t, 0, gw.callCount())
}

func TestConcurrentSaveIsSuppressed(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	ed := NewEditor(1, gw, seqGen())
	ed.SetTitle("My CV")

	done := make(chan error, 1)
	go func() { done <- ed.Save(context.Background()) }()

	// 等到第一个保存进入在途状态
	for !ed.IsSaving() {
		runtime.Gosched()
	}

	// 在途期间的第二次保存被忽略
	require.NoError(t, ed.Save(context.Background()))

	close(gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gw.callCount())
}

func TestMutationDuringSaveStaysDirty(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	ed := NewEditor(1, gw, seqGen())
	ed.SetTitle("first")

	done := make(chan error, 1)
	go func() { done <- ed.Save(context.Background()) }()

	for !ed.IsSaving() {
		runtime.Gosched()
	}

	// 保存在途期间的修改不能被成功回调吞掉
	ed.SetTitle("edited during save")

	close(gw.block)
	require.NoError(t, <-done)

	require.True(t, ed.HasUnsavedChanges(), "edits made mid-save must stay unsaved")

	gw.block = nil
	require.NoError(t, ed.Save(context.Background()))
	assert.Equal(t, 2, gw.callCount())
	require.NotNil(t, gw.last.Title)
	assert.Equal(t, "edited during save", *gw.last.Title)
	assert.False(t, ed.HasUnsavedChanges())
}

func TestClearTemplateSurvivesSave(t *testing.T) {
	gw := &fakeGateway{}
	ed := NewEditor(1, gw, seqGen())
	tpl := uint(3)
	ed.Load(Document{Title: "My CV", TemplateID: &tpl})

	ed.SetTemplate(nil)
	require.NoError(t, ed.Save(context.Background()))

	// 补丁应用到已有模板的文档后，模板选择必须被清除
	prior := Document{Title: "My CV", TemplateID: &tpl}
	assert.Nil(t, gw.last.Apply(prior).TemplateID)
}

func TestNoopSkillEditDoesNotMarkDirty(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.Load(Document{Skills: []SkillCategory{{ID: "cat-1", Category: "Tools", Items: []string{"React"}}}})

	ed.AddSkill("cat-1", "React")
	ed.AddSkill("cat-1", "   ")
	ed.AddSkill("missing", "Vue")
	ed.RemoveSkill("cat-1", 5)
	ed.RemoveSkill("missing", 0)
	assert.False(t, ed.HasUnsavedChanges(), "no-op skill edits must not mark dirty")

	ed.AddSkill("cat-1", "Vue")
	assert.True(t, ed.HasUnsavedChanges())
}

func TestAddExperienceReturnsGeneratedID(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())

	id := ed.AddExperience()

	require.Equal(t, "entry-1", id)
	doc := ed.Document()
	require.Len(t, doc.Experience, 1)
	assert.Equal(t, id, doc.Experience[0].ID)
}

func TestEditorSkillFlow(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	catID := ed.AddSkillCategory()

	ed.AddSkill(catID, "React")
	ed.AddSkill(catID, "React")
	ed.AddSkill(catID, "Vue")

	doc := ed.Document()
	require.Len(t, doc.Skills, 1)
	assert.Equal(t, []string{"React", "Vue"}, doc.Skills[0].Items)
}
