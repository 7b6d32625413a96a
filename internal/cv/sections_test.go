package cv

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqGen() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("entry-%d", n)
	}
}

func TestAddExperienceKeepsExistingEntries(t *testing.T) {
	gen := seqGen()
	entries := []ExperienceEntry{{ID: "a", Company: "Acme"}}

	out := AddExperience(entries, gen)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "entry-1", out[1].ID)
	// 原序列不被修改
	assert.Len(t, entries, 1)
}

func TestUpdateExperienceUnknownIDIsSilent(t *testing.T) {
	entries := []ExperienceEntry{{ID: "a", Company: "Acme"}}
	company := "Globex"

	out := UpdateExperience(entries, "missing", ExperiencePatch{Company: &company})

	assert.Equal(t, entries, out)
}

func TestUpdateExperiencePatchesOnlyGivenFields(t *testing.T) {
	entries := []ExperienceEntry{
		{ID: "a", Company: "Acme", Position: "Engineer", StartDate: "2020-01"},
		{ID: "b", Company: "Globex", Position: "Manager", StartDate: "2021-03"},
	}
	pos := "Senior Engineer"

	out := UpdateExperience(entries, "a", ExperiencePatch{Position: &pos})

	assert.Equal(t, "Senior Engineer", out[0].Position)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "2020-01", out[0].StartDate)
	assert.Equal(t, entries[1], out[1])
}

func TestCurrentToggleClearsEndDate(t *testing.T) {
	entries := []ExperienceEntry{{ID: "a", StartDate: "2020-01", EndDate: "2022-05"}}
	current := true

	out := UpdateExperience(entries, "a", ExperiencePatch{Current: &current})

	assert.True(t, out[0].Current)
	assert.Empty(t, out[0].EndDate)
}

func TestRemoveExperienceIsIdempotent(t *testing.T) {
	entries := []ExperienceEntry{{ID: "a"}, {ID: "b"}}

	once := RemoveExperience(entries, "a")
	twice := RemoveExperience(once, "a")

	assert.Equal(t, once, twice)
	require.Len(t, twice, 1)
	assert.Equal(t, "b", twice[0].ID)
}

// 对任意 add/update/remove 序列，结果序列 id 唯一且长度等于 添加数-删除数。
func TestSectionOpSequenceInvariants(t *testing.T) {
	gen := seqGen()
	rng := rand.New(rand.NewSource(42))

	var entries []ExperienceEntry
	adds, removes := 0, 0
	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			entries = AddExperience(entries, gen)
			adds++
		case 1:
			if len(entries) > 0 {
				victim := entries[rng.Intn(len(entries))].ID
				entries = RemoveExperience(entries, victim)
				removes++
			}
		case 2:
			company := fmt.Sprintf("company-%d", i)
			id := "missing"
			if len(entries) > 0 {
				id = entries[rng.Intn(len(entries))].ID
			}
			entries = UpdateExperience(entries, id, ExperiencePatch{Company: &company})
		}
	}

	assert.Len(t, entries, adds-removes)
	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestAddSkillDeduplicates(t *testing.T) {
	cats := []SkillCategory{{ID: "cat", Category: "Frontend", Items: []string{"React"}}}

	same := AddSkill(cats, "cat", "React")
	require.Len(t, same[0].Items, 1)

	added := AddSkill(same, "cat", "Vue")
	assert.Equal(t, []string{"React", "Vue"}, added[0].Items)
}

func TestAddSkillTrimsAndRejectsBlank(t *testing.T) {
	cats := []SkillCategory{{ID: "cat", Category: "Frontend", Items: []string{}}}

	out := AddSkill(cats, "cat", "   ")
	assert.Empty(t, out[0].Items)

	out = AddSkill(out, "cat", "  Svelte  ")
	assert.Equal(t, []string{"Svelte"}, out[0].Items)

	// 大小写敏感：React 与 react 是两个项
	out = AddSkill(out, "cat", "svelte")
	assert.Equal(t, []string{"Svelte", "svelte"}, out[0].Items)
}

func TestRemoveSkillByIndex(t *testing.T) {
	cats := []SkillCategory{{ID: "cat", Category: "Tools", Items: []string{"Git", "Docker", "k8s"}}}

	out := RemoveSkill(cats, "cat", 1)
	assert.Equal(t, []string{"Git", "k8s"}, out[0].Items)

	out = RemoveSkill(out, "cat", 99)
	assert.Equal(t, []string{"Git", "k8s"}, out[0].Items)

	out = RemoveSkill(out, "cat", -1)
	assert.Equal(t, []string{"Git", "k8s"}, out[0].Items)
}

func TestDocumentPatchApplyPartial(t *testing.T) {
	doc := Document{
		Title:      "Backend CV",
		Experience: []ExperienceEntry{{ID: "a", Company: "Acme"}},
		Skills:     []SkillCategory{{ID: "s", Category: "Go", Items: []string{"gin"}}},
	}
	title := "Renamed CV"

	out := DocumentPatch{Title: &title}.Apply(doc)

	assert.Equal(t, "Renamed CV", out.Title)
	assert.Equal(t, doc.Experience, out.Experience)
	assert.Equal(t, doc.Skills, out.Skills)
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := Document{
		Skills: []SkillCategory{{ID: "s", Category: "Go", Items: []string{"gin"}}},
	}

	clone := doc.Clone()
	clone.Skills[0].Items[0] = "fiber"

	assert.Equal(t, "gin", doc.Skills[0].Items[0])
}
