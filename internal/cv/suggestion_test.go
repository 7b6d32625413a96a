package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyKeywordSuggestionMergesViaAddSkill(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	catID := ed.AddSkillCategory()
	ed.AddSkill(catID, "React")

	err := ed.ApplySuggestion(Suggestion{
		ID:      "sug-1",
		Kind:    SuggestionKeyword,
		Keyword: &KeywordSuggestion{CategoryID: catID, Keywords: []string{"React", "TypeScript"}},
	})

	require.NoError(t, err)
	// 与手工编辑一致：重复关键词被去重
	assert.Equal(t, []string{"React", "TypeScript"}, ed.Document().Skills[0].Items)
	assert.True(t, ed.HasUnsavedChanges())
}

func TestApplyContentSuggestionSummary(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.Load(Document{})

	err := ed.ApplySuggestion(Suggestion{
		Kind:    SuggestionContent,
		Content: &ContentSuggestion{Section: "summary", Text: "Seasoned backend engineer."},
	})

	require.NoError(t, err)
	assert.Equal(t, "Seasoned backend engineer.", ed.Document().PersonalInfo.Summary)
}

func TestApplyContentSuggestionExperience(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	id := ed.AddExperience()

	err := ed.ApplySuggestion(Suggestion{
		Kind:    SuggestionContent,
		Content: &ContentSuggestion{Section: "experience", EntryID: id, Text: "Led a team of five."},
	})

	require.NoError(t, err)
	assert.Equal(t, "Led a team of five.", ed.Document().Experience[0].Description)
}

func TestApplyStructureSuggestion(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.Load(Document{})

	err := ed.ApplySuggestion(Suggestion{
		Kind:      SuggestionStructure,
		Structure: &StructureSuggestion{Section: "education"},
	})

	require.NoError(t, err)
	assert.Len(t, ed.Document().Education, 1)
}

func TestApplyATSSuggestionIsInformational(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.Load(Document{})

	err := ed.ApplySuggestion(Suggestion{
		Kind: SuggestionATS,
		ATS:  &ATSSuggestion{Score: 82, Issues: []string{"missing keywords"}},
	})

	assert.ErrorIs(t, err, ErrSuggestionNotApplicable)
	assert.False(t, ed.HasUnsavedChanges())
}

func TestApplyMalformedSuggestion(t *testing.T) {
	ed := NewEditor(1, &fakeGateway{}, seqGen())
	ed.Load(Document{})

	cases := []Suggestion{
		{Kind: SuggestionKeyword},
		{Kind: SuggestionContent, Content: &ContentSuggestion{Section: "unknown"}},
		{Kind: SuggestionStructure, Structure: &StructureSuggestion{Section: "unknown"}},
		{Kind: "mystery"},
	}
	for _, s := range cases {
		assert.ErrorIs(t, ed.ApplySuggestion(s), ErrMalformedSuggestion)
	}
	assert.Equal(t, Document{}, ed.Document())
}
