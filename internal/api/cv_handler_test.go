package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvforge/internal/ai"
	"cvforge/internal/cv"
	"cvforge/internal/database"
)

func cvTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, &database.Project{}, &database.CVDocument{}, &database.Template{})
}

func seedProject(t *testing.T, db *gorm.DB, userID uint) database.Project {
	t.Helper()
	project := database.Project{UserID: userID, Title: "Job hunt", Status: database.ProjectStatusDraft}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func TestGetProjectCV_MissingDocumentIsNotAnError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	c, w := newAuthedContext(t, http.MethodGet, "/v1/projects/1/cv", nil, 1)
	setProjectParam(c, project.ID)
	h.GetProjectCV(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp cvResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Exists {
		t.Fatalf("expected exists=false for a project without a cv")
	}
}

func TestUpsertProjectCV_CreateThenPartialPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	c, w := newAuthedContext(t, http.MethodPut, "/v1/projects/1/cv", strings.NewReader(`{"title":"My CV"}`), 1)
	setProjectParam(c, project.ID)
	h.UpsertProjectCV(c)
	if w.Code != http.StatusOK {
		t.Fatalf("create upsert: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	c, w = newAuthedContext(t, http.MethodPut, "/v1/projects/1/cv",
		strings.NewReader(`{"personal_info":{"full_name":"Alex Morgan"}}`), 1)
	setProjectParam(c, project.ID)
	h.UpsertProjectCV(c)
	if w.Code != http.StatusOK {
		t.Fatalf("patch upsert: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp cvResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Document == nil {
		t.Fatalf("expected document in response")
	}
	if resp.Document.Title != "My CV" {
		t.Fatalf("absent patch fields must keep prior values, title=%q", resp.Document.Title)
	}
	if resp.Document.PersonalInfo.FullName != "Alex Morgan" {
		t.Fatalf("patched field not applied: %q", resp.Document.PersonalInfo.FullName)
	}

	var count int64
	if err := db.Model(&database.CVDocument{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		t.Fatalf("count cvs: %v", err)
	}
	if count != 1 {
		t.Fatalf("upsert must keep a single cv per project, found %d", count)
	}
}

func TestDeleteCV_OtherUserGets404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	model := database.CVDocument{ProjectID: project.ID, UserID: 1}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("seed cv: %v", err)
	}

	c, w := newAuthedContext(t, http.MethodDelete, "/v1/cv/1", nil, 2)
	setProjectParam(c, model.ID)
	h.DeleteCV(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign cv must read as missing, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestApplySuggestion_KeywordPersistsThroughUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	model := database.CVDocument{ProjectID: project.ID, UserID: 1}
	if err := model.SetDocument(cv.Document{
		Title:  "My CV",
		Skills: []cv.SkillCategory{{ID: "cat-1", Category: "Tools", Items: []string{"Git"}}},
	}); err != nil {
		t.Fatalf("encode document: %v", err)
	}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("seed cv: %v", err)
	}

	body := strings.NewReader(`{
		"id": "s-1",
		"kind": "keyword",
		"title": "Add missing keywords",
		"keyword": {"category_id": "cat-1", "keywords": ["Docker"]}
	}`)
	c, w := newAuthedContext(t, http.MethodPost, "/v1/projects/1/apply-suggestion", body, 1)
	setProjectParam(c, project.ID)
	h.ApplySuggestion(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Applied {
		t.Fatalf("keyword suggestion should be applied: %s", w.Body.String())
	}

	var reloaded database.CVDocument
	if err := db.Where("project_id = ?", project.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload cv: %v", err)
	}
	doc, err := reloaded.Document()
	if err != nil {
		t.Fatalf("decode stored document: %v", err)
	}
	if len(doc.Skills) != 1 {
		t.Fatalf("expected one skill category, got %d", len(doc.Skills))
	}
	found := false
	for _, item := range doc.Skills[0].Items {
		if item == "Docker" {
			found = true
		}
	}
	if !found {
		t.Fatalf("applied keyword must be persisted, items=%v", doc.Skills[0].Items)
	}
}

func TestApplySuggestion_ATSIsInformationalOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	body := strings.NewReader(`{"id":"s-2","kind":"ats","title":"ATS check","ats":{"score":90}}`)
	c, w := newAuthedContext(t, http.MethodPost, "/v1/projects/1/apply-suggestion", body, 1)
	setProjectParam(c, project.ID)
	h.ApplySuggestion(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Applied {
		t.Fatalf("ats suggestions carry no mergeable change")
	}
}

func TestApplySuggestion_MismatchedPayloadRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	body := strings.NewReader(`{"id":"s-3","kind":"keyword","title":"broken"}`)
	c, w := newAuthedContext(t, http.MethodPost, "/v1/projects/1/apply-suggestion", body, 1)
	setProjectParam(c, project.ID)
	h.ApplySuggestion(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetSuggestions_EmptyDocumentStillSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := cvTestDB(t)
	h := NewCVHandler(db, nil, ai.NewStaticSuggester())
	project := seedProject(t, db, 1)

	c, w := newAuthedContext(t, http.MethodGet, "/v1/projects/1/suggestions", nil, 1)
	setProjectParam(c, project.ID)
	h.GetSuggestions(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Suggestions []cv.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatalf("an empty document should produce structure and content suggestions")
	}
}
