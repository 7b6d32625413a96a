package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvforge/internal/database"
)

func projectTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, &database.Project{}, &database.CVDocument{}, &database.CoverLetter{})
}

func setProjectParam(c *gin.Context, id uint) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
}

func TestCreateProject_DefaultsAndTrim(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProjectHandler(projectTestDB(t), nil)

	body := strings.NewReader(`{"title":"  Backend at Acme  ","description":" senior role "}`)
	c, w := newAuthedContext(t, http.MethodPost, "/v1/projects", body, 1)

	h.CreateProject(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var resp projectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Backend at Acme" {
		t.Fatalf("title not trimmed: %q", resp.Title)
	}
	if resp.Status != database.ProjectStatusDraft {
		t.Fatalf("expected default status draft, got %q", resp.Status)
	}
	if resp.CVCount != 0 || resp.CoverLetterCount != 0 {
		t.Fatalf("new project should have zero documents: %+v", resp)
	}
}

func TestCreateProject_BlankTitleRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProjectHandler(projectTestDB(t), nil)

	c, w := newAuthedContext(t, http.MethodPost, "/v1/projects", strings.NewReader(`{"title":"   "}`), 1)
	h.CreateProject(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestListProjects_FilterAndTitleSort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := projectTestDB(t)
	h := NewProjectHandler(db, nil)

	seed := []database.Project{
		{UserID: 1, Title: "zeta corp", Status: database.ProjectStatusActive},
		{UserID: 1, Title: "Acme Inc", Status: database.ProjectStatusActive},
		{UserID: 1, Title: "midway", Status: database.ProjectStatusArchived},
		{UserID: 2, Title: "other user", Status: database.ProjectStatusActive},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}

	c, w := newAuthedContext(t, http.MethodGet, "/v1/projects?status=active&sort_by=title&order=asc", nil, 1)
	h.ListProjects(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var items []projectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 active projects for user 1, got %d", len(items))
	}
	if items[0].Title != "Acme Inc" || items[1].Title != "zeta corp" {
		t.Fatalf("title sort should be case-insensitive: %q, %q", items[0].Title, items[1].Title)
	}
}

func TestListProjects_RejectsUnknownSort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProjectHandler(projectTestDB(t), nil)

	c, w := newAuthedContext(t, http.MethodGet, "/v1/projects?sort_by=color", nil, 1)
	h.ListProjects(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateProject_PartialPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := projectTestDB(t)
	h := NewProjectHandler(db, nil)

	project := database.Project{UserID: 1, Title: "Original", Description: "old", Status: database.ProjectStatusDraft}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	c, w := newAuthedContext(t, http.MethodPatch, "/v1/projects/1", strings.NewReader(`{"status":"active"}`), 1)
	setProjectParam(c, project.ID)
	h.UpdateProject(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp projectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != database.ProjectStatusActive {
		t.Fatalf("status not updated: %q", resp.Status)
	}
	if resp.Title != "Original" || resp.Description != "old" {
		t.Fatalf("untouched fields must survive a partial update: %+v", resp)
	}
}

func TestGetProject_OtherUserGets404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := projectTestDB(t)
	h := NewProjectHandler(db, nil)

	project := database.Project{UserID: 1, Title: "mine", Status: database.ProjectStatusDraft}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	c, w := newAuthedContext(t, http.MethodGet, "/v1/projects/1", nil, 2)
	setProjectParam(c, project.ID)
	h.GetProject(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign project must read as missing, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteProject_CascadesDocuments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := projectTestDB(t)
	h := NewProjectHandler(db, nil)

	project := database.Project{UserID: 1, Title: "doomed", Status: database.ProjectStatusDraft}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := db.Create(&database.CVDocument{ProjectID: project.ID, UserID: 1}).Error; err != nil {
		t.Fatalf("seed cv: %v", err)
	}
	if err := db.Create(&database.CoverLetter{ProjectID: project.ID, UserID: 1, Title: "letter"}).Error; err != nil {
		t.Fatalf("seed cover letter: %v", err)
	}

	c, w := newAuthedContext(t, http.MethodDelete, "/v1/projects/1", nil, 1)
	setProjectParam(c, project.ID)
	h.DeleteProject(c)
	// gin defers the status write until the first body write; a 204 has no
	// body, so flush it to the recorder as the engine would.
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", w.Code, w.Body.String())
	}
	for _, model := range []any{&database.CVDocument{}, &database.CoverLetter{}, &database.Project{}} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("expected no %T rows after delete, found %d", model, count)
		}
	}
}
