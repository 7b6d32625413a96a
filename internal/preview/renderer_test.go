package preview

import (
	"strings"
	"testing"

	"cvforge/internal/cv"
)

func TestFormatDateRange(t *testing.T) {
	cases := []struct {
		start, end string
		current    bool
		want       string
	}{
		{"2023-01", "", true, "Jan 2023 - Present"},
		{"2023-01", "2023-06", false, "Jan 2023 - Jun 2023"},
		{"2023-01", "", false, "Jan 2023"},
		{"2021-12", "2022-02", false, "Dec 2021 - Feb 2022"},
		// current 优先于 endDate（current 条目的结束日期被忽略）
		{"2023-01", "2023-06", true, "Jan 2023 - Present"},
	}
	for _, c := range cases {
		got := FormatDateRange(c.start, c.end, c.current)
		if got != c.want {
			t.Errorf("FormatDateRange(%q, %q, %v) = %q, want %q", c.start, c.end, c.current, got, c.want)
		}
	}
}

func TestFormatDateForgivesBadInput(t *testing.T) {
	if got := FormatDate(""); got != "" {
		t.Errorf("empty input: got %q", got)
	}
	if got := FormatDate("not-a-date"); got != "not-a-date" {
		t.Errorf("unparseable input must pass through, got %q", got)
	}
}

func sampleDocument() cv.Document {
	return cv.Document{
		Title: "Backend CV",
		PersonalInfo: cv.PersonalInfo{
			FullName: "Ada Lovelace",
			Title:    "Backend Engineer",
			Email:    "ada@example.com",
			Summary:  "Engineer with a focus on reliable systems.",
		},
		Experience: []cv.ExperienceEntry{
			{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2020-01", Current: true},
		},
		Education: []cv.EducationEntry{
			{ID: "d1", Institution: "MIT", Degree: "BSc", Field: "CS", StartDate: "2016-09", EndDate: "2020-06"},
		},
		Skills: []cv.SkillCategory{
			{ID: "s1", Category: "Backend", Items: []string{"Go", "PostgreSQL"}},
		},
	}
}

func TestRenderSingleColumn(t *testing.T) {
	html, err := Render(sampleDocument(), cv.DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Ada Lovelace",
		"ada@example.com",
		"Jan 2020 - Present",
		"Sep 2016 - Jun 2020",
		"Go, PostgreSQL",
		"Summary",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	doc := cv.Document{PersonalInfo: cv.PersonalInfo{FullName: "Ada Lovelace", Summary: "   "}}

	html, err := Render(doc, cv.DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// 空分区整体省略：不渲染空标题
	for _, header := range []string{"Summary", "Experience", "Education", "Skills"} {
		if strings.Contains(html, ">"+header+"<") {
			t.Errorf("empty section %q must be omitted entirely", header)
		}
	}
}

func TestRenderUnknownLayoutFallsBack(t *testing.T) {
	doc := sampleDocument()
	cfg := cv.DefaultTemplateConfig()
	cfg.Layout = "三栏"

	fallback, err := Render(doc, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	cfg.Layout = cv.LayoutSingleColumn
	single, err := Render(doc, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if fallback != single {
		t.Error("unrecognized layout must fall back to single-column")
	}
}

func TestRenderTwoColumn(t *testing.T) {
	cfg := cv.DefaultTemplateConfig()
	cfg.Layout = cv.LayoutTwoColumn

	html, err := Render(sampleDocument(), cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "sidebar") {
		t.Error("two-column layout must render the sidebar")
	}
	if !strings.Contains(html, "Ada Lovelace") {
		t.Error("two-column layout must render the header name")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	cfg := cv.DefaultTemplateConfig()

	a, err := Render(doc, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := Render(doc, cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if a != b {
		t.Error("identical input must produce identical output")
	}
}
