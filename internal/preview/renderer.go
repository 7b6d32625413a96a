package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"cvforge/internal/cv"
)

// Render 是纯映射：(文档, 模板配置) → 渲染后的 HTML 布局。
// 相同输入必然产生相同输出；除 current 标志替换为 "Present" 外不依赖时钟。
// 布局缺失或无法识别时一律回退单栏。
func Render(doc cv.Document, cfg cv.TemplateConfig) (string, error) {
	tpl := singleColumnTemplate
	if cfg.Layout == cv.LayoutTwoColumn {
		tpl = twoColumnTemplate
	}

	data := newRenderData(doc, cfg)
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}

// renderData 是模板的视图模型；空分区在这里归一化，模板只负责条件输出。
type renderData struct {
	Doc     cv.Document
	Config  cv.TemplateConfig
	Summary string
	Contact []string
}

func newRenderData(doc cv.Document, cfg cv.TemplateConfig) renderData {
	var contact []string
	for _, field := range []string{
		doc.PersonalInfo.Email,
		doc.PersonalInfo.Phone,
		doc.PersonalInfo.Location,
		doc.PersonalInfo.Website,
		doc.PersonalInfo.LinkedIn,
	} {
		if field != "" {
			contact = append(contact, field)
		}
	}
	return renderData{
		Doc:     doc,
		Config:  cfg,
		Summary: strings.TrimSpace(doc.PersonalInfo.Summary),
		Contact: contact,
	}
}

// FormatDate 把 "YYYY-MM" 格式化为 "Mon YYYY"（例如 "2023-01" → "Jan 2023"）。
// 空串返回空串；无法解析的输入原样返回，渲染不因此失败。
func FormatDate(yyyymm string) string {
	if yyyymm == "" {
		return ""
	}
	t, err := time.Parse("2006-01", yyyymm)
	if err != nil {
		return yyyymm
	}
	return t.Format("Jan 2006")
}

// FormatDateRange 按约定输出时间区间：
// current 为 true → "<start> - Present"；无结束日期 → "<start>"；否则 "<start> - <end>"。
func FormatDateRange(startDate, endDate string, current bool) string {
	start := FormatDate(startDate)
	if current {
		return start + " - Present"
	}
	if endDate == "" {
		return start
	}
	return start + " - " + FormatDate(endDate)
}

var templateFuncs = template.FuncMap{
	"dateRange": FormatDateRange,
	"join": func(items []string, sep string) string {
		return strings.Join(items, sep)
	},
	// 模板配置里的颜色/字体值由管理员种子数据提供，按可信 CSS 处理。
	"safeCSS": func(s string) template.CSS {
		return template.CSS(s)
	},
}

var (
	singleColumnTemplate = template.Must(
		template.New("single-column").Funcs(templateFuncs).Parse(singleColumnTemplateString))
	twoColumnTemplate = template.Must(
		template.New("two-column").Funcs(templateFuncs).Parse(twoColumnTemplateString))
)
