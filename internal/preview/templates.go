package preview

// 预览布局的 Go HTML 模板。
// 页面尺寸与前端画布一致：A4 @ 72 DPI（595×842）。
// 空分区整体省略，绝不渲染空标题。

const singleColumnTemplateString = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body {
    margin: 0;
    padding: 0;
    font-family: '{{.Config.Fonts.Body}}', sans-serif;
    color: {{.Config.Colors.Text | safeCSS}};
    background: white;
  }
  .page {
    width: 595px; /* A4 @ 72 DPI */
    min-height: 842px;
    padding: 48px;
    box-sizing: border-box;
  }
  h1, h2 {
    font-family: '{{.Config.Fonts.Heading}}', sans-serif;
  }
  .header {
    text-align: center;
    padding-bottom: 24px;
    border-bottom: 2px solid {{.Config.Colors.Primary | safeCSS}};
  }
  .header h1 { margin: 0; font-size: 28px; color: {{.Config.Colors.Primary | safeCSS}}; }
  .header .role { margin: 4px 0 0; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .header .contact { margin-top: 8px; font-size: 11px; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .section { margin-top: 24px; }
  .section h2 {
    font-size: 15px;
    text-transform: uppercase;
    letter-spacing: 1px;
    color: {{.Config.Colors.Primary | safeCSS}};
    border-bottom: 1px solid {{.Config.Colors.Secondary | safeCSS}};
    padding-bottom: 4px;
  }
  .entry { margin-bottom: 12px; }
  .entry .head { display: flex; justify-content: space-between; }
  .entry .title { font-weight: 600; }
  .entry .dates { font-size: 11px; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .entry .sub { font-size: 12px; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .entry .desc { font-size: 12px; margin-top: 4px; white-space: pre-wrap; }
  .skill-row { font-size: 12px; margin-bottom: 6px; }
  .skill-row .cat { font-weight: 600; }
</style>
</head>
<body>
<div class="page">
  <div class="header">
    <h1>{{.Doc.PersonalInfo.FullName}}</h1>
    {{if .Doc.PersonalInfo.Title}}<p class="role">{{.Doc.PersonalInfo.Title}}</p>{{end}}
    {{if .Contact}}<div class="contact">{{join .Contact " · "}}</div>{{end}}
  </div>

  {{if .Summary}}
  <div class="section">
    <h2>Summary</h2>
    <p class="desc">{{.Summary}}</p>
  </div>
  {{end}}

  {{if .Doc.Experience}}
  <div class="section">
    <h2>Experience</h2>
    {{range .Doc.Experience}}
    <div class="entry">
      <div class="head">
        <span class="title">{{.Position}}</span>
        <span class="dates">{{dateRange .StartDate .EndDate .Current}}</span>
      </div>
      <div class="sub">{{.Company}}{{if .Location}} · {{.Location}}{{end}}</div>
      {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Doc.Education}}
  <div class="section">
    <h2>Education</h2>
    {{range .Doc.Education}}
    <div class="entry">
      <div class="head">
        <span class="title">{{.Degree}}{{if .Field}}, {{.Field}}{{end}}</span>
        <span class="dates">{{dateRange .StartDate .EndDate false}}</span>
      </div>
      <div class="sub">{{.Institution}}{{if .GPA}} · GPA {{.GPA}}{{end}}</div>
      {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Doc.Skills}}
  <div class="section">
    <h2>Skills</h2>
    {{range .Doc.Skills}}
    <div class="skill-row"><span class="cat">{{.Category}}:</span> {{join .Items ", "}}</div>
    {{end}}
  </div>
  {{end}}

  {{if .Doc.Certifications}}
  <div class="section">
    <h2>Certifications</h2>
    {{range .Doc.Certifications}}
    <div class="entry">
      <div class="head">
        <span class="title">{{.Name}}</span>
        <span class="dates">{{.Date}}</span>
      </div>
      <div class="sub">{{.Issuer}}</div>
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Doc.Languages}}
  <div class="section">
    <h2>Languages</h2>
    {{range .Doc.Languages}}
    <div class="skill-row"><span class="cat">{{.Language}}:</span> {{.Proficiency}}</div>
    {{end}}
  </div>
  {{end}}
</div>
</body>
</html>
`

const twoColumnTemplateString = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body {
    margin: 0;
    padding: 0;
    font-family: '{{.Config.Fonts.Body}}', sans-serif;
    color: {{.Config.Colors.Text | safeCSS}};
    background: white;
  }
  .page {
    width: 595px; /* A4 @ 72 DPI */
    min-height: 842px;
    display: flex;
    box-sizing: border-box;
  }
  h1, h2, h3 {
    font-family: '{{.Config.Fonts.Heading}}', sans-serif;
  }
  .sidebar {
    width: 190px;
    background: {{.Config.Colors.Primary | safeCSS}};
    color: white;
    padding: 32px 20px;
    box-sizing: border-box;
  }
  .sidebar h3 {
    font-size: 12px;
    text-transform: uppercase;
    letter-spacing: 1px;
    border-bottom: 1px solid rgba(255,255,255,0.4);
    padding-bottom: 4px;
  }
  .sidebar .contact-line { font-size: 10px; margin-bottom: 4px; word-break: break-all; }
  .sidebar .skill-row { font-size: 10px; margin-bottom: 6px; }
  .sidebar .skill-row .cat { font-weight: 600; display: block; }
  .main { flex: 1; padding: 32px 28px; box-sizing: border-box; }
  .main h1 { margin: 0; font-size: 26px; color: {{.Config.Colors.Primary | safeCSS}}; }
  .main .role { margin: 2px 0 0; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .section { margin-top: 20px; }
  .section h2 {
    font-size: 14px;
    text-transform: uppercase;
    letter-spacing: 1px;
    color: {{.Config.Colors.Primary | safeCSS}};
    border-bottom: 1px solid {{.Config.Colors.Secondary | safeCSS}};
    padding-bottom: 4px;
  }
  .entry { margin-bottom: 10px; }
  .entry .head { display: flex; justify-content: space-between; }
  .entry .title { font-weight: 600; font-size: 13px; }
  .entry .dates { font-size: 10px; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .entry .sub { font-size: 11px; color: {{.Config.Colors.Secondary | safeCSS}}; }
  .entry .desc { font-size: 11px; margin-top: 3px; white-space: pre-wrap; }
</style>
</head>
<body>
<div class="page">
  <div class="sidebar">
    {{if .Contact}}
    <h3>Contact</h3>
    {{range .Contact}}<div class="contact-line">{{.}}</div>{{end}}
    {{end}}

    {{if .Doc.Skills}}
    <h3>Skills</h3>
    {{range .Doc.Skills}}
    <div class="skill-row"><span class="cat">{{.Category}}</span>{{join .Items ", "}}</div>
    {{end}}
    {{end}}

    {{if .Doc.Languages}}
    <h3>Languages</h3>
    {{range .Doc.Languages}}
    <div class="skill-row"><span class="cat">{{.Language}}</span>{{.Proficiency}}</div>
    {{end}}
    {{end}}
  </div>

  <div class="main">
    <h1>{{.Doc.PersonalInfo.FullName}}</h1>
    {{if .Doc.PersonalInfo.Title}}<p class="role">{{.Doc.PersonalInfo.Title}}</p>{{end}}

    {{if .Summary}}
    <div class="section">
      <h2>Summary</h2>
      <p class="desc">{{.Summary}}</p>
    </div>
    {{end}}

    {{if .Doc.Experience}}
    <div class="section">
      <h2>Experience</h2>
      {{range .Doc.Experience}}
      <div class="entry">
        <div class="head">
          <span class="title">{{.Position}}</span>
          <span class="dates">{{dateRange .StartDate .EndDate .Current}}</span>
        </div>
        <div class="sub">{{.Company}}{{if .Location}} · {{.Location}}{{end}}</div>
        {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Doc.Education}}
    <div class="section">
      <h2>Education</h2>
      {{range .Doc.Education}}
      <div class="entry">
        <div class="head">
          <span class="title">{{.Degree}}{{if .Field}}, {{.Field}}{{end}}</span>
          <span class="dates">{{dateRange .StartDate .EndDate false}}</span>
        </div>
        <div class="sub">{{.Institution}}{{if .GPA}} · GPA {{.GPA}}{{end}}</div>
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Doc.Certifications}}
    <div class="section">
      <h2>Certifications</h2>
      {{range .Doc.Certifications}}
      <div class="entry">
        <div class="head">
          <span class="title">{{.Name}}</span>
          <span class="dates">{{.Date}}</span>
        </div>
        <div class="sub">{{.Issuer}}</div>
      </div>
      {{end}}
    </div>
    {{end}}
  </div>
</div>
</body>
</html>
`
