package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>anchor-shield Scan Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 900px; color: #1f2430; }
  h1 { border-bottom: 2px solid #e2e5ec; padding-bottom: .5rem; }
  .meta td { padding: .15rem .75rem .15rem 0; color: #555; }
  .score { font-size: 1.5rem; font-weight: 700; }
  .finding { border: 1px solid #e2e5ec; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
  .finding.critical, .finding.high { border-left: 4px solid #d33; }
  .finding.medium { border-left: 4px solid #d90; }
  .finding.low { border-left: 4px solid #2a2; }
  .severity-badge { font-size: .75rem; font-weight: 700; padding: .15rem .5rem; border-radius: 4px; color: #fff; }
  .severity-badge.critical, .severity-badge.high { background: #d33; }
  .severity-badge.medium { background: #d90; }
  .severity-badge.low { background: #2a2; }
  pre { background: #f6f7f9; padding: .75rem; border-radius: 4px; overflow-x: auto; font-size: .85rem; }
  .fix { background: #f0f7f0; padding: .75rem; border-radius: 4px; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>anchor-shield Scan Report</h1>
<table class="meta">
  <tr><td>Target</td><td>{{.Target}}</td></tr>
  <tr><td>Files scanned</td><td>{{.FilesScanned}}</td></tr>
  <tr><td>Patterns checked</td><td>{{.PatternsChecked}}</td></tr>
  {{if .AnchorVersion}}<tr><td>Anchor version</td><td>{{.AnchorVersion}}</td></tr>{{end}}
  <tr><td>Security score</td><td class="score">{{.SecurityScore}}</td></tr>
</table>
{{if not .Findings}}
<p>No vulnerabilities detected.</p>
{{else}}
<h2>Findings ({{len .Findings}})</h2>
{{range .Findings}}
<div class="finding {{lower (printf "%s" .Severity)}}">
  <div>
    <span class="severity-badge {{lower (printf "%s" .Severity)}}">{{upper (printf "%s" .Severity)}}</span>
    <strong>{{.RuleID}}</strong> &mdash; {{.Name}}
  </div>
  <p><code>{{.File}}:{{.Line}}</code></p>
  <p>{{.Description}}</p>
  {{if .Snippet}}<pre>{{.Snippet}}</pre>{{end}}
  <div class="fix">{{.Remediation}}</div>
  <p><a href="{{.Reference}}">{{.Reference}}</a></p>
</div>
{{end}}
{{end}}
</body>
</html>
`))

// ToHTML renders a standalone HTML report.
func ToHTML(r *model.ScanReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
