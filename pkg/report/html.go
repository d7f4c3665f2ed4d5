/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"html/template"
	"io"

	"github.com/syskeep/syskeep/pkg/record"
	"github.com/syskeep/syskeep/pkg/snapshot"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>System Report: {{.Snap.Hostname}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f4f4f4; }
pre { background: #f8f8f8; padding: 0.8em; overflow-x: auto; }
.status-ok { color: #1a7f37; }
.status-partial { color: #9a6700; }
.status-skipped { color: #57606a; }
.status-failed { color: #cf222e; }
</style>
</head>
<body>
<h1>System Report: {{.Snap.Hostname}}</h1>
<p>Captured: {{index .Snap.Metadata "timestamp"}}</p>
{{with index .Snap.Metadata "version"}}<p>Tool version: {{.}}</p>{{end}}

<h2>Capture Summary</h2>
<table>
<tr><th>Category</th><th>Status</th><th>Detail</th></tr>
{{range .Snap.Records}}<tr>
<td>{{title .Category}}</td>
<td class="status-{{.Status}}">{{.Status}}</td>
<td>{{detail .}}</td>
</tr>
{{end}}</table>

{{range .Snap.Records}}
<h2>{{title .Category}}</h2>
{{if not (usable .Status)}}<p class="status-{{.Status}}"><em>{{.Status}}</em>: {{detail .}}</p>
{{else}}{{if .Error}}<p class="status-partial"><em>partial capture</em>: {{.Error}}</p>{{end}}
{{range .Sections}}
<h3>{{.Name}}</h3>
{{if .Data}}{{$d := .Data}}<table>
<tr><th>Key</th><th>Value</th></tr>
{{range $k := keys $d}}<tr><td>{{$k}}</td><td>{{index $d $k}}</td></tr>{{end}}
</table>{{end}}
{{if .Lines}}<pre>{{range .Lines}}{{.}}
{{end}}</pre>{{end}}
{{end}}
{{if .Files}}
<h3>archived files</h3>
<table>
<tr><th>Source</th><th>Archived As</th><th>SHA-256</th></tr>
{{range .Files}}<tr><td>{{.Source}}</td><td>{{.Name}}</td><td>{{.Checksum}}</td></tr>{{end}}
</table>
{{end}}
{{end}}
{{end}}

<h2>Restoration Checklist</h2>
<ul>
{{range .Checklist}}<li>{{.}}</li>
{{end}}</ul>
</body>
</html>
`

func renderHTML(w io.Writer, snap *snapshot.Snapshot) error {
	tmpl := template.New("report").Funcs(template.FuncMap{
		"title":  categoryTitle,
		"detail": statusDetail,
		"keys":   sortedKeys,
		"usable": func(s record.CaptureStatus) bool { return s.IsUsable() },
	})
	tmpl, err := tmpl.Parse(htmlTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, map[string]any{
		"Snap":      snap,
		"Checklist": checklist(snap),
	})
}
