package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jpalmerr/slotwatch/schedule"
)

var tableTemplate = template.Must(template.New("slots").Parse(`
<h3>🏥 发现可用号源 ({{len .}}个)</h3>
<table border="1" cellpadding="5">
    <tr>
        <th>科室</th>
        <th>日期</th>
        <th>时段</th>
        <th>状态</th>
        <th>剩余号数</th>
        <th>诊室</th>
    </tr>
{{- range .}}
    <tr>
        <td>{{.Department}}</td>
        <td>{{.Date}}</td>
        <td>{{.TimeRange}}</td>
        <td>{{.State}}</td>
        <td>{{.Remaining}}</td>
        <td>{{.Address}}</td>
    </tr>
{{- end}}
</table>
`))

// RenderHTML returns the slot table under a heading carrying the slot count.
// Field values are HTML-escaped.
func RenderHTML(slots []schedule.Slot) (string, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, slots); err != nil {
		return "", fmt.Errorf("render slots: %w", err)
	}
	return buf.String(), nil
}
