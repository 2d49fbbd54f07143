package cli

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

const noteTemplate = `
=== {{ .Title }} ===
ID:      {{ .ID }}
Created: {{ stamp .CreatedAt }}
Updated: {{ stamp .UpdatedAt }}
---
{{ .Body }}
---
`

const notesListTemplate = `
{{- if eq (len .) 0 }}
No notes yet.

Use 'new' to write your first note.
{{ else }}
{{ len . }} note(s):
{{ range . }}
  [{{ .ID }}] {{ .Title }}  ({{ stamp .UpdatedAt }})
      {{ preview .Body }}
{{- end }}

Use 'show <id>' to read a note.
{{ end }}`

const upsellTemplate = `
You have reached the free limit of {{ .Limit }} notes.

Upgrade to {{ .App }} Premium to:
  - write unlimited notes
  - support further development

Run 'upgrade' to buy a license or 'activate' if you already have one.
`

var templateFuncs = template.FuncMap{
	"stamp": func(t time.Time) string {
		return t.Local().Format("02 Jan 2006 15:04")
	},
	"preview": func(body string) string {
		line, _, _ := strings.Cut(body, "\n")
		if r := []rune(line); len(r) > 50 {
			return string(r[:50]) + "..."
		}
		return line
	},
}

var (
	noteTmpl      = template.Must(template.New("note").Funcs(templateFuncs).Parse(noteTemplate))
	notesListTmpl = template.Must(template.New("notes").Funcs(templateFuncs).Parse(notesListTemplate))
	upsellTmpl    = template.Must(template.New("upsell").Parse(upsellTemplate))
)

func (c *Cli) render(tmpl *template.Template, data any) error {
	if err := tmpl.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}
