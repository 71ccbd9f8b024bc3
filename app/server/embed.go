package server

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed template/*.html
var templateFs embed.FS

func MustParseTemplates() *template.Template {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"add": func(a, b int) int {
			return a + b
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04 MST")
		},
	}

	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFs, "template/*.html"))
}
