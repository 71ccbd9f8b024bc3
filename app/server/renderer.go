package server

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// TemplateRenderer renders every page inside layout.html. The page name
// picks the body template.
type TemplateRenderer struct {
	tmpl     *template.Template
	instance string
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if t.tmpl.Lookup(name) == nil {
		name = "error"
	}
	page := map[string]any{
		"Page":      name,
		"Data":      data,
		"Instance":  t.instance,
		"RequestID": c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if err := t.tmpl.ExecuteTemplate(w, "layout.html", page); err != nil {
		c.Logger().Error(err)
		return err
	}
	return nil
}

func NewTemplateRenderer(instance string) *TemplateRenderer {
	return &TemplateRenderer{
		tmpl:     MustParseTemplates(),
		instance: instance,
	}
}
