package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// LoginView is the login screen. Notice explains why the user landed there.
type LoginView struct {
	Username string
	Error    string
	Notice   string
}

type layoutData struct {
	Lang  string
	Title string
	Page  Page
	Body  template.HTML
}

// Renderer executes the embedded templates with localized helpers.
type Renderer struct {
	msg  *Messages
	tmpl *template.Template
}

func NewRenderer(msg *Messages) (*Renderer, error) {
	funcs := template.FuncMap{
		"t":      msg.T,
		"money":  msg.Money,
		"number": msg.Number,
		"date":   formatDate,
		"svg":    func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{msg: msg, tmpl: tmpl}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// Page renders the authenticated shell around the active tab's content.
func (r *Renderer) Page(w io.Writer, page Page) error {
	var body bytes.Buffer
	if page.Content.Template != "" {
		if err := r.tmpl.ExecuteTemplate(&body, page.Content.Template, page.Content.Data); err != nil {
			return fmt.Errorf("render %s: %w", page.Content.Template, err)
		}
	}
	return r.layout(w, page, body.Bytes())
}

// Login renders the login screen inside the same layout, without sidebar.
func (r *Renderer) Login(w io.Writer, view LoginView) error {
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, "login", view); err != nil {
		return fmt.Errorf("render login: %w", err)
	}
	return r.layout(w, Page{Screen: ScreenLogin}, body.Bytes())
}

func (r *Renderer) layout(w io.Writer, page Page, body []byte) error {
	data := layoutData{
		Lang:  r.msg.Lang(),
		Title: r.msg.T(MsgTitle),
		Page:  page,
		// body was produced by html/template and is already escaped.
		Body: template.HTML(body),
	}
	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, "layout", data); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	_, err := out.WriteTo(w)
	return err
}
