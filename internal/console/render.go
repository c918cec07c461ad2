package console

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"inventory/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	lowStockThreshold = 5
	recentCount       = 3
)

// Summary is the dashboard aggregate over the product list.
type Summary struct {
	Count      int
	TotalValue float64
	LowStock   int
	Recent     []models.Product
}

// Summarize computes the dashboard figures: the product count, the total
// value (price times stock), the number of products with stock under five,
// and the first three products.
func Summarize(products []models.Product) Summary {
	s := Summary{Count: len(products)}
	for _, p := range products {
		s.TotalValue += p.Price * float64(p.Stock)
		if p.Stock < lowStockThreshold {
			s.LowStock++
		}
	}
	if len(products) > recentCount {
		s.Recent = products[:recentCount]
	} else {
		s.Recent = products
	}
	return s
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Renderer turns state into HTML. All text goes through html/template
// escaping.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("console").
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse console templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// View renders the fragment for an authenticated view.
func (r *Renderer) View(view View, products []models.Product, email string) (template.HTML, error) {
	switch view {
	case ViewDashboard:
		return r.fragment("dashboard", Summarize(products))
	case ViewProducts:
		return r.fragment("products", products)
	case ViewSettings:
		return r.fragment("settings", email)
	default:
		return "", fmt.Errorf("render: unknown view %q", view)
	}
}

func (r *Renderer) Loading() (template.HTML, error) {
	return r.fragment("loading", nil)
}

func (r *Renderer) Error(message string) (template.HTML, error) {
	return r.fragment("error", message)
}

type navItem struct {
	View   View
	Title  string
	Active bool
}

type modalView struct {
	Title string
	Form  ProductForm
	Error string
}

type deleteView struct {
	ID int
}

type pageData struct {
	Authenticated bool
	Register      bool
	Email         string
	Flash         string
	Nav           []navItem
	Fragment      template.HTML
	Modal         *modalView
	Delete        *deleteView
}

var viewTitles = map[View]string{
	ViewDashboard: "Dashboard",
	ViewProducts:  "Products",
	ViewSettings:  "Settings",
}

// Page writes the full document for s.
func (r *Renderer) Page(w io.Writer, s State) error {
	data := pageData{
		Authenticated: s.Authenticated,
		Register:      s.Mode == ModeRegister,
		Email:         s.Email,
		Flash:         s.Flash,
		Fragment:      s.Fragment,
	}
	for _, v := range Views {
		data.Nav = append(data.Nav, navItem{View: v, Title: viewTitles[v], Active: v == s.View})
	}
	if s.Modal.Open {
		title := "Add Product"
		if s.Modal.EditingID != nil {
			title = "Edit Product"
		}
		data.Modal = &modalView{Title: title, Form: s.Modal.Form, Error: s.Modal.Error}
	}
	if s.PendingDelete != nil {
		data.Delete = &deleteView{ID: *s.PendingDelete}
	}

	if err := r.tmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
