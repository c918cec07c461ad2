package console

import (
	"html/template"

	"inventory/internal/models"
)

// View is a page of the authenticated console.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewProducts  View = "products"
	ViewSettings  View = "settings"
)

// Views lists the navigation entries in display order.
var Views = []View{ViewDashboard, ViewProducts, ViewSettings}

// ParseView returns the view named s.
func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// AuthMode selects what the auth form submits.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// ProductForm holds the raw values of the product modal inputs.
type ProductForm struct {
	Name  string
	Price string
	Stock string
}

// Modal is the add/edit sub-state. EditingID is nil when adding.
type Modal struct {
	Open      bool
	EditingID *int
	Form      ProductForm
	Error     string
}

// State is the whole UI state. The Console owns it; renderers only read it.
type State struct {
	Mode          AuthMode
	Authenticated bool
	Email         string
	View          View

	// Products is the last fetched list; the edit modal reads from it.
	Products []models.Product

	Modal         Modal
	PendingDelete *int
	Fragment      template.HTML
	Flash         string

	generation uint64
}

// Snapshot returns a copy that shares no mutable data with s.
func (s State) Snapshot() State {
	s.Products = append([]models.Product(nil), s.Products...)
	if s.Modal.EditingID != nil {
		id := *s.Modal.EditingID
		s.Modal.EditingID = &id
	}
	if s.PendingDelete != nil {
		id := *s.PendingDelete
		s.PendingDelete = &id
	}
	return s
}

func (s *State) findProduct(id int) (models.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
