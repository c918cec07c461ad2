package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"inventory/internal/models"

	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	ErrNoPendingDelete  = errors.New("no delete awaiting confirmation")
	ErrUnknownProduct   = errors.New("product is not in the current list")
)

// Console is the UI controller. It owns the State and is safe for concurrent
// use; the lock is released while requests are in flight.
type Console struct {
	client   *Client
	tokens   TokenStore
	renderer *Renderer
	actions  *Registry
	log      *zap.Logger

	mu    sync.Mutex
	state State
}

// New creates a console. A token already in the store resumes the session
// on the dashboard.
func New(client *Client, tokens TokenStore, renderer *Renderer, log *zap.Logger) *Console {
	c := &Console{
		client:   client,
		tokens:   tokens,
		renderer: renderer,
		log:      log,
		state:    State{Mode: ModeLogin, View: ViewDashboard},
	}
	if tokens.Token() != "" {
		c.state.Authenticated = true
		c.state.Email = tokens.Email()
	}

	c.actions = NewRegistry()
	c.actions.Register(ActionOpenAdd, func(context.Context, *int) error { c.OpenAdd(); return nil })
	c.actions.RegisterEntity(ActionEdit, func(_ context.Context, id int) error { return c.OpenEdit(id) })
	c.actions.RegisterEntity(ActionDelete, func(_ context.Context, id int) error { c.RequestDelete(id); return nil })
	c.actions.Register(ActionConfirmDelete, func(ctx context.Context, _ *int) error { return c.ConfirmDelete(ctx) })
	c.actions.Register(ActionCancelDelete, func(context.Context, *int) error { c.CancelDelete(); return nil })
	c.actions.Register(ActionCloseModal, func(context.Context, *int) error { c.CloseModal(); return nil })
	c.actions.Register(ActionLogout, func(context.Context, *int) error { return c.Logout() })
	c.actions.Register(ActionToggleAuth, func(context.Context, *int) error { c.ToggleAuth(); return nil })
	return c
}

// State returns a copy of the current UI state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Dispatch runs a registered action. Failures are also left in the flash.
func (c *Console) Dispatch(ctx context.Context, a Action) error {
	err := c.actions.Dispatch(ctx, a)
	if err != nil && (errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrMissingID)) {
		c.setFlash(err.Error())
	}
	return err
}

// Render writes the page for the current state. The flash is shown once.
func (c *Console) Render(ctx context.Context, w io.Writer) error {
	c.mu.Lock()
	needsView := c.state.Authenticated && c.state.Fragment == ""
	view := c.state.View
	c.mu.Unlock()
	if needsView {
		// errors are already in the fragment or flash
		_ = c.ShowView(ctx, view)
	}

	c.mu.Lock()
	snapshot := c.state.Snapshot()
	c.state.Flash = ""
	c.mu.Unlock()
	return c.renderer.Page(w, snapshot)
}

// ToggleAuth switches the auth form between login and register.
func (c *Console) ToggleAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode == ModeLogin {
		c.state.Mode = ModeRegister
	} else {
		c.state.Mode = ModeLogin
	}
}

// SubmitAuth logs in or registers depending on the auth mode.
func (c *Console) SubmitAuth(ctx context.Context, email, password string) error {
	c.mu.Lock()
	mode := c.state.Mode
	c.mu.Unlock()

	if mode == ModeRegister {
		return c.Register(ctx, email, password)
	}
	return c.Login(ctx, email, password)
}

// Login authenticates, stores the token and shows the dashboard.
func (c *Console) Login(ctx context.Context, email, password string) error {
	result, err := c.client.Login(ctx, email, password)
	if err != nil {
		c.log.Info("Login failed", zap.String("email", email), zap.Error(err))
		c.setFlash(err.Error())
		return err
	}
	if err := c.tokens.Save(result.Token, result.Email); err != nil {
		c.log.Error("Failed to store session", zap.Error(err))
		c.setFlash("Could not store the session")
		return err
	}

	c.mu.Lock()
	c.state = State{Mode: ModeLogin, Authenticated: true, Email: result.Email, View: ViewDashboard, generation: c.state.generation}
	c.mu.Unlock()

	c.log.Info("Logged in", zap.String("email", result.Email))
	return c.ShowView(ctx, ViewDashboard)
}

// Register creates an account and switches the form back to login.
func (c *Console) Register(ctx context.Context, email, password string) error {
	if err := c.client.Register(ctx, email, password); err != nil {
		c.log.Info("Registration failed", zap.String("email", email), zap.Error(err))
		c.setFlash(err.Error())
		return err
	}

	c.mu.Lock()
	c.state.Mode = ModeLogin
	c.state.Flash = "Registration successful! Please login."
	c.mu.Unlock()
	return nil
}

// Logout forgets the session and returns to the login form.
func (c *Console) Logout() error {
	err := c.tokens.Clear()
	if err != nil {
		c.log.Error("Failed to clear session", zap.Error(err))
	}

	c.mu.Lock()
	c.logoutLocked()
	c.mu.Unlock()
	return err
}

func (c *Console) logoutLocked() {
	// bump the generation so in-flight fetches are dropped
	c.state = State{Mode: ModeLogin, View: ViewDashboard, generation: c.state.generation + 1}
}

// ShowView switches to view and renders it from a fresh product list. A
// result that arrives after a newer ShowView started is discarded. A 401
// logs out; other failures leave an inline error in the current view.
func (c *Console) ShowView(ctx context.Context, view View) error {
	loading, err := c.renderer.Loading()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if !c.state.Authenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	c.state.generation++
	gen := c.state.generation
	c.state.View = view
	c.state.Fragment = loading
	email := c.state.Email
	c.mu.Unlock()

	var products []models.Product
	var fetchErr error
	if view == ViewSettings {
		products = c.State().Products
	} else {
		products, fetchErr = c.client.ListProducts(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.state.generation {
		c.log.Debug("Discarding stale view result", zap.String("view", string(view)), zap.Uint64("generation", gen))
		return nil
	}

	if fetchErr != nil {
		if IsUnauthorized(fetchErr) {
			c.log.Info("Session rejected, logging out", zap.String("email", email))
			if err := c.tokens.Clear(); err != nil {
				c.log.Error("Failed to clear session", zap.Error(err))
			}
			c.logoutLocked()
			c.state.Flash = "Your session has expired. Please login again."
			return fetchErr
		}
		c.log.Warn("Failed to load products", zap.String("view", string(view)), zap.Error(fetchErr))
		fragment, err := c.renderer.Error(fetchErr.Error())
		if err != nil {
			return err
		}
		c.state.Fragment = fragment
		return fetchErr
	}

	fragment, err := c.renderer.View(view, products, email)
	if err != nil {
		return err
	}
	c.state.Products = products
	c.state.Fragment = fragment
	return nil
}

// Refresh re-runs the fetch-and-render cycle for the active view.
func (c *Console) Refresh(ctx context.Context) error {
	c.mu.Lock()
	view := c.state.View
	c.mu.Unlock()
	return c.ShowView(ctx, view)
}

// OpenAdd opens an empty product form.
func (c *Console) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Modal = Modal{Open: true}
}

// OpenEdit opens the form filled from the cached product list.
func (c *Console) OpenEdit(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.state.findProduct(id)
	if !ok {
		c.state.Flash = "Product not found"
		return fmt.Errorf("edit %d: %w", id, ErrUnknownProduct)
	}
	c.state.Modal = Modal{
		Open:      true,
		EditingID: &product.ID,
		Form: ProductForm{
			Name:  product.Name,
			Price: strconv.FormatFloat(product.Price, 'f', -1, 64),
			Stock: strconv.Itoa(product.Stock),
		},
	}
	return nil
}

// CloseModal discards the product form.
func (c *Console) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Modal = Modal{}
}

// SubmitModal creates or updates a product from the form. On failure the
// modal stays open with the error and the entered values.
func (c *Console) SubmitModal(ctx context.Context, form ProductForm) error {
	c.mu.Lock()
	if !c.state.Modal.Open {
		c.mu.Unlock()
		return errors.New("product form is not open")
	}
	c.state.Modal.Form = form
	c.state.Modal.Error = ""
	var editingID *int
	if c.state.Modal.EditingID != nil {
		id := *c.state.Modal.EditingID
		editingID = &id
	}
	c.mu.Unlock()

	payload, err := form.payload()
	if err != nil {
		c.setModalError(err.Error())
		return err
	}

	if editingID != nil {
		_, err = c.client.UpdateProduct(ctx, *editingID, payload.WithID(*editingID))
	} else {
		_, err = c.client.CreateProduct(ctx, payload)
	}
	if err != nil {
		if IsUnauthorized(err) {
			c.log.Info("Session rejected, logging out")
			_ = c.Logout()
			c.setFlash("Your session has expired. Please login again.")
			return err
		}
		c.log.Warn("Failed to save product", zap.Error(err))
		c.setModalError(err.Error())
		return err
	}

	c.CloseModal()
	return c.Refresh(ctx)
}

// RequestDelete asks for confirmation before deleting id.
func (c *Console) RequestDelete(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PendingDelete = &id
}

func (c *Console) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PendingDelete = nil
}

// ConfirmDelete deletes the product awaiting confirmation and refreshes the
// active view.
func (c *Console) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.state.PendingDelete
	c.state.PendingDelete = nil
	c.mu.Unlock()
	if pending == nil {
		return ErrNoPendingDelete
	}

	if err := c.client.DeleteProduct(ctx, *pending); err != nil {
		if IsUnauthorized(err) {
			_ = c.Logout()
			c.setFlash("Your session has expired. Please login again.")
			return err
		}
		c.log.Warn("Failed to delete product", zap.Int("product_id", *pending), zap.Error(err))
		c.setFlash(err.Error())
		return err
	}
	return c.Refresh(ctx)
}

func (c *Console) setFlash(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Flash = msg
}

func (c *Console) setModalError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Modal.Error = msg
}

// payload parses the form values.
func (f ProductForm) payload() (*models.ProductPayload, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return nil, errors.New("price must be a number")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil {
		return nil, errors.New("stock must be a whole number")
	}
	return models.NewProductPayload(name, price, stock), nil
}
