package console

import (
	"bytes"

	"inventory/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// PageHandler serves the console to a browser. Every POST updates the
// Console and redirects back to the page.
type PageHandler struct {
	console *Console
	log     *zap.Logger
}

func NewPageHandler(console *Console, log *zap.Logger) *PageHandler {
	return &PageHandler{console: console, log: log}
}

// RegisterRoutes registers the page and form routes.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandlePage)
	router.Post("/auth", h.HandleAuth)
	router.Post("/view/:name", h.HandleView)
	router.Post("/action", h.HandleAction)
	router.Post("/modal", h.HandleModal)
}

func (h *PageHandler) HandlePage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.console.Render(c.UserContext(), &buf); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *PageHandler) HandleAuth(c *fiber.Ctx) error {
	if err := h.console.SubmitAuth(c.UserContext(), formValue(c, "email"), formValue(c, "password")); err != nil {
		logger.FromCtx(c, h.log).Debug("Auth submission failed", zap.Error(err))
	}
	return h.backToPage(c)
}

func (h *PageHandler) HandleView(c *fiber.Ctx) error {
	view, ok := ParseView(c.Params("name"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Unknown view")
	}
	if err := h.console.ShowView(c.UserContext(), view); err != nil {
		logger.FromCtx(c, h.log).Debug("View failed", zap.String("view", string(view)), zap.Error(err))
	}
	return h.backToPage(c)
}

func (h *PageHandler) HandleAction(c *fiber.Ctx) error {
	action, err := ParseAction(formValue(c, "action"), formValue(c, "id"))
	if err != nil {
		h.console.setFlash(err.Error())
		return h.backToPage(c)
	}
	if err := h.console.Dispatch(c.UserContext(), action); err != nil {
		logger.FromCtx(c, h.log).Debug("Action failed", zap.String("action", string(action.Type)), zap.Error(err))
	}
	return h.backToPage(c)
}

func (h *PageHandler) HandleModal(c *fiber.Ctx) error {
	form := ProductForm{
		Name:  formValue(c, "name"),
		Price: formValue(c, "price"),
		Stock: formValue(c, "stock"),
	}
	if err := h.console.SubmitModal(c.UserContext(), form); err != nil {
		logger.FromCtx(c, h.log).Debug("Product form failed", zap.Error(err))
	}
	return h.backToPage(c)
}

func (h *PageHandler) backToPage(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}

// formValue copies the value out of the request buffer; the Console keeps
// form values after the request ends.
func formValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.FormValue(key))
}
