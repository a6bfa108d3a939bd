package product

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-store/internal/interface/presenter"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/api/v1/products", h.getProducts)
	r.Get("/api/v1/products/:id<int>", h.getProduct)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/api/v1/admin/products", guard, h.getAllProducts)
	r.Get("/api/v1/admin/products/export", guard, h.exportProducts)
	r.Post("/api/v1/admin/products", guard, h.createProduct)
	r.Put("/api/v1/admin/products/:id<int>", guard, h.updateProduct)
	r.Delete("/api/v1/admin/products/:id<int>", guard, h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if category := c.Query("category"); category != "" {
		return c.JSON(h.service.ListByCategory(ctx, category))
	}
	return c.JSON(h.service.Search(ctx, c.Query("q")))
}

func (h *Handler) getAllProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.List(c.UserContext()))
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return presenter.BadBody(c, err)
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return presenter.Message(c, fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return presenter.BadBody(c, err)
	}
	// validate payload and return all validation errors together
	if err := Validate(*form); err != nil {
		return presenter.Error(c, err)
	}

	created, err := h.service.Add(c.UserContext(), form.Product())
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return presenter.BadBody(c, err)
	}

	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return presenter.BadBody(c, err)
	}
	if err := Validate(*form); err != nil {
		return presenter.Error(c, err)
	}

	updated, err := h.service.Update(c.UserContext(), id, form.Patch())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return presenter.Message(c, fiber.StatusNotFound, "Product not found")
		}
		return presenter.Error(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return presenter.BadBody(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return presenter.Message(c, fiber.StatusNotFound, "Product not found")
		}
		return presenter.Error(c, err)
	}
	return presenter.Message(c, fiber.StatusOK, "Product deleted")
}

func (h *Handler) exportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.UserContext(), &buf); err != nil {
		return presenter.Error(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Send(buf.Bytes())
}
