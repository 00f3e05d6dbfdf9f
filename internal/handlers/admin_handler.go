package handlers

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	billService *services.BillService
}

func NewAdminHandler(billService *services.BillService) *AdminHandler {
	return &AdminHandler{billService: billService}
}

// ListBills pages through all bills, newest first.
func (h *AdminHandler) ListBills(c *fiber.Ctx) error {
	resp, err := h.billService.List(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return ok(c, resp)
}
