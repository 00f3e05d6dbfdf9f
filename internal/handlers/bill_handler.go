package handlers

import (
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BillHandler struct {
	billService *services.BillService
}

func NewBillHandler(billService *services.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) Get(c *fiber.Ctx) error {
	detail, err := h.billService.GetByBillNumber(c.UserContext(), middleware.GetCurrentUser(c), c.Params("bill_number"))
	if err != nil {
		return err
	}
	return ok(c, detail)
}

func (h *BillHandler) GetShared(c *fiber.Ctx) error {
	detail, err := h.billService.GetSharedByBillNumber(c.UserContext(), middleware.GetCurrentUser(c), c.Params("bill_number"))
	if err != nil {
		return err
	}
	return ok(c, detail)
}

func (h *BillHandler) Create(c *fiber.Ctx) error {
	var req dto.BillRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.billService.Create(c.UserContext(), middleware.GetCurrentUser(c), &req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *BillHandler) Update(c *fiber.Ctx) error {
	var req dto.BillRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.billService.Update(c.UserContext(), middleware.GetCurrentUser(c), c.Params("bill_number"), &req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}
