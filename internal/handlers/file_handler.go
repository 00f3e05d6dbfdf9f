package handlers

import (
	"io"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func fileID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("file_id"))
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.KindInvalidArgument, "Invalid file id", err)
	}
	return id, nil
}

func (h *FileHandler) PresignedURL(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return err
	}
	resp, err := h.fileService.PresignedURL(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// Upload stores the multipart field "file".
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.New(apperrors.KindBadRequest, "file is required", err)
	}
	f, err := header.Open()
	if err != nil {
		return apperrors.New(apperrors.KindBadRequest, "", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return apperrors.New(apperrors.KindBadRequest, "", err)
	}

	contentType := header.Header.Get(fiber.HeaderContentType)
	if contentType == "" || contentType == fiber.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}

	resp, err := h.fileService.Upload(c.UserContext(), middleware.GetCurrentUser(c), data, header.Filename, contentType)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *FileHandler) Delete(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return err
	}
	if err := h.fileService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, nil)
}
