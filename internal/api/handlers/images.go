package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/images"
	"github.com/Peblo69/BGman4e/internal/moderation"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// ImageHandler serves image generation and transient uploads
type ImageHandler struct {
	generator *images.Generator
	uploads   *images.Registry
	analyzer  *images.Analyzer
	profiles  repository.ProfileRepository
	log       *logrus.Entry
}

// NewImageHandler creates an image handler
func NewImageHandler(generator *images.Generator, uploads *images.Registry, analyzer *images.Analyzer, profiles repository.ProfileRepository) *ImageHandler {
	return &ImageHandler{
		generator: generator,
		uploads:   uploads,
		analyzer:  analyzer,
		profiles:  profiles,
		log:       logrus.WithField("component", "api.images"),
	}
}

// Generate handles POST /images/generate
func (h *ImageHandler) Generate(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var params images.GenerateParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Невалидна заявка.",
		})
	}
	if params.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Моля, въведете описание на изображението.",
		})
	}

	result, err := h.generator.Generate(c.Context(), params)
	if err != nil {
		if errors.Is(err, moderation.ErrContentRejected) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.log.WithError(err).Error("image generation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Неуспешно генериране на изображение. Моля, опитайте отново.",
		})
	}

	if err := h.profiles.IncrementImageCount(c.Context(), userID, 1); err != nil {
		h.log.WithError(err).Warn("failed to increment image count")
	}

	return c.JSON(result)
}

// Upload handles POST /uploads. Accepts one multipart image, registers it as
// a transient attachment and analyzes it before returning.
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Моля, прикачете файл.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Неуспешно четене на файла.",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, images.MaxUploadSize+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Неуспешно четене на файла.",
		})
	}

	attachment, err := h.uploads.Add(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrUploadTooLarge), errors.Is(err, images.ErrUnsupportedType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Неуспешно качване на файла.",
			})
		}
	}

	if upload, err := h.uploads.Get(attachment.ID); err == nil {
		attachment.AnalysisResult = h.analyzer.Analyze(c.Context(), upload)
	}

	return c.Status(fiber.StatusCreated).JSON(attachment)
}

// DeleteUpload handles DELETE /uploads/:id
func (h *ImageHandler) DeleteUpload(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return err
	}

	h.uploads.Release(c.Params("id"))
	return c.JSON(fiber.Map{"success": true})
}

// Models handles GET /images/models. Lists the configured models and sizes.
func (h *ImageHandler) Models(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"models": images.ModelConfigs,
		"sizes":  images.ImageSizes,
	})
}
