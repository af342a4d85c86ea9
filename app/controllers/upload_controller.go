package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

const (
	maxUploadFileBytes = 1 << 20
	maxUploadFiles     = 20
)

// UploadController turns uploaded source files into code for the generator.
// Free users upload one file; pro users may upload several at once.
type UploadController struct {
	users repository.UserRepository
}

func NewUploadController(users repository.UserRepository) *UploadController {
	return &UploadController{users: users}
}

// HandleUploadFiles serves POST /api/upload-files. Free users send a single
// "file" field, entitled users "files[]".
func (uc *UploadController) HandleUploadFiles(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	user, _, err := uc.users.EnsureUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Expected a multipart form")
	}

	if entitlements.Entitled(entitlements.NormalizeTier(user.Tier), entitlements.TierPro) {
		files := form.File["files[]"]
		if len(files) == 0 {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "No files provided")
		}
		if len(files) > maxUploadFiles {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", fmt.Sprintf("At most %d files per upload", maxUploadFiles))
		}
		var combined strings.Builder
		for _, fh := range files {
			code, err := readSourceFile(fh)
			if err != nil {
				return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
			}
			combined.WriteString("\n\n// File: ")
			combined.WriteString(fh.Filename)
			combined.WriteString("\n")
			combined.WriteString(code)
		}
		return c.JSON(fiber.Map{"code": combined.String()})
	}

	files := form.File["file"]
	if len(files) == 0 {
		if len(form.File["files[]"]) > 0 {
			return jsonError(c, fiber.StatusForbidden, "model_not_entitled", "Multiple file uploads require a Pro subscription")
		}
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "No file provided")
	}
	code, err := readSourceFile(files[0])
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	return c.JSON(fiber.Map{"code": code})
}

func readSourceFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxUploadFileBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", fh.Filename, maxUploadFileBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s could not be read", fh.Filename)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxUploadFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("%s could not be read", fh.Filename)
	}
	if len(b) > maxUploadFileBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", fh.Filename, maxUploadFileBytes)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%s is not a text file", fh.Filename)
	}
	return string(b), nil
}
