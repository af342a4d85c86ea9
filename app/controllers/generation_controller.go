package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/generation"
)

// Upper bound for one request: two sequential provider calls plus writes.
const generationTimeout = 3 * time.Minute

// Generator is implemented by generation.Pipeline.
type Generator interface {
	Run(ctx context.Context, req generation.Request) (*generation.Result, error)
}

type GenerationController struct {
	pipeline Generator
}

func NewGenerationController(pipeline Generator) *GenerationController {
	return &GenerationController{pipeline: pipeline}
}

type generateTestsBody struct {
	Code      string `json:"code"`
	Framework string `json:"framework"`
	Model     string `json:"model"`
}

// HandleGenerateTests serves POST /api/generate-tests.
func (gc *GenerationController) HandleGenerateTests(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var body generateTestsBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Request body must be JSON with code, framework and model")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), generationTimeout)
	defer cancel()

	res, err := gc.pipeline.Run(ctx, generation.Request{
		UserID:    userID,
		Code:      body.Code,
		Framework: body.Framework,
		Model:     body.Model,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
