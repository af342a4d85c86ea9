package controllers

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/mail"
)

// Mailer is implemented by mail.SMTPMailer.
type Mailer interface {
	SendMail(to, subject, body string) error
}

type MailController struct {
	mailer   Mailer
	validate *validator.Validate
}

func NewMailController(mailer Mailer) *MailController {
	return &MailController{mailer: mailer, validate: validator.New()}
}

type sendEmailBody struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Text    string `json:"text" validate:"required,max=100000"`
}

// HandleSendEmail serves POST /api/send-email, used to mail generated tests.
func (mc *MailController) HandleSendEmail(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var body sendEmailBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Request body must be JSON with to, subject and text")
	}
	if err := mc.validate.Struct(body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "to must be an email address; subject and text are required")
	}

	if err := mc.mailer.SendMail(body.To, body.Subject, body.Text); err != nil {
		switch {
		case errors.Is(err, mail.ErrDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "service_unavailable", "Email is not configured")
		case errors.Is(err, mail.ErrHeaderInject):
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		slog.Error("send email failed", "user_id", userID, "err", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to send email")
	}
	return c.JSON(fiber.Map{"success": true})
}
