package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext is the authenticated caller of a request.
type UserContext struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id,omitempty"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// Set stores the caller on the fiber context.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyUserID, uc.UserID)
}

// GetUserContext retrieves the user context from fiber context
// Returns an anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the caller's identity-provider subject, or "" if anonymous.
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
