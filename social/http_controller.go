package social

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	identity "github.com/lpuqa/go-identity"
)

// HTTPConfig configures the federated login HTTP surface.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/auth")
	PathPrefix string

	// NewUserURL is the redirect target after a first federated login.
	NewUserURL string

	// HomeURL is the redirect target for returning accounts.
	HomeURL string
}

// HTTPController handles the federated login redirect and callback.
type HTTPController struct {
	authenticator *Authenticator
	config        HTTPConfig
	logger        identity.Logger
}

// NewHTTPController creates a federated login HTTP controller.
func NewHTTPController(auth *Authenticator, cfg HTTPConfig, logger identity.Logger) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/auth"
	}
	if logger == nil {
		logger = identity.DefaultLogger()
	}

	return &HTTPController{
		authenticator: auth,
		config:        cfg,
		logger:        logger,
	}
}

// RegisterRoutes mounts the provider routes.
func (c *HTTPController) RegisterRoutes(app *fiber.App) {
	group := app.Group(c.config.PathPrefix)

	group.Get("/:provider", c.BeginAuth)
	group.Get("/:provider/callback", c.Callback)
}

// BeginAuth starts the OAuth flow.
func (c *HTTPController) BeginAuth(ctx *fiber.Ctx) error {
	providerName := ctx.Params("provider")

	redirect, err := c.authenticator.BeginAuth(ctx.UserContext(), providerName)
	if err != nil {
		return c.authFailed(ctx, providerName, err)
	}

	return ctx.Redirect(redirect, fiber.StatusFound)
}

// Callback handles the OAuth callback. Provider errors, a denied consent
// screen, and state tampering all collapse into the same 400 response so
// the page has a single failure path to render.
func (c *HTTPController) Callback(ctx *fiber.Ctx) error {
	providerName := ctx.Params("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if errCode := ctx.Query("error"); errCode != "" {
		c.logger.Warn("%s callback returned error: %s", providerName, errCode)
		return c.authFailed(ctx, providerName, nil)
	}

	if code == "" || state == "" {
		return c.authFailed(ctx, providerName, ErrInvalidState)
	}

	result, err := c.authenticator.CompleteAuth(ctx.UserContext(), providerName, code, state)
	if err != nil {
		return c.authFailed(ctx, providerName, err)
	}

	target := c.config.HomeURL
	if result.IsNew {
		target = appendQueryParam(c.config.NewUserURL, "new_user", "true")
	}

	return ctx.Redirect(target, fiber.StatusFound)
}

func (c *HTTPController) authFailed(ctx *fiber.Ctx, providerName string, err error) error {
	if err != nil {
		c.logger.Error("%s auth failed: %v", providerName, err)
	}
	return ctx.Status(fiber.StatusBadRequest).SendString("Google auth failed")
}

func appendQueryParam(target, key, value string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}

	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
