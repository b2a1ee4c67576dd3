package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Controller exposes the lifecycle operations over HTTP. Routing and
// serialization live here; every decision stays in the Accounts
// controller.
type Controller struct {
	accounts *Accounts
	logger   Logger
}

// NewController builds the HTTP controller.
func NewController(accounts *Accounts) *Controller {
	return &Controller{
		accounts: accounts,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger.
func (c *Controller) WithLogger(logger Logger) *Controller {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes attaches the auth endpoints to the router.
func RegisterRoutes(app fiber.Router, c *Controller) {
	app.Post("/token", c.Token)
	app.Get("/get_user_via_token", c.GetUserViaToken)
	// Optional params so an omitted value reaches the empty-input error
	// instead of a router 404.
	app.Get("/check_email_availability/:email?", c.CheckEmailAvailability)
	app.Get("/check_username_availability/:username?", c.CheckUsernameAvailability)
	app.Get("/confirm_password_validity/:password?", c.ConfirmPasswordValidity)
	app.Post("/account_application_tester", c.ApplyTester)
	app.Post("/account_application_admin", c.ApplyAdmin)
	app.Patch("/update_account_status", c.UpdateAccountStatus)
	app.Post("/sign_up", c.SignUp)
	app.Get("/health", c.Health)
}

type tokenRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Token handles the password login and returns a bearer token.
func (c *Controller) Token(ctx *fiber.Ctx) error {
	payload := new(tokenRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return c.respondError(ctx, ErrNoEmptyString)
	}
	if payload.Username == "" || payload.Password == "" {
		return c.respondError(ctx, ErrNoEmptyString)
	}

	token, err := c.accounts.Authenticate(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// GetUserViaToken resolves the bearer token to the current identity.
func (c *Controller) GetUserViaToken(ctx *fiber.Ctx) error {
	raw, err := bearerToken(ctx)
	if err != nil {
		return c.respondError(ctx, err)
	}

	identity, err := c.accounts.ResolveIdentity(ctx.Context(), raw)
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"username":        identity.Username,
		"privilege_level": identity.PrivilegeLevel,
	})
}

// CheckEmailAvailability runs the advisory email pre-check.
func (c *Controller) CheckEmailAvailability(ctx *fiber.Ctx) error {
	email := pathValue(ctx, "email")
	res, err := c.accounts.EmailAvailability(ctx.Context(), email)
	if err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(res)
}

// CheckUsernameAvailability runs the advisory username pre-check.
func (c *Controller) CheckUsernameAvailability(ctx *fiber.Ctx) error {
	username := pathValue(ctx, "username")
	res, err := c.accounts.UsernameAvailability(ctx.Context(), username)
	if err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(res)
}

// ConfirmPasswordValidity runs the stateless password pre-check.
func (c *Controller) ConfirmPasswordValidity(ctx *fiber.Ctx) error {
	password := pathValue(ctx, "password")
	res, err := c.accounts.PasswordValidity(password)
	if err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(res)
}

type applicationRequest struct {
	Username           string `form:"username" json:"username"`
	Email              string `form:"email" json:"email"`
	Password           string `form:"password" json:"password"`
	ApplicationContent string `form:"application_content" json:"application_content"`
}

// ApplyTester files a tester application.
func (c *Controller) ApplyTester(ctx *fiber.Ctx) error {
	return c.apply(ctx, RoleTester)
}

// ApplyAdmin files an admin application.
func (c *Controller) ApplyAdmin(ctx *fiber.Ctx) error {
	return c.apply(ctx, RoleAdmin)
}

func (c *Controller) apply(ctx *fiber.Ctx, role Role) error {
	payload := new(applicationRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return c.respondError(ctx, ErrNoEmptyString)
	}

	_, err := c.accounts.Apply(ctx.Context(), role, ApplyInput{
		Username:           payload.Username,
		Email:              payload.Email,
		Password:           payload.Password,
		ApplicationContent: payload.ApplicationContent,
	})
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{"result": true})
}

type decisionRequest struct {
	ID       string `form:"id" json:"id"`
	Approved bool   `form:"approved" json:"approved"`
	Reason   string `form:"reason" json:"reason"`
}

// UpdateAccountStatus lets a reviewer approve or deny a pending
// application. The reviewer's privilege is taken from the token snapshot.
func (c *Controller) UpdateAccountStatus(ctx *fiber.Ctx) error {
	raw, err := bearerToken(ctx)
	if err != nil {
		return c.respondError(ctx, err)
	}

	claims, err := c.accounts.ValidateToken(raw)
	if err != nil {
		return c.respondError(ctx, err)
	}

	payload := new(decisionRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return c.respondError(ctx, ErrMalformedID)
	}

	targetID, err := primitive.ObjectIDFromHex(payload.ID)
	if err != nil {
		return c.respondError(ctx, ErrMalformedID)
	}

	if err := c.accounts.Decide(ctx.Context(), claims, targetID, payload.Approved, payload.Reason); err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{"result": true})
}

type signUpRequest struct {
	Username    string `form:"username" json:"username"`
	Password    string `form:"password" json:"password"`
	DisplayName string `form:"display_name" json:"display_name"`
	AdminKey    string `form:"admin_key" json:"admin_key"`
}

// SignUp handles the legacy direct sign-up path.
func (c *Controller) SignUp(ctx *fiber.Ctx) error {
	payload := new(signUpRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return c.respondError(ctx, ErrNoEmptyString)
	}

	profile, err := c.accounts.SignUp(ctx.Context(), SignUpInput{
		Username:     payload.Username,
		Password:     payload.Password,
		DisplayName:  payload.DisplayName,
		AdmissionKey: payload.AdminKey,
	})
	if err != nil {
		return c.respondError(ctx, err)
	}

	return ctx.JSON(profile)
}

// Health reports store reachability; 503 when the ping fails.
func (c *Controller) Health(ctx *fiber.Ctx) error {
	if err := c.accounts.HealthCheck(ctx.Context()); err != nil {
		c.logger.Error("health check failed: %v", err)
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}

// respondError maps the typed error taxonomy onto HTTP statuses at the
// boundary. Unrecognized errors become opaque 500s so store details never
// leak to clients.
func (c *Controller) respondError(ctx *fiber.Ctx, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected server error").
			WithCode(goerrors.CodeInternal)
	}

	status := rich.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	if status >= fiber.StatusInternalServerError {
		c.logger.Error("request failed: %v", err)
	}

	body := fiber.Map{
		"error":     rich.Message,
		"text_code": rich.TextCode,
	}
	if details, ok := rich.Metadata["details"]; ok {
		body["details"] = details
	}

	return ctx.Status(status).JSON(body)
}

// bearerToken extracts the credential from the Authorization header. A
// missing or non-bearer header reads as a malformed token.
func bearerToken(ctx *fiber.Ctx) (string, error) {
	header := ctx.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrTokenMalformed
	}

	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", ErrTokenMalformed
	}

	return header[len(scheme):], nil
}

// pathValue unescapes a path parameter; emptiness is reported by the
// validators, not here.
func pathValue(ctx *fiber.Ctx, name string) string {
	raw := ctx.Params(name)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}
