package properties

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/skostadinov0141/soulforger-sr6-backend-api/auth"
)

// Controller exposes the content surface. Reads are open; writes require
// an identity at or above the tester tier.
type Controller struct {
	store    *Store
	accounts *auth.Accounts
	logger   auth.Logger
}

// NewController wires the content controller to its store and the auth
// core used for the privilege gate.
func NewController(store *Store, accounts *auth.Accounts) *Controller {
	return &Controller{
		store:    store,
		accounts: accounts,
		logger:   auth.DefaultLogger(),
	}
}

// WithLogger overrides the logger.
func (c *Controller) WithLogger(logger auth.Logger) *Controller {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes attaches the content endpoints under /contribute.
func RegisterRoutes(app fiber.Router, c *Controller) {
	g := app.Group("/contribute")

	gate := c.requirePrivilege(auth.PrivilegeTester)

	g.Post("/modify_attribute", gate, c.ModifyAttribute)
	g.Get("/get_attribute", c.GetAttribute)
	g.Post("/modify_skill", gate, c.ModifySkill)
	g.Get("/get_skill", c.GetSkill)
	g.Post("/modify_advantage", gate, c.ModifyAdvantage)
	g.Get("/get_advantage", c.GetAdvantage)
	g.Post("/modify_disadvantage", gate, c.ModifyDisadvantage)
	g.Get("/get_disadvantage", c.GetDisadvantage)
}

// requirePrivilege resolves the bearer token and rejects callers below the
// given tier. Privilege is read from the stored record, so a deleted
// contributor loses access immediately.
func (c *Controller) requirePrivilege(level int) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		raw, err := bearerToken(ctx)
		if err != nil {
			return c.respondError(ctx, err)
		}

		identity, err := c.accounts.ResolveIdentity(ctx.Context(), raw)
		if err != nil {
			return c.respondError(ctx, err)
		}

		if identity.PrivilegeLevel < level {
			return c.respondError(ctx, auth.ErrInsufficientPrivilege)
		}

		return ctx.Next()
	}
}

// ModifyAttribute upserts an attribute definition.
func (c *Controller) ModifyAttribute(ctx *fiber.Ctx) error {
	payload := new(Attribute)
	if err := ctx.BodyParser(payload); err != nil || payload.ID == "" {
		return c.respondError(ctx, auth.ErrMalformedID)
	}

	if err := c.store.Upsert(ctx.Context(), CollectionAttributes, payload.ID, payload); err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(payload)
}

// GetAttribute returns one attribute, or every attribute for id=*.
func (c *Controller) GetAttribute(ctx *fiber.Ctx) error {
	return c.get(ctx, CollectionAttributes)
}

// ModifySkill upserts a skill definition, splitting the specialties list.
func (c *Controller) ModifySkill(ctx *fiber.Ctx) error {
	payload := new(SkillPayload)
	if err := ctx.BodyParser(payload); err != nil || payload.ID == "" {
		return c.respondError(ctx, auth.ErrMalformedID)
	}

	skill := payload.Skill()
	if err := c.store.Upsert(ctx.Context(), CollectionSkills, skill.ID, skill); err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(skill)
}

// GetSkill returns one skill, or every skill for id=*.
func (c *Controller) GetSkill(ctx *fiber.Ctx) error {
	return c.get(ctx, CollectionSkills)
}

// ModifyAdvantage upserts an advantage definition.
func (c *Controller) ModifyAdvantage(ctx *fiber.Ctx) error {
	return c.modifyAdvantageDisadvantage(ctx, CollectionAdvantages)
}

// GetAdvantage returns one advantage, or every advantage for id=*.
func (c *Controller) GetAdvantage(ctx *fiber.Ctx) error {
	return c.get(ctx, CollectionAdvantages)
}

// ModifyDisadvantage upserts a disadvantage definition.
func (c *Controller) ModifyDisadvantage(ctx *fiber.Ctx) error {
	return c.modifyAdvantageDisadvantage(ctx, CollectionDisadvantages)
}

// GetDisadvantage returns one disadvantage, or every disadvantage for id=*.
func (c *Controller) GetDisadvantage(ctx *fiber.Ctx) error {
	return c.get(ctx, CollectionDisadvantages)
}

func (c *Controller) modifyAdvantageDisadvantage(ctx *fiber.Ctx, collection string) error {
	payload := new(AdvantageDisadvantage)
	if err := ctx.BodyParser(payload); err != nil || payload.ID == "" {
		return c.respondError(ctx, auth.ErrMalformedID)
	}

	if err := c.store.Upsert(ctx.Context(), collection, payload.ID, payload); err != nil {
		return c.respondError(ctx, err)
	}
	return ctx.JSON(payload)
}

func (c *Controller) get(ctx *fiber.Ctx, collection string) error {
	id := ctx.Query("id")
	if id == "" {
		return c.respondError(ctx, auth.ErrMalformedID)
	}

	if id == "*" {
		docs, err := c.store.List(ctx.Context(), collection)
		if err != nil {
			return c.respondError(ctx, err)
		}
		return ctx.JSON(docs)
	}

	doc, err := c.store.Get(ctx.Context(), collection, id)
	if err != nil {
		return c.respondError(ctx, err)
	}
	if doc == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no property with that id",
		})
	}
	return ctx.JSON(doc)
}

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

	return ctx.Status(status).JSON(fiber.Map{
		"error":     rich.Message,
		"text_code": rich.TextCode,
	})
}

func bearerToken(ctx *fiber.Ctx) (string, error) {
	header := ctx.Get(fiber.HeaderAuthorization)
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", auth.ErrTokenMalformed
	}
	return header[len(scheme):], nil
}
