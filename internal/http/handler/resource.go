package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"peopleapi/internal/http/middleware"
	"peopleapi/internal/model"
	"peopleapi/internal/service"
	"peopleapi/internal/validation"
)

// Resource serves the CRUD surface of one entity type under /api/<name>.
type Resource[T model.Model] struct {
	name     string
	basePath string
	svc      service.DataService[T]
	export   service.ExportService
	newT     func() T
	log      zerolog.Logger
}

// NewResource builds the handlers for svc. newEntity must return a fresh,
// non-nil entity to decode request bodies into.
func NewResource[T model.Model](name string, svc service.DataService[T], newEntity func() T, log zerolog.Logger) *Resource[T] {
	return &Resource[T]{
		name:     name,
		basePath: "/api/" + name,
		svc:      svc,
		newT:     newEntity,
		log:      log.With().Str("component", "handler").Str("resource", name).Logger(),
	}
}

// NewCustomerResource serves /api/customer.
func NewCustomerResource(svc service.CustomerService, log zerolog.Logger) *Resource[*model.Customer] {
	return NewResource("customer", svc, func() *model.Customer { return new(model.Customer) }, log)
}

// NewPeopleResource serves /api/people.
func NewPeopleResource(svc service.PeopleService, log zerolog.Logger) *Resource[*model.Person] {
	return NewResource("people", svc, func() *model.Person { return new(model.Person) }, log)
}

// WithExport enables POST <base>/export backed by x.
func (r *Resource[T]) WithExport(x service.ExportService) *Resource[T] {
	r.export = x
	return r
}

// Register mounts the resource routes on router.
func (r *Resource[T]) Register(router fiber.Router) {
	g := router.Group(r.basePath)

	g.Get("", r.List)
	g.Post("", r.Create)
	g.Put("", r.Update)
	g.Patch("", r.Update)
	g.Delete("", r.DeleteByBody)

	if r.export != nil {
		g.Post("/export", r.Export)
	}

	g.Get("/:id", r.GetByID)
	g.Put("/:id", r.Update)
	g.Patch("/:id", r.Update)
	g.Delete("/:id", r.Delete)
}

// pathID parses the :id route parameter. Only positive integers are accepted.
func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id must be a positive integer")
}

func malformedBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "MALFORMED_BODY", "request body must be valid JSON")
}

// GetByID returns one entity.
//
// @Summary Get by id
// @Tags resources
// @Produce json
// @Param resource path string true "customer or people"
// @Param id path int true "entity id"
// @Success 200 {object} model.Customer
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/{resource}/{id} [get]
func (r *Resource[T]) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}

	e, err := r.svc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, r.log, "get", err)
	}
	return c.JSON(e)
}

// List returns every entity ordered by id.
//
// @Summary List all
// @Tags resources
// @Produce json
// @Param resource path string true "customer or people"
// @Success 200 {array} model.Customer
// @Router /api/{resource} [get]
func (r *Resource[T]) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	items, err := r.svc.GetAll(ctx).OrderBy("id", false).All(ctx)
	if err != nil {
		return writeServiceError(c, r.log, "list", err)
	}
	return c.JSON(items)
}

// Create stores a new entity. Client supplied id and timestamps are ignored.
//
// @Summary Create
// @Tags resources
// @Accept json
// @Produce json
// @Param resource path string true "customer or people"
// @Param body body model.Customer true "first_name and last_name must not be blank"
// @Success 201 {object} model.Customer
// @Failure 400 {object} errorPayload
// @Router /api/{resource} [post]
func (r *Resource[T]) Create(c *fiber.Ctx) error {
	e := r.newT()
	if err := c.BodyParser(e); err != nil {
		return malformedBody(c)
	}
	*e.Meta() = model.Base{}

	if err := validation.Struct(e); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			r.log.Info().
				Str("request_id", middleware.GetRequestID(c)).
				Str("op", "create").
				Err(err).
				Msg("rejected payload")
			return writeValidationError(c, verrs)
		}
		return writeServiceError(c, r.log, "create", err)
	}

	created, err := r.svc.Add(c.UserContext(), e)
	if err != nil {
		return writeServiceError(c, r.log, "create", err)
	}

	c.Location(r.basePath + "/" + strconv.FormatInt(created.Meta().ID, 10))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Update overwrites first_name and last_name of an existing entity. The id
// comes from the path, the body, or both when they agree.
//
// @Summary Update
// @Tags resources
// @Accept json
// @Produce json
// @Param resource path string true "customer or people"
// @Param id path int false "entity id"
// @Param body body model.Customer true "entity"
// @Success 200 {object} model.Customer
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/{resource}/{id} [put]
// @Router /api/{resource}/{id} [patch]
func (r *Resource[T]) Update(c *fiber.Ctx) error {
	e := r.newT()
	if err := c.BodyParser(e); err != nil {
		return malformedBody(c)
	}

	meta := e.Meta()
	if c.Params("id") != "" {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		switch meta.ID {
		case 0:
			meta.ID = id
		case id:
		default:
			return writeError(c, fiber.StatusBadRequest, "ID_MISMATCH", "path id and body id differ")
		}
	}
	if meta.ID <= 0 {
		return invalidID(c)
	}

	updated, err := r.svc.Update(c.UserContext(), e)
	if err != nil {
		return writeServiceError(c, r.log, "update", err)
	}
	return c.JSON(updated)
}

// Delete removes the entity named in the path and answers whether a row went away.
//
// @Summary Delete by id
// @Tags resources
// @Produce json
// @Param resource path string true "customer or people"
// @Param id path int true "entity id"
// @Success 200 {boolean} boolean
// @Failure 400 {object} errorPayload
// @Router /api/{resource}/{id} [delete]
func (r *Resource[T]) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	return r.delete(c, id)
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

// DeleteByBody is Delete with the id taken from a {"id": n} body.
//
// @Summary Delete by body
// @Tags resources
// @Accept json
// @Produce json
// @Param resource path string true "customer or people"
// @Param body body deleteRequest true "id to delete"
// @Success 200 {boolean} boolean
// @Failure 400 {object} errorPayload
// @Router /api/{resource} [delete]
func (r *Resource[T]) DeleteByBody(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return malformedBody(c)
	}
	if req.ID <= 0 {
		return invalidID(c)
	}
	return r.delete(c, req.ID)
}

func (r *Resource[T]) delete(c *fiber.Ctx, id int64) error {
	deleted, err := r.svc.Delete(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, r.log, "delete", err)
	}
	return c.JSON(deleted)
}

// Export uploads a JSON snapshot of the resource and returns a download link.
//
// @Summary Export snapshot
// @Tags resources
// @Produce json
// @Param resource path string true "customer or people"
// @Success 201 {object} service.ExportResult
// @Failure 500 {object} errorPayload
// @Router /api/{resource}/export [post]
func (r *Resource[T]) Export(c *fiber.Ctx) error {
	res, err := r.export.Export(c.UserContext())
	if err != nil {
		return writeServiceError(c, r.log, "export", err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
