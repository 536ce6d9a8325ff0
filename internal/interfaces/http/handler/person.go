package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	personnelapp "github.com/mpvestiario/backend/internal/application/personnel"
)

// PersonService is the staff registry used by PersonHandler
type PersonService interface {
	Create(ctx context.Context, req personnelapp.PersonRequest) (*personnelapp.PersonResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error)
	List(ctx context.Context, filter personnelapp.PersonListFilter) ([]personnelapp.PersonResponse, error)
	Update(ctx context.Context, id uuid.UUID, req personnelapp.PersonRequest) (*personnelapp.PersonResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PersonHandler handles staff endpoints
type PersonHandler struct {
	BaseHandler
	people PersonService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(people PersonService) *PersonHandler {
	return &PersonHandler{people: people}
}

// Create registers a person.
// POST /people
func (h *PersonHandler) Create(c *gin.Context) {
	var req personnelapp.PersonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.people.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns people ordered by name.
// GET /people?search=&active=
func (h *PersonHandler) List(c *gin.Context) {
	var filter personnelapp.PersonListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	people, err := h.people.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, people)
}

// GetByID returns one person.
// GET /people/:id
func (h *PersonHandler) GetByID(c *gin.Context) {
	h.withID(c, h.people.GetByID)
}

// Update replaces a person's profile.
// PUT /people/:id
func (h *PersonHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req personnelapp.PersonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.people.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate re-enables a person for new assignments.
// POST /people/:id/activate
func (h *PersonHandler) Activate(c *gin.Context) {
	h.withID(c, h.people.Activate)
}

// Deactivate stops new assignments to a person; existing ones are kept.
// POST /people/:id/deactivate
func (h *PersonHandler) Deactivate(c *gin.Context) {
	h.withID(c, h.people.Deactivate)
}

// Delete removes a person holding no assignments.
// DELETE /people/:id
func (h *PersonHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.people.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PersonHandler) withID(c *gin.Context, fn func(context.Context, uuid.UUID) (*personnelapp.PersonResponse, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
