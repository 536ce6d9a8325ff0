package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mpvestiario/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers of the API. Changes and Photos are
// optional: a nil handler leaves its routes unregistered.
type Handlers struct {
	Health         *handler.HealthHandler
	Assignments    *handler.AssignmentHandler
	Articles       *handler.ArticleHandler
	People         *handler.PersonHandler
	Dashboard      *handler.DashboardHandler
	Reconciliation *handler.ReconciliationHandler
	Changes        *handler.ChangeStreamHandler
	Photos         *handler.PhotoHandler
}

// Mount registers /health on the engine and every API group on r, then
// calls r.Setup
func Mount(engine *gin.Engine, r *Router, h Handlers) {
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	assignments := NewDomainGroup("assignments", "/assignments")
	assignments.GET("", h.Assignments.List)
	assignments.POST("", h.Assignments.Create)
	assignments.GET("/:id", h.Assignments.GetByID)
	assignments.PUT("/:id", h.Assignments.Update)
	assignments.DELETE("/:id", h.Assignments.Delete)

	articles := NewDomainGroup("articles", "/articles")
	articles.GET("", h.Articles.List)
	articles.POST("", h.Articles.Create)
	articles.GET("/groups", h.Articles.Groups)
	articles.GET("/lookup", h.Articles.Lookup)
	articles.GET("/:id", h.Articles.GetByID)
	articles.PUT("/:id", h.Articles.Update)
	articles.DELETE("/:id", h.Articles.Delete)
	articles.POST("/:id/restock", h.Articles.Restock)
	articles.GET("/:id/movements", h.Articles.Movements)
	articles.POST("/:id/photo", h.Articles.UploadPhoto)

	people := NewDomainGroup("people", "/people")
	people.GET("", h.People.List)
	people.POST("", h.People.Create)
	people.GET("/:id", h.People.GetByID)
	people.PUT("/:id", h.People.Update)
	people.POST("/:id/activate", h.People.Activate)
	people.POST("/:id/deactivate", h.People.Deactivate)
	people.DELETE("/:id", h.People.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", h.Dashboard.Get)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.GET("/reconciliation", h.Reconciliation.Run)

	r.Register(assignments).
		Register(articles).
		Register(people).
		Register(dashboard).
		Register(ledger)

	if h.Changes != nil {
		changes := NewDomainGroup("changes", "/changes")
		changes.GET("/stream", h.Changes.Stream)
		r.Register(changes)
	}
	if h.Photos != nil {
		photos := NewDomainGroup("photos", "/photos")
		photos.GET("/*key", h.Photos.Get)
		r.Register(photos)
	}

	r.Setup()
}
