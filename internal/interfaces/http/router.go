package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/analytics"
	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/application/auth"
	"github.com/drivelead/drivelead-api/internal/application/duplicate"
	"github.com/drivelead/drivelead-api/internal/application/lead"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LeadUC       *lead.LeadUseCase
	AssignmentUC *assignment.AssignmentUseCase
	RegistryUC   *assignment.OwnerRegistryUseCase
	DuplicateUC  *duplicate.DuplicateUseCase
	AnalyticsUC  *analytics.AnalyticsUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
	Audit        *logger.Logger
}

// Router registra las rutas de la API. Cada comando mutador pasa por el gate
// de capacidades según el rol del token; los rechazos quedan en auditoría.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Leads (protegido)
	leads := protected.Group("/leads")
	leadHandler := NewLeadHandler(deps.LeadUC)
	assignmentHandler := NewAssignmentHandler(deps.AssignmentUC)
	leads.Post("/", RequireCommand(domain.CommandCreateLead, deps.Audit), leadHandler.Create)
	leads.Get("/", RequireCommand(domain.CommandViewLeads, deps.Audit), leadHandler.List)
	leads.Get("/:id", RequireCommand(domain.CommandViewLeads, deps.Audit), leadHandler.GetByID)
	leads.Patch("/:id", RequireCommand(domain.CommandEditLeadFields, deps.Audit), leadHandler.Update)
	leads.Post("/:id/status", RequireCommand(domain.CommandChangeStatus, deps.Audit), leadHandler.ChangeStatus)
	leads.Post("/:id/activities", RequireCommand(domain.CommandSendCommunication, deps.Audit), leadHandler.RegisterActivity)
	leads.Get("/:id/sla", RequireCommand(domain.CommandViewLeads, deps.Audit), leadHandler.GetSLA)
	leads.Get("/:id/duplicates", RequireCommand(domain.CommandViewLeads, deps.Audit), leadHandler.ListDuplicates)
	leads.Get("/:id/suggested-owner", RequireCommand(domain.CommandViewLeads, deps.Audit), assignmentHandler.Suggest)
	leads.Get("/:id/assignments", RequireCommand(domain.CommandViewLeads, deps.Audit), assignmentHandler.History)

	// Assignments (protegido, solo manager por capacidades)
	assignments := protected.Group("/assignments")
	assignments.Post("/", RequireCommand(domain.CommandAssignLead, deps.Audit), assignmentHandler.Assign)
	assignments.Post("/bulk", RequireCommand(domain.CommandBulkAssign, deps.Audit), assignmentHandler.BulkAssign)

	// Owners (protegido; administración solo manager)
	owners := protected.Group("/owners")
	ownerHandler := NewOwnerHandler(deps.RegistryUC)
	owners.Get("/", RequireCommand(domain.CommandViewLeads, deps.Audit), ownerHandler.List)
	owners.Get("/:id/load", RequireCommand(domain.CommandViewLeads, deps.Audit), ownerHandler.GetLoad)
	owners.Post("/", RequireRole(domain.RoleManager), ownerHandler.Create)
	owners.Patch("/:id/availability", RequireRole(domain.RoleManager), ownerHandler.SetAvailability)

	// Duplicates (protegido)
	duplicates := protected.Group("/duplicates")
	duplicateHandler := NewDuplicateHandler(deps.DuplicateUC)
	duplicates.Post("/:id/resolve", RequireCommand(domain.CommandResolveDuplicate, deps.Audit), duplicateHandler.Resolve)

	// Analytics (protegido, solo manager por capacidades)
	analyticsGroup := protected.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	analyticsGroup.Get("/dashboard", RequireCommand(domain.CommandViewAnalytics, deps.Audit), analyticsHandler.Dashboard)
}
