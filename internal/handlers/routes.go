package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

// Routes holds everything needed to mount the API.
type Routes struct {
	Auth         *AuthHandler
	Organization *OrganizationHandler
	Event        *EventHandler
	Sponsor      *SponsorHandler
	Deliverable  *DeliverableHandler
	Reminder     *ReminderHandler

	Profiles     repository.ProfileRepository
	Deliverables *services.DeliverableService
	CronSecret   string
}

// Register mounts the health check and the /api routes on r.
func (rt Routes) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sponsor Deliverables API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rt.Auth.Signup)
			auth.POST("/login", rt.Auth.Login)
			auth.POST("/logout", rt.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), rt.Auth.GetCurrentProfile)
		}

		// Scheduler entry point
		api.POST("/reminders/send", middleware.RequireCronSecret(rt.CronSecret), rt.Reminder.SendReminders)

		// Organization routes that work without an organization
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", rt.Organization.CreateOrganization)
			orgs.POST("/join", rt.Organization.JoinOrganization)
		}

		member := api.Group("")
		member.Use(middleware.RequireAuth(), middleware.RequireOrganization(rt.Profiles))
		{
			current := member.Group("/organizations/current")
			{
				current.GET("", rt.Organization.GetOrganization)
				current.PUT("", middleware.RequireAdmin(), rt.Organization.UpdateOrganization)
				current.DELETE("", middleware.RequireAdmin(), rt.Organization.DeleteOrganization)
				current.POST("/regenerate-code", middleware.RequireAdmin(), rt.Organization.RegenerateInviteCode)
				current.PATCH("/members/:profile_id", middleware.RequireAdmin(), rt.Organization.UpdateMemberRole)
				current.DELETE("/members/:profile_id", middleware.RequireAdmin(), rt.Organization.RemoveMember)
			}

			member.GET("/events", rt.Event.ListEvents)
			member.POST("/events", rt.Event.CreateEvent)

			member.GET("/sponsors", rt.Sponsor.ListSponsors)
			member.POST("/sponsors", rt.Sponsor.CreateSponsor)
			member.GET("/sponsors/:id", rt.Sponsor.GetSponsor)

			deliverables := member.Group("/deliverables")
			access := middleware.RequireDeliverableAccess(rt.Deliverables)
			{
				deliverables.GET("", rt.Deliverable.ListDeliverables)
				deliverables.POST("", rt.Deliverable.CreateDeliverable)
				deliverables.POST("/generate", rt.Deliverable.GenerateDeliverables)
				deliverables.GET("/:id", access, rt.Deliverable.GetDeliverable)
				deliverables.PATCH("/:id", access, rt.Deliverable.UpdateDeliverable)
				deliverables.POST("/:id/assign", access, rt.Deliverable.AssignDeliverable)
				deliverables.DELETE("/:id", access, rt.Deliverable.DeleteDeliverable)
			}

			member.GET("/dashboard/risk", rt.Deliverable.GetRiskDashboard)
		}
	}
}
