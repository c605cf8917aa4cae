package server

import (
	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/models"
)

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", s.healthCheck)

	authed := auth.RequireAuth(s.deps.Tokens)
	optional := auth.OptionalAuth(s.deps.Tokens)
	staff := []gin.HandlerFunc{authed, auth.RequireStaff()}
	public := []gin.HandlerFunc{optional}

	api.POST("/register/", s.register)
	api.POST("/token/", s.obtainToken)
	api.POST("/token/refresh/", s.refreshToken)

	users := api.Group("/users", authed)
	{
		users.GET("/", auth.RequireStaff(), s.listUsers)
		users.GET("/me/", s.me)
		users.PATCH("/update_profile/", s.updateProfile)
		users.GET("/:id/", s.getUser)
	}

	(&resource[models.Category]{s: s, search: []string{"name"}}).
		register(api, "/categories", public, staff)
	(&resource[models.Product]{
		s:      s,
		search: []string{"name", "description"},
		filters: []filter{
			textFilter("category", "category"),
			boolFilter("is_top_rated", "is_top_rated"),
		},
	}).register(api, "/products", public, staff)
	(&resource[models.Review]{
		s:     s,
		order: "id DESC",
		filters: []filter{
			intFilter("product", "product_id"),
			textFilter("product_id_str", "product_id_str"),
		},
	}).register(api, "/reviews", public, staff)
	(&resource[models.Event]{s: s, search: []string{"title", "location"}}).
		register(api, "/events", public, staff)
	(&resource[models.BlogPost]{
		s:       s,
		search:  []string{"title", "excerpt"},
		filters: []filter{textFilter("post_type", "post_type")},
	}).register(api, "/blog-posts", public, staff)
	(&resource[models.Story]{
		s:       s,
		filters: []filter{textFilter("product_id", "product_id")},
	}).register(api, "/stories", public, staff)
	(&resource[models.HeroSlide]{
		s:       s,
		filters: []filter{boolFilter("is_active", "is_active")},
	}).register(api, "/hero-slides", public, staff)
	(&resource[models.VisitorForm]{
		s:       s,
		order:   "created_at DESC, id DESC",
		preload: []string{"Submissions"},
		filters: []filter{textFilter("status", "status")},
	}).register(api, "/visitor-forms", public, staff)

	submissions := &resource[models.VisitorSubmission]{
		s:       s,
		order:   "submitted_at DESC, id DESC",
		filters: []filter{intFilter("form", "form_id")},
	}
	api.POST("/visitor-submissions/", s.submitVisitor)
	api.GET("/visitor-submissions/", chain(staff, submissions.list)...)
	api.GET("/visitor-submissions/:id/", chain(staff, submissions.get)...)
	api.DELETE("/visitor-submissions/:id/", chain(staff, submissions.remove)...)

	orders := api.Group("/orders", authed)
	{
		orders.GET("/", s.listOrders)
		orders.POST("/initiate/", s.initiateOrder)
		orders.POST("/verify/", s.verifyOrder)
		orders.GET("/:id/", s.getOrder)
		orders.PATCH("/:id/", auth.RequireStaff(), s.updateOrderStatus)
	}

	reset := api.Group("/password-reset")
	{
		reset.POST("/request/", s.limiter.Middleware(), s.requestReset)
		reset.POST("/verify/", s.verifyReset)
		reset.POST("/confirm/", s.confirmReset)
	}
}
