package handlers

import (
	"todo_api/internal/logger"
	"todo_api/internal/metrics"
	"todo_api/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options toggles optional surfaces of the router.
type Options struct {
	Metrics *metrics.Metrics
	Swagger bool
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	swagger  bool
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{
		services: services,
		log:      logger.OrNop(log),
		metrics:  opts.Metrics,
		swagger:  opts.Swagger,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	if h.swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	h.registerUserRoutes(router)
	h.registerTodoRoutes(router)

	return router
}

func (h *Handler) registerUserRoutes(r *gin.Engine) {
	users := r.Group("/users")
	{
		users.POST("", h.register)
		users.POST("/login", h.login)
	}

	me := r.Group("/users/me", h.authMiddleware)
	{
		me.GET("", h.me)
		me.DELETE("", h.deleteAccount)
		me.DELETE("/token", h.logout)
		me.GET("/sessions", h.sessions)
		me.GET("/events", h.getEvents)
	}
}

func (h *Handler) registerTodoRoutes(r *gin.Engine) {
	// Browsers cannot set headers on a websocket handshake, so the feed also
	// accepts ?token=.
	r.GET("/todos/ws", h.feedAuthMiddleware, h.todoFeed)

	todos := r.Group("/todos", h.authMiddleware)
	{
		todos.POST("", h.createTodo)
		todos.GET("", h.listTodos)
		todos.GET("/:id", h.getTodo)
		todos.DELETE("/:id", h.deleteTodo)
		// Body example: {"text":"walk the dog","completed":true}
		todos.PATCH("/:id", h.updateTodo)
	}
}
