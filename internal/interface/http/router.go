package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/view"
	"github.com/yanqian/skycast/internal/infra/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, registry *view.Registry, tokens *session.TokenIssuer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	identify := identifyClient(tokens, cfg.HTTP.CookieSecure)
	limit := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)
	attach := attachClient(registry)

	withClient := router.Group("/", identify, limit, attach)
	{
		withClient.GET("/", handler.Home)
		withClient.POST("/search", handler.Search)
		withClient.POST("/location", handler.Location)
		withClient.GET("/profile", handler.Profile)
		withClient.GET("/auth/google/login", handler.SignIn)
		withClient.GET("/auth/google/callback", handler.SignInCallback)
		withClient.POST("/auth/logout", handler.SignOut)
	}

	api := router.Group("/api/v1", corsMiddleware(cfg.HTTP.CORS.AllowedOrigins))
	api.OPTIONS("/*path", func(c *gin.Context) {})
	{
		withAPIClient := api.Group("", identify, limit, attach)
		withAPIClient.GET("/session", handler.Session)
		withAPIClient.GET("/screen", handler.Screen)
		withAPIClient.GET("/weather", requireSignedIn(), handler.Weather)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
