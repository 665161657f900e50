package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/identity-vault/internal/api/handlers"
	"github.com/your-org/identity-vault/internal/api/ws"
	"github.com/your-org/identity-vault/internal/auth"
)

type RouterConfig struct {
	APIKey     string
	Hub        *ws.Hub
	Labels     handlers.LabelsInvoker
	Access     handlers.AccessInvoker
	Compare    handlers.CompareInvoker
	Collection handlers.CollectionInvoker
	Checks     map[string]handlers.Check
	// InvokeTimeout bounds each comparison like a Lambda deadline would.
	InvokeTimeout time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Checks)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	if cfg.Hub != nil {
		v1.GET("/ws", cfg.Hub.HandleWS)
	}

	// Upload notifications
	uploadH := handlers.NewUploadHandler(cfg.Labels, cfg.Access)
	v1.POST("/uploads/labels", uploadH.Labels)
	v1.POST("/uploads/access", uploadH.Access)

	faceH := handlers.NewFaceHandler(cfg.Compare, cfg.InvokeTimeout)
	v1.POST("/faces/compare", faceH.Compare)

	colH := handlers.NewCollectionHandler(cfg.Collection)
	v1.POST("/collections/actions", colH.Action)

	return r
}
