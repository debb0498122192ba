// Package api exposes the order lifecycle over HTTP for the storefront and admin UIs.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/lifecycle"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/notify"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/nikolayk812/orderflow/internal/returns"
	"go.uber.org/zap"
)

type Deps struct {
	Engine   *lifecycle.Engine
	Returns  *returns.Workflow
	Inbox    *notify.Inbox
	Catalog  *catalog.Coordinator
	Products port.ProductRepository
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Handler struct {
	engine   *lifecycle.Engine
	returns  *returns.Workflow
	inbox    *notify.Inbox
	catalog  *catalog.Coordinator
	products port.ProductRepository
	logger   *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Engine == nil || deps.Returns == nil || deps.Inbox == nil || deps.Catalog == nil || deps.Products == nil {
		return nil, errors.New("api: engine, returns, inbox, catalog and products are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")

	h := &Handler{
		engine:   deps.Engine,
		returns:  deps.Returns,
		inbox:    deps.Inbox,
		catalog:  deps.Catalog,
		products: deps.Products,
		logger:   logger,
	}

	r := gin.New()
	r.Use(Recovery(logger), Metrics(deps.Metrics), Logging(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1", Actor())
	h.registerOrderRoutes(v1)
	h.registerReturnRoutes(v1)
	h.registerNotificationRoutes(v1)
	h.registerProductRoutes(v1)

	return r, nil
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns def when the parameter is absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
