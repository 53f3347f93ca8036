package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Products   *ProductHandler
	Categories *CategoryHandler
	Stock      *StockHandler
	Cart       *CartHandler
	Orders     *OrderHandler
	Preorders  *PreorderHandler
}

// NewRouter wires every handler. Catalog reads are public, everything else
// needs X-User-ID, and /admin additionally needs the admin role.
func NewRouter(h Handlers, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("")
	user := router.Group("", Identity(logger))
	admin := router.Group("/admin", Identity(logger), RequireAdmin(logger))

	h.Products.RegisterRoutes(public, admin)
	h.Categories.RegisterRoutes(public, admin)
	h.Stock.RegisterRoutes(admin)
	h.Cart.RegisterRoutes(user)
	h.Orders.RegisterRoutes(user, admin)
	h.Preorders.RegisterRoutes(user, admin)

	return router
}
