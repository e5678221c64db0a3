package monitoring

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

// RegisterRoutes mounts the diagnostics endpoints on r:
//
//	GET /metrics        Prometheus exposition from gatherer
//	GET /debug/objects  runtime counters and observer snapshot as JSON
func RegisterRoutes(r gin.IRouter, m *Metrics, gatherer prometheus.Gatherer) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/debug/objects", func(c *gin.Context) {
		body := gin.H{"runtime": object.ReadStats()}
		if m != nil {
			body["observed"] = m.Snapshot()
		}
		c.JSON(http.StatusOK, body)
	})
}

// NewRouter returns a gin engine serving the diagnostics endpoints with
// request metrics.
func NewRouter(m *Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if m != nil {
		r.Use(Middleware(m))
	}
	RegisterRoutes(r, m, gatherer)
	return r
}
