package middleware

import (
	"strconv"
	"time"

	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics 记录请求数与耗时，路由取注册时的模板，未匹配的请求归为 unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
