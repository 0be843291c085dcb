package config

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// SlowRequestThreshold marks requests worth a second log line.
const SlowRequestThreshold = 200 * time.Millisecond

// LogAllRequests enables the per-request timing line. When false only slow
// requests are logged.
var LogAllRequests = true

func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}

		latency := time.Since(start)
		if LogAllRequests {
			log.Printf("[PERF] %s %s | status=%d | %v",
				c.Request.Method, c.FullPath(), c.Writer.Status(), latency)
		}
		if latency > SlowRequestThreshold {
			log.Printf("[PERF] slow request: %s %s took %v (threshold %v)",
				c.Request.Method, c.Request.URL.Path, latency, SlowRequestThreshold)
		}
	}
}
