package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/botspace/internal/monitoring"
	"github.com/charlesng35/botspace/pkg/logger"
)

// Health reports readiness, returning 503 unless every probe is up.
func Health(checker *monitoring.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := checker.Evaluate(requestContext(c))

		if !report.Success {
			logger.WithModule("health").Warn("readiness check failed",
				zap.String("status", string(report.Status)),
				zap.Any("checks", report.Checks),
			)
			c.JSON(http.StatusServiceUnavailable, report)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
