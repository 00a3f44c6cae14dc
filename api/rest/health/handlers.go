package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler godoc
// @Summary Health check
// @Description Reports that the API process is up and which store backend it runs on
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: ServiceName,
			Version: Version,
			Store:   backend,
		})
	}
}

// PingHandler godoc
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
