package middleware

import (
	"net/http"
	"time"

	"admoa/internal/domain"
	"admoa/internal/repository"

	"github.com/gin-gonic/gin"
)

// ContractActive ensures the client's contract window covers now before an
// order can be submitted. Admins pass through. Use after AuthRequired.
func ContractActive(clientRepo *repository.ClientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) == domain.RoleAdmin {
			c.Next()
			return
		}
		clientID := GetClientID(c)
		if clientID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		client, err := clientRepo.GetByID(clientID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !client.ContractActive(time.Now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "contract inactive or expired"})
			return
		}
		c.Next()
	}
}
