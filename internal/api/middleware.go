package api

import (
	"log"

	"sheetimport/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "importSession"

// LoadSession resolves the :id route parameter into a live import session
func LoadSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sessions.Get(c.Param("id"))
		if err != nil {
			log.Printf("[LoadSession] %v", err)
			abortWithError(c, err)
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
