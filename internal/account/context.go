package account

import (
	"github.com/gin-gonic/gin"
)

// ContextSubjectKey is the key under which the verified token subject (the
// acting account id) is stored in the Gin context.
const ContextSubjectKey = "subject"

// SubjectFromContext returns the acting account id placed by the bearer
// middleware.
func SubjectFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(ContextSubjectKey)
	if !exists {
		return 0, false
	}
	id, ok := raw.(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
