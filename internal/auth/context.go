package auth

import "github.com/gin-gonic/gin"

// Tenant and user identity arrive as headers set by the gateway. They are
// resolved once at the handler boundary and passed down as explicit
// parameters; nothing below the handlers reads ambient identity.

const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

func GetTenantID(c *gin.Context) string {
	return c.GetHeader(HeaderTenantID)
}

func GetUserID(c *gin.Context) string {
	return c.GetHeader(HeaderUserID)
}
