package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Capability is what an identity must hold to run an operation.
type Capability int

const (
	AnyIdentity Capability = iota
	Authenticated
	Staff
)

func (c Capability) String() string {
	switch c {
	case AnyIdentity:
		return "any"
	case Authenticated:
		return "user"
	default:
		return "staff"
	}
}

// Policy maps "METHOD /route/pattern" to the capability it requires.
type Policy map[string]Capability

func OperationKey(method, fullPath string) string { return method + " " + fullPath }

// Require looks up the matched route. Routes missing from the policy need
// staff.
func (p Policy) Require(method, fullPath string) Capability {
	if c, ok := p[OperationKey(method, fullPath)]; ok {
		return c
	}
	return Staff
}

func (c Capability) Allows(id Identity) bool {
	switch c {
	case AnyIdentity:
		return true
	case Authenticated:
		return id.Authenticated()
	default:
		return id.Authenticated() && id.Staff
	}
}

// Authorize enforces p; it must run after Authenticate.
func Authorize(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		need := p.Require(c.Request.Method, c.FullPath())
		id := MustCurrent(c)
		if need.Allows(id) {
			c.Next()
			return
		}
		if !id.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
	}
}
