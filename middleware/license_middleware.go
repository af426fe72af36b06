package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/filacost/lib/license"
	"github.com/gin-gonic/gin"
)

// LicenseChecker is satisfied by *license.Gate
type LicenseChecker interface {
	Check(force bool) (*license.Claims, error)
}

// Paths that stay reachable without a valid license
var licenseExemptPaths = map[string]bool{
	"/favicon.ico":         true,
	"/license":             true,
	"/license/upload":      true,
	"/license/fingerprint": true,
	"/health":              true,
}

func isLicenseExempt(path string) bool {
	return licenseExemptPaths[path] || strings.HasPrefix(path, "/static/")
}

// LicenseMiddleware sends every request to /license unless the license checks out.
// The verified claims are stored under "license" for handlers that want them.
func LicenseMiddleware(checker LicenseChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isLicenseExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		claims, err := checker.Check(false)
		if err != nil {
			slog.Warn("License check failed", "path", c.Request.URL.Path, "reason", err.Error())
			c.Redirect(http.StatusFound, "/license")
			c.Abort()
			return
		}

		c.Set("license", claims)
		c.Next()
	}
}
