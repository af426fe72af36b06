package v1

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/filacost/lib/license"
	"github.com/gin-gonic/gin"
)

// Largest license file accepted by upload
const maxLicenseSize = 64 << 10

// LicenseController serves the license page, fingerprint and upload
type LicenseController struct {
	gate        *license.Gate
	fingerprint func() string
}

// NewLicenseController creates a license controller for gate
func NewLicenseController(gate *license.Gate) *LicenseController {
	return &LicenseController{
		gate:        gate,
		fingerprint: license.Fingerprint,
	}
}

// RegisterRoutes registers the license routes
func (c *LicenseController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/license", c.Status)
	router.GET("/license/fingerprint", c.Fingerprint)
	router.POST("/license/upload", c.Upload)
}

// Status reports the current license with the data needed to request one
func (c *LicenseController) Status(ctx *gin.Context) {
	status := c.gate.Status()
	respondSuccess(ctx, http.StatusOK, gin.H{
		"license":      status,
		"fingerprint":  c.fingerprint(),
		"licensePath":  c.gate.Path(),
		"autoRedirect": status.Valid,
	})
}

// Fingerprint returns the machine fingerprint as plain text
func (c *LicenseController) Fingerprint(ctx *gin.Context) {
	ctx.String(http.StatusOK, c.fingerprint())
}

// Upload installs a license token from the multipart field "file".
// The token is verified before anything is written.
func (c *LicenseController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, "No file uploaded.")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxLicenseSize))
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Failed to read uploaded file.")
		return
	}
	if !utf8.Valid(content) {
		respondMessage(ctx, http.StatusBadRequest, "Uploaded file is not valid UTF-8 text.")
		return
	}

	claims, err := c.gate.Install(string(content))
	if err != nil {
		var denied *license.DeniedError
		if errors.As(err, &denied) {
			respondMessage(ctx, http.StatusBadRequest, denied.Reason)
			return
		}
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "License installed successfully.",
		"data":    claims,
	})
}
