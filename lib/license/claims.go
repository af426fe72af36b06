package license

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a license token
type Claims struct {
	LicenseID uuid.UUID              `json:"lic"`
	ProductID string                 `json:"pid"`
	Version   string                 `json:"ver"`
	Plan      string                 `json:"plan"`
	Features  map[string]interface{} `json:"feats"`
	HW        string                 `json:"hw,omitempty"` // optional hardware binding
	Nonce     uuid.UUID              `json:"nonce"`
	jwt.RegisteredClaims
}
