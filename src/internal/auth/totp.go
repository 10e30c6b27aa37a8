package auth

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPService handles two-factor authentication
type TOTPService struct {
	issuer string
}

// NewTOTPService creates a new TOTP service
func NewTOTPService(issuer string) *TOTPService {
	return &TOTPService{issuer: issuer}
}

// TOTPSetup contains the setup information for TOTP
type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// GenerateTOTP generates a new TOTP secret for a user
func (t *TOTPService) GenerateTOTP(username string) (*TOTPSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: username,
		Period:      30,
		SecretSize:  32,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return &TOTPSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// ValidateTOTP validates a TOTP code
func (t *TOTPService) ValidateTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
