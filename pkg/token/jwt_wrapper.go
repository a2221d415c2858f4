package token

import "vendor_chat_portal/pkg/config"

// function variables so tests can swap in fakes
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper indirection point used by use case tests
func GenerateJWTWrapper(userID, name, role string) (string, error) {
	return GenerateJWTFunc(userID, name, role, config.EnvConfig.PortalService)
}

// ParseJWTWrapper indirection point used by use case tests
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
