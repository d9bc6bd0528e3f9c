package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT claim set issued at login and accepted by the
// verifier. Role, groups and the global flags ride along for clients;
// the server treats the subject as authoritative and reloads the rest
// from the user record per request.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role        string   `json:"role"`
	GroupIDs    []string `json:"groups"`
	CanUpload   bool     `json:"can_upload"`
	CanDownload bool     `json:"can_download"`
}

// GetUserID returns the user ID from the subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}
