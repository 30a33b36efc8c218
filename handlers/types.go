// SPDX-License-Identifier: GPL-3.0-only

package handlers

import "time"

type AdminLoginRequest struct {
	// The admin password for the property, or the legacy global one.
	Password string `json:"password"`
	// Property to bind the session to. Omitted means a legacy global
	// session; new clients should always send it.
	PropertyID *uint `json:"property_id"`
}

type AdminLoginResponse struct {
	SessionToken string `json:"session_token"`
	PropertyID   *uint  `json:"property_id"`
}

type CreatePropertyRequest struct {
	Slug                string  `json:"slug"`
	Name                string  `json:"name"`
	ContactPhone        *string `json:"contact_phone"`
	ContactsRequireAuth bool    `json:"contacts_require_auth"`
}

type PropertyResponse struct {
	ID                  uint    `json:"id"`
	Slug                string  `json:"slug"`
	URLHash             string  `json:"url_hash"`
	Name                string  `json:"name"`
	ContactPhone        *string `json:"contact_phone,omitempty"`
	ContactsRequireAuth bool    `json:"contacts_require_auth"`
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}

type IssueAccessTokenRequest struct {
	Label string `json:"label"`
	// RFC 3339; omitted means the token never expires.
	ExpiresAt *time.Time `json:"expires_at"`
}

type AccessTokenResponse struct {
	ID        uint       `json:"id"`
	Token     string     `json:"token,omitempty"`
	Label     string     `json:"label"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ToggleAccessTokenRequest struct {
	IsActive bool `json:"is_active"`
}

type CreateShortLinkRequest struct {
	Campaign      string  `json:"campaign"`
	AccessTokenID *uint   `json:"access_token_id"`
	Unit          *string `json:"unit"`
	Content       *string `json:"content"`
	Label         *string `json:"label"`
}

type ShortLinkResponse struct {
	ID       uint   `json:"id"`
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
}

type CreateResidentSessionRequest struct {
	// The access token lifted from the scanned QR destination URL.
	Auth string `json:"auth"`
}

type ResidentSessionResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type BoardResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	// ContactPhone is withheld when the property gates contact details
	// behind a resident session and none was presented.
	ContactPhone *string `json:"contact_phone,omitempty"`
}
