// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"blockboard-server/accesstokens"
	"blockboard-server/adminauth"
	"blockboard-server/crypto"
	"blockboard-server/events"
	"blockboard-server/residentauth"
	"blockboard-server/shortlinks"
)

var (
	AdminSessions    *adminauth.Manager
	AccessTokens     *accesstokens.Manager
	ShortLinks       *shortlinks.Manager
	ResidentSessions *residentauth.Manager
	Events           *events.Publisher
	Crypto           *crypto.Crypto
)

// Init wires the handler package to its managers. Called once from
// main before routes are registered.
func Init(
	adminSessions *adminauth.Manager,
	accessTokens *accesstokens.Manager,
	shortLinks *shortlinks.Manager,
	residentSessions *residentauth.Manager,
	publisher *events.Publisher,
	c *crypto.Crypto,
) {
	AdminSessions = adminSessions
	AccessTokens = accessTokens
	ShortLinks = shortLinks
	ResidentSessions = residentSessions
	Events = publisher
	Crypto = c
}
