// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"blockboard-server/adminauth"
	"blockboard-server/commons"
	"blockboard-server/handlers"
	"blockboard-server/middlewares"
	"blockboard-server/residentauth"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, adminSessions *adminauth.Manager, residentSessions *residentauth.Manager) {
	commons.Logger.Debug("Registering routes")

	adminAuth := middlewares.VerifyAdminMiddleware(adminSessions)
	residentAuth := middlewares.VerifyResidentMiddleware(residentSessions)

	api_v1 := e.Group("/v1")
	api_v1.POST("/admin/login", handlers.AdminLoginHandler)
	api_v1.POST("/admin/logout", handlers.AdminLogoutHandler, adminAuth)
	api_v1.POST("/properties", handlers.CreatePropertyHandler, adminAuth)
	api_v1.GET("/properties", handlers.ListPropertiesHandler, adminAuth)
	api_v1.PUT("/properties/:property_id/password", handlers.SetPropertyPasswordHandler, adminAuth)
	api_v1.POST("/properties/:property_id/access-tokens", handlers.IssueAccessTokenHandler, adminAuth)
	api_v1.GET("/properties/:property_id/access-tokens", handlers.ListAccessTokensHandler, adminAuth)
	api_v1.PATCH("/properties/:property_id/access-tokens/:token_id", handlers.ToggleAccessTokenHandler, adminAuth)
	api_v1.POST("/properties/:property_id/short-links", handlers.CreateShortLinkHandler, adminAuth)
	api_v1.DELETE("/properties/:property_id/short-links/:link_id", handlers.DeactivateShortLinkHandler, adminAuth)
	api_v1.GET("/access-tokens", handlers.ListAllAccessTokensHandler, adminAuth)

	// Public surface: short link hop, board, resident session flow.
	e.GET("/s/:code", handlers.RedirectHandler)
	e.GET("/b/:hash", handlers.BoardHandler)
	e.POST("/b/:hash/sessions", handlers.CreateResidentSessionHandler)
	e.DELETE("/resident/session", handlers.InvalidateResidentSessionHandler, residentAuth)

	commons.Logger.Info("Routes registered successfully")
}
