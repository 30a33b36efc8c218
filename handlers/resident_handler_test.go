// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blockboard-server/accesstokens"
	"blockboard-server/adminauth"
	"blockboard-server/crypto"
	"blockboard-server/db"
	"blockboard-server/models"
	"blockboard-server/residentauth"
	"blockboard-server/shortlinks"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBaseURL = "https://board.example.com"

func setupHandlers(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("ARGON2_MEMORY", "8192")
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.Conn = conn

	newCrypto := crypto.NewCrypto()
	adminSessions, err := adminauth.NewManager(conn, newCrypto)
	if err != nil {
		t.Fatalf("Failed to build admin session manager: %v", err)
	}
	Init(
		adminSessions,
		accesstokens.NewManager(conn),
		shortlinks.NewManager(conn, testBaseURL),
		residentauth.NewManager(conn),
		nil,
		newCrypto,
	)
	return conn
}

func seedProperty(t *testing.T, conn *gorm.DB, slug string, gated bool) *models.Property {
	t.Helper()
	phone := "+15551230000"
	property := models.Property{
		Slug:                slug,
		URLHash:             slug + "-hash",
		Name:                slug,
		ContactPhone:        &phone,
		ContactsRequireAuth: gated,
	}
	if err := conn.Create(&property).Error; err != nil {
		t.Fatalf("Failed to seed property: %v", err)
	}
	return &property
}

func TestCreateResidentSessionEnforcesTenant(t *testing.T) {
	conn := setupHandlers(t)
	p1 := seedProperty(t, conn, "elm-street", false)
	p2 := seedProperty(t, conn, "oak-court", false)

	token, err := AccessTokens.Issue(p1.ID, "lobby", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	e := echo.New()

	// A token scanned against its own property's board opens a session.
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"auth":"`+token.Token+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("hash")
	c.SetParamValues(p1.URLHash)
	if err := CreateResidentSessionHandler(c); err != nil {
		t.Fatalf("Expected a session, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	resp := ResidentSessionResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.SessionToken == "" {
		t.Error("Expected a resident session token")
	}

	// The same token against another building's board must not.
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"auth":"`+token.Token+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("hash")
	c.SetParamValues(p2.URLHash)
	err = CreateResidentSessionHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for a cross-tenant scan, got %v", err)
	}
}

func TestBoardGatesContactDetails(t *testing.T) {
	conn := setupHandlers(t)
	p1 := seedProperty(t, conn, "elm-street", true)

	token, err := AccessTokens.Issue(p1.ID, "lobby", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	session, err := ResidentSessions.Create(p1.ID, token.ID)
	if err != nil {
		t.Fatalf("Create session failed: %v", err)
	}

	e := echo.New()
	board := func(auth string) BoardResponse {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", "Bearer "+auth)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("hash")
		c.SetParamValues(p1.URLHash)
		if err := BoardHandler(c); err != nil {
			t.Fatalf("BoardHandler failed: %v", err)
		}
		resp := BoardResponse{}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return resp
	}

	if resp := board(""); resp.ContactPhone != nil {
		t.Error("Contact details must be withheld without a resident session")
	}
	if resp := board("bogus-session"); resp.ContactPhone != nil {
		t.Error("Contact details must be withheld for an invalid session")
	}
	if resp := board(session.Token); resp.ContactPhone == nil {
		t.Error("A valid resident session should unlock contact details")
	}
}

func TestRedirectHandler(t *testing.T) {
	conn := setupHandlers(t)
	p1 := seedProperty(t, conn, "elm-street", false)

	link, err := ShortLinks.Create(p1.ID, "lobby", shortlinks.CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	e := echo.New()
	redirect := func(code string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("code")
		c.SetParamValues(code)
		if err := RedirectHandler(c); err != nil {
			t.Fatalf("RedirectHandler failed: %v", err)
		}
		return rec.Code, rec.Header().Get(echo.HeaderLocation)
	}

	status, location := redirect(link.Code)
	if status != http.StatusFound {
		t.Fatalf("Expected 302, got %d", status)
	}
	if !strings.Contains(location, "/b/"+p1.URLHash) || !strings.Contains(location, "utm_campaign=lobby") {
		t.Errorf("Unexpected destination %q", location)
	}

	// Unknown codes land on the safe default, same as retired ones.
	status, location = redirect("zzzzzzzz")
	if status != http.StatusFound || location != testBaseURL {
		t.Errorf("Expected the base URL for an unknown code, got %d %q", status, location)
	}
}
