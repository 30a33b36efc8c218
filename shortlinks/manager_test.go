// SPDX-License-Identifier: GPL-3.0-only

package shortlinks

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"blockboard-server/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBaseURL = "https://board.example.com"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return conn
}

func seedProperty(t *testing.T, conn *gorm.DB, slug string) *models.Property {
	t.Helper()
	property := models.Property{Slug: slug, URLHash: slug + "-hash", Name: slug}
	if err := conn.Create(&property).Error; err != nil {
		t.Fatalf("Failed to seed property: %v", err)
	}
	return &property
}

func seedAccessToken(t *testing.T, conn *gorm.DB, propertyID uint, active bool) *models.AccessToken {
	t.Helper()
	token := models.AccessToken{
		Token:      fmt.Sprintf("token-%d-%v", propertyID, active),
		PropertyID: propertyID,
		Label:      "seeded",
		IsActive:   active,
	}
	if err := conn.Create(&token).Error; err != nil {
		t.Fatalf("Failed to seed access token: %v", err)
	}
	return &token
}

func TestCreateAndResolve(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	unit := "4A"
	link, err := m.Create(p1.ID, "unit_card", CreateOptions{Unit: &unit})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(link.Code) != 8 {
		t.Errorf("Expected an 8-character code, got %q", link.Code)
	}
	if got := m.ShortURL(link); got != testBaseURL+"/s/"+link.Code {
		t.Errorf("Unexpected short URL %q", got)
	}

	resolved := m.Resolve(link.Code)
	if resolved == nil {
		t.Fatal("A fresh link should resolve")
	}
	if resolved.PropertyID != p1.ID || resolved.Campaign != "unit_card" {
		t.Errorf("Unexpected resolved link %+v", resolved)
	}
}

func TestMissingCampaignRejected(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	if _, err := m.Create(p1.ID, "", CreateOptions{}); err == nil {
		t.Error("Create without a campaign should fail")
	}
}

func TestDeactivatedLooksLikeUnknown(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	link, err := m.Create(p1.ID, "lobby", CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Deactivate(link.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if err := m.Deactivate(link.ID); err != nil {
		t.Errorf("Deactivate should be idempotent: %v", err)
	}

	// A retired code and a never-issued code must be indistinguishable
	// to a prober.
	if got := m.Resolve(link.Code); got != nil {
		t.Errorf("A deactivated link must resolve to nil, got %+v", got)
	}
	if got := m.Resolve("aaaaaaaa"); got != nil {
		t.Errorf("An unknown code must resolve to nil, got %+v", got)
	}
}

func TestRedirectURLWithoutToken(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	unit := "4A"
	link, err := m.Create(p1.ID, "unit_card", CreateOptions{Unit: &unit})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dest := m.RedirectURL(link)
	if !strings.HasPrefix(dest, testBaseURL+"/b/"+p1.URLHash+"?") {
		t.Errorf("Destination should address the property board, got %q", dest)
	}
	for _, want := range []string{"utm_source=qr", "utm_medium=print", "utm_campaign=unit_card", "unit=4A"} {
		if !strings.Contains(dest, want) {
			t.Errorf("Destination %q is missing %q", dest, want)
		}
	}
	if strings.Contains(dest, "auth=") {
		t.Errorf("A link with no access token must not carry auth, got %q", dest)
	}
}

func TestRedirectURLDropsRetiredToken(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")
	token := seedAccessToken(t, conn, p1.ID, true)

	link, err := m.Create(p1.ID, "move_in", CreateOptions{AccessTokenID: &token.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dest := m.RedirectURL(link)
	if !strings.Contains(dest, "auth="+token.Token) {
		t.Errorf("An active token should ride along as auth, got %q", dest)
	}

	// Retire the token only. The link still resolves; the credential
	// silently drops out of the destination.
	err = conn.Model(&models.AccessToken{}).
		Where("id = ?", token.ID).
		Update("is_active", false).Error
	if err != nil {
		t.Fatalf("Failed to deactivate token: %v", err)
	}

	if m.Resolve(link.Code) == nil {
		t.Fatal("The short link should still resolve after its token retires")
	}
	dest = m.RedirectURL(link)
	if strings.Contains(dest, "auth=") {
		t.Errorf("A retired token must not appear in the destination, got %q", dest)
	}
	if !strings.Contains(dest, "utm_campaign=move_in") {
		t.Errorf("UTM bookkeeping should survive the token, got %q", dest)
	}
}

func TestCreateRejectsForeignAccessToken(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")
	p2 := seedProperty(t, conn, "oak-court")
	foreign := seedAccessToken(t, conn, p2.ID, true)

	// An admin of one building must not be able to mint signage that
	// hands out another building's credential.
	_, err := m.Create(p1.ID, "move_in", CreateOptions{AccessTokenID: &foreign.ID})
	if !errors.Is(err, ErrAccessTokenNotFound) {
		t.Errorf("Expected ErrAccessTokenNotFound for a foreign token, got %v", err)
	}

	missing := uint(9999)
	_, err = m.Create(p1.ID, "move_in", CreateOptions{AccessTokenID: &missing})
	if !errors.Is(err, ErrAccessTokenNotFound) {
		t.Errorf("Expected ErrAccessTokenNotFound for a missing token, got %v", err)
	}

	own := seedAccessToken(t, conn, p1.ID, true)
	if _, err := m.Create(p1.ID, "move_in", CreateOptions{AccessTokenID: &own.ID}); err != nil {
		t.Errorf("A link referencing the property's own token should succeed: %v", err)
	}
}

func TestRedirectURLDropsForeignToken(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")
	p2 := seedProperty(t, conn, "oak-court")
	foreign := seedAccessToken(t, conn, p2.ID, true)

	// Insert the row directly, bypassing Create's ownership check: a
	// link re-pointed at a foreign token by any path must still never
	// leak that token through the redirect.
	link := models.ShortLink{
		Code:          "crosscut",
		PropertyID:    p1.ID,
		AccessTokenID: &foreign.ID,
		Campaign:      "lobby",
		IsActive:      true,
	}
	if err := conn.Create(&link).Error; err != nil {
		t.Fatalf("Failed to insert link: %v", err)
	}

	dest := m.RedirectURL(&link)
	if strings.Contains(dest, "auth=") {
		t.Errorf("A foreign token must not appear in the destination, got %q", dest)
	}
	if !strings.Contains(dest, "utm_campaign=lobby") {
		t.Errorf("UTM bookkeeping should survive the dropped token, got %q", dest)
	}
}

func TestRedirectURLDropsExpiredToken(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")
	token := seedAccessToken(t, conn, p1.ID, true)

	past := time.Now().Add(-time.Minute)
	err := conn.Model(&models.AccessToken{}).
		Where("id = ?", token.ID).
		Update("expires_at", past).Error
	if err != nil {
		t.Fatalf("Failed to expire token: %v", err)
	}

	link, err := m.Create(p1.ID, "move_in", CreateOptions{AccessTokenID: &token.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if dest := m.RedirectURL(link); strings.Contains(dest, "auth=") {
		t.Errorf("An expired token must not appear in the destination, got %q", dest)
	}
}

func TestRedirectURLFailsClosedOnMissingProperty(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	link, err := m.Create(p1.ID, "lobby", CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := conn.Unscoped().Delete(&models.Property{}, p1.ID).Error; err != nil {
		t.Fatalf("Failed to delete property: %v", err)
	}

	if dest := m.RedirectURL(link); dest != testBaseURL {
		t.Errorf("A missing property must redirect to the base URL, got %q", dest)
	}
}

func TestCodeCollisionRetries(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	codes := []string{"dupedupe", "dupedupe", "freshone"}
	m.generateCode = func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}

	first, err := m.Create(p1.ID, "lobby", CreateOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Code != "dupedupe" {
		t.Fatalf("Expected the first code, got %q", first.Code)
	}

	second, err := m.Create(p1.ID, "lobby", CreateOptions{})
	if err != nil {
		t.Fatalf("Create should survive a collision: %v", err)
	}
	if second.Code != "freshone" {
		t.Errorf("Expected the regenerated code, got %q", second.Code)
	}
}

func TestCodeCollisionExhaustionIsFatal(t *testing.T) {
	conn := openTestDB(t)
	m := NewManager(conn, testBaseURL)
	p1 := seedProperty(t, conn, "elm-street")

	m.generateCode = func() (string, error) { return "dupedupe", nil }

	if _, err := m.Create(p1.ID, "lobby", CreateOptions{}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if _, err := m.Create(p1.ID, "lobby", CreateOptions{}); err == nil {
		t.Error("Exhausting the collision retries must propagate as an error")
	}
}
