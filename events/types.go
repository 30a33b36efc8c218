// SPDX-License-Identifier: GPL-3.0-only

package events

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	AdminLogin     Kind = "admin.login"
	AdminLogout    Kind = "admin.logout"
	TokenScan      Kind = "token.scan"
	SessionCreated Kind = "session.created"
	LinkResolved   Kind = "link.resolved"
)

// Event is the fire-and-forget record handed to external analytics
// consumers. Nothing in this process reads events back.
type Event struct {
	EID        uuid.UUID `json:"eid"`
	Kind       Kind      `json:"kind"`
	PropertyID uint      `json:"property_id,omitempty"`
	SubjectID  uint      `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
