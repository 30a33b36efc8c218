// SPDX-License-Identifier: GPL-3.0-only

package events

import "testing"

func TestDisabledPublisher(t *testing.T) {
	t.Setenv("AMQP_URL", "")

	p, err := NewPublisher()
	if err != nil {
		t.Fatalf("NewPublisher without a broker URL should not error: %v", err)
	}
	if p != nil {
		t.Fatal("Expected a nil publisher when AMQP_URL is unset")
	}

	// Every method on the disabled publisher is a no-op.
	p.Publish(TokenScan, 1, 2)
	p.Close()
}
