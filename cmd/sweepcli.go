// SPDX-License-Identifier: GPL-3.0-only

// sweepcli deletes expired resident sessions on an interval. The
// manager only exposes the sweep; this is the scheduler that drives
// it, deployed as a sidecar or cron-style process.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockboard-server/commons"
	"blockboard-server/db"
	"blockboard-server/residentauth"
)

func main() {
	interval := flag.Duration("interval", time.Hour, "how often to sweep expired resident sessions")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	commons.LoadEnvFile()
	db.InitDB()
	sessions := residentauth.NewManager(db.Conn)

	sweep := func() {
		n, err := sessions.SweepExpired()
		if err != nil {
			commons.Logger.Errorf("Sweep failed: %v", err)
			return
		}
		commons.Logger.Infof("Swept %d expired resident sessions", n)
	}

	sweep()
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Sweeping expired resident sessions every %s\n", *interval)
	for {
		select {
		case <-ticker.C:
			sweep()
		case sig := <-sigChan:
			commons.Logger.Infof("Received %s, shutting down", sig)
			return
		}
	}
}
