// Command preflight checks the environment before a deploy: storage driver,
// API keys, and notification sinks.
package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	driver := strings.TrimSpace(os.Getenv("DATABASE_DRIVER"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	slack := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))
	smtpHost := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	recipient := strings.TrimSpace(os.Getenv("ALERT_RECIPIENT"))

	switch driver {
	case "postgres":
		if db == "" {
			fail("DATABASE_DRIVER=postgres but DATABASE_URL is empty")
		}
		if !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://") {
			fail("DATABASE_URL does not look like a postgres DSN")
		}
		ok("postgres DSN present")
	case "sqlite":
		ok("sqlite driver selected")
	case "", "memory":
		warn("memory store selected; data is lost on restart")
	default:
		fail("unknown DATABASE_DRIVER: " + driver)
	}

	if admin == "" {
		warn("ADMIN_API_KEYS empty; anyone can mutate the roster")
	} else {
		ok("admin API keys configured")
	}

	if slack == "" && smtpHost == "" {
		warn("no SLACK_WEBHOOK or SMTP_HOST; alerts will not be delivered")
	}
	if smtpHost != "" && recipient == "" {
		fail("SMTP_HOST set but ALERT_RECIPIENT is empty")
	}
	if slack != "" {
		ok("slack webhook configured")
	}
	if smtpHost != "" {
		ok("smtp relay configured")
	}

	fmt.Println("preflight passed")
}
