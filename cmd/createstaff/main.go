// cmd/createstaff/main.go
//
// Creates a staff account, or promotes an existing user to staff.
//
//	go run ./cmd/createstaff -username admin -email admin@example.com -password '...'
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/platform/di"
)

func main() {
	username := flag.String("username", "", "staff username (required)")
	email := flag.String("email", "", "email; ignored when promoting an existing user")
	password := flag.String("password", "", "password; falls back to $STAFF_PASSWORD")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		flag.Usage()
		os.Exit(2)
	}
	pw := *password
	if pw == "" {
		pw = os.Getenv("STAFF_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("[createstaff] %v", err)
	}
	cont, err := di.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("[createstaff] %v", err)
	}
	defer cont.Close(ctx)

	u, err := cont.UserUC.CreateStaff(ctx, *username, *email, pw)
	if err != nil {
		cont.Close(ctx)
		log.Fatalf("[createstaff] %v", err)
	}
	log.Printf("[createstaff] staff user ready id=%s username=%s", u.ID, u.Username)
}
