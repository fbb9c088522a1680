// cmd/tokengen/main.go issues access tokens for operators and scripts.
//
//	go run ./cmd/tokengen -user 1 -email ops@fitstore.test -admin -ttl 8h
package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/pkg/auth"
)

func main() {
	userID := flag.Uint("user", 1, "user id recorded as performed_by on ledger entries")
	email := flag.String("email", "admin@fitstore.local", "email claim")
	admin := flag.Bool("admin", true, "grant admin access")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_ACCESS_EXPIRE")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *ttl > 0 {
		cfg.JWT.AccessTokenExpiry = *ttl
	}

	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(uint(*userID), *email, *admin)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to sign token")
	}

	fmt.Println(token)
}
