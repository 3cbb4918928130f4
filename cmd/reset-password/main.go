// Command reset-password sets a user's password directly in the database.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"

	"go-backoffice-api/internal/config"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/pkg/database"
)

func main() {
	cfg := config.Load()
	email := flag.String("email", cfg.AdminEmail, "account to reset")
	password := flag.String("password", cfg.AdminPassword, "new password")
	flag.Parse()

	if err := resetPassword(cfg, *email, *password); err != nil {
		fmt.Fprintln(os.Stderr, errors.ErrorStack(err))
		os.Exit(1)
	}
	fmt.Printf("Password for %s has been reset\n", *email)
}

func resetPassword(cfg *config.Config, email, password string) error {
	if len(password) < 6 {
		return errors.NotValidf("password shorter than 6 characters")
	}
	db, err := database.Open(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		return errors.Trace(err)
	}

	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(email)
	if err != nil {
		return errors.Annotatef(err, "finding %s", email)
	}
	if err := user.SetPassword(password); err != nil {
		return errors.Annotate(err, "hashing password")
	}
	return errors.Trace(users.UpdatePassword(user.ID, user.Password))
}
