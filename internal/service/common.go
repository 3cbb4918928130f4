package service

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
)

var logger = loggo.GetLogger("backoffice.service")

// Actor is the authenticated user behind a mutation, used for audit columns
// and broadcast messages.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SystemActor stamps writes made by background jobs and seeders.
var SystemActor = Actor{ID: "system", Name: "System"}

// lookupError turns a gorm miss into a NotFound error naming the entity.
func lookupError(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFoundf(format, args...)
	}
	return errors.Annotatef(err, "loading "+format, args...)
}
