package service

import (
	"github.com/juju/errors"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
)

// SeedDefaults creates missing privileges and roles, gives roles without
// privileges their defaults and creates the bootstrap admin when no user
// has adminEmail. Existing rows are never changed.
func SeedDefaults(privRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository, adminEmail, adminPassword string) error {
	if err := privRepo.SeedDefaults(); err != nil {
		return errors.Annotate(err, "seeding privileges")
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return errors.Annotate(err, "seeding roles")
	}

	all, err := privRepo.FindAll()
	if err != nil {
		return errors.Trace(err)
	}
	for _, def := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(def.Code)
		if err != nil {
			return errors.Annotatef(err, "loading role %s", def.Code)
		}
		if len(role.Privileges) > 0 {
			continue
		}
		privileges := model.DefaultPrivilegesFor(role.Code, all)
		if err := roleRepo.ReplacePrivileges(role, privileges); err != nil {
			return errors.Annotatef(err, "assigning privileges to %s", role.Code)
		}
		logger.Infof("role %s assigned %d privileges", role.Code, len(privileges))
	}

	if _, err := userRepo.FindByEmail(adminEmail); err == nil {
		return nil
	}
	master, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		return errors.Trace(err)
	}
	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Master Administrator",
		RoleID:     &master.ID,
		IsActive:   true,
		Privileges: master.Privileges,
	}
	admin.Stamp(SystemActor.ID, true)
	if err := admin.SetPassword(adminPassword); err != nil {
		return errors.Annotate(err, "hashing admin password")
	}
	if err := userRepo.Create(admin); err != nil {
		return errors.Annotate(err, "creating admin user")
	}
	logger.Warningf("admin user %s created with the configured bootstrap password; change it after first login", adminEmail)
	return nil
}
