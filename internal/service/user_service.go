package service

import (
	"github.com/google/uuid"
	"github.com/juju/errors"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/pkg/validator"
)

type UserService interface {
	CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error)
	DeleteUser(userID uuid.UUID, actor Actor) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	RoleID      uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	RoleID      uint    `json:"role_id" validate:"required"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, errors.AlreadyExistsf("email %s", req.Email)
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, errors.NotValidf("role %d", req.RoleID)
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		// new users start with their role's privileges
		Privileges: role.Privileges,
	}
	user.Stamp(actor.ID, true)
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Annotate(err, "hashing password")
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.Annotate(err, "creating user")
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, lookupError(err, "user %s", userID)
	}
	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, errors.AlreadyExistsf("email %s", req.Email)
		}
	}
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, errors.NotValidf("role %d", req.RoleID)
	}

	roleChanged := user.RoleID == nil || *user.RoleID != role.ID
	user.Email = req.Email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.Annotate(err, "hashing password")
		}
	}
	// a role change resets custom privileges to the new role's defaults
	if roleChanged {
		user.Privileges = role.Privileges
	}
	user.Stamp(actor.ID, false)

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.Annotate(err, "updating user")
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, actor Actor) error {
	if userID.String() == actor.ID {
		return errors.BadRequestf("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(userID, actor.ID); err != nil {
		return lookupError(err, "user %s", userID)
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, lookupError(err, "user %s", userID)
	}
	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, errors.Annotate(err, "loading privileges")
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, errors.NotValidf("privilege list %v", privilegeCodes)
	}
	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, errors.Annotate(err, "updating privileges")
	}
	logger.Infof("%s changed privileges of user %s to %v", actor.ID, userID, privilegeCodes)
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "user %s", id)
	}
	response := user.ToResponse()
	return &response, nil
}
