package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/internal/ws"
	"go-backoffice-api/pkg/jwt"
)

// SessionIdleTimeout ends sessions whose heartbeat stopped.
const SessionIdleTimeout = 5 * time.Minute

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	wsHub    *ws.Hub
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		wsHub:    hub,
		now:      time.Now,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil || !user.CheckPassword(password) {
		return nil, errors.Unauthorizedf("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.Unauthorizedf("user account is inactive")
	}

	// a new token version signs out every other session of this user
	version := uuid.NewString()
	now := s.now()
	if err := s.userRepo.StartSession(user.ID, version, now); err != nil {
		return nil, errors.Annotate(err, "starting session")
	}
	user.TokenVersion = version
	user.LastSeenAt = &now

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.PrivilegeCodes(), version)
	if err != nil {
		return nil, errors.Annotate(err, "generating token")
	}
	logger.Infof("user %s logged in", user.Email)

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return lookupError(err, "user %s", email)
	}
	if !user.CheckPassword(oldPassword) {
		return errors.BadRequestf("current password is incorrect")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.Annotate(err, "hashing password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.Unauthorizedf("invalid or expired token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, errors.Unauthorizedf("user not found")
	}
	if !user.IsActive {
		return nil, errors.Unauthorizedf("user account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.Unauthorizedf("session expired (logged in on another device)")
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > SessionIdleTimeout {
		return nil, errors.Unauthorizedf("session expired due to inactivity")
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

// Heartbeat keeps the session alive and announces the user as online.
func (s *authService) Heartbeat(userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(userID, now); err != nil {
		return errors.Annotate(err, "recording heartbeat")
	}
	s.wsHub.Publish(ws.Event{
		"type":         "user_status_update",
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": now,
	})
	return nil
}
