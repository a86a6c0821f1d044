package service

import (
	"modportal/config"
	"modportal/database"
	"modportal/database/model"
	"modportal/logger"
	"modportal/util/crypto"

	"github.com/xlzd/gotp"
)

// AuthService authenticates login requests against the user store.
type AuthService struct {
	users *UserService
}

func NewAuthService(users *UserService) *AuthService {
	return &AuthService{users: users}
}

// Login verifies the supplied credentials and returns the matching user.
// An unknown username and a wrong password both report
// ErrInvalidCredentials. When a TOTP secret is configured, admin logins
// additionally require a valid twoFactorCode; a missing or wrong code
// reports the same error.
func (s *AuthService) Login(username, password, twoFactorCode string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("login lookup failed:", err)
		return nil, err
	}

	if !crypto.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if user.IsAdmin() {
		if secret := config.GetTOTPSecret(); secret != "" {
			if gotp.NewDefaultTOTP(secret).Now() != twoFactorCode {
				return nil, ErrInvalidCredentials
			}
		}
	}

	return user, nil
}
