package service

import (
	"modportal/database"
	"modportal/database/model"
	"modportal/util/crypto"

	"gorm.io/gorm"
)

// UserService is the repository over the users table. The database
// handle is injected so tests can run against their own store.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ModeratorForm carries the fields accepted when an admin creates a
// moderator account. Password is plaintext and hashed before persisting.
type ModeratorForm struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FullName     string `json:"fullName" binding:"required"`
	BadgeNumber  string `json:"badgeNumber" binding:"required"`
	ProfileImage string `json:"profileImage"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	JoinDate     string `json:"joinDate"`
	ContactInfo  string `json:"contactInfo"`
}

// AdminForm carries the fields accepted for admin registration.
type AdminForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
}

// ModeratorPatch is an explicit partial update: a nil field keeps the
// stored value, a non-nil field overwrites it (an empty string is a
// real value, not "unset"). Credentials are replaced through
// UpdateModeratorCredentials instead.
type ModeratorPatch struct {
	FullName     *string `json:"fullName"`
	BadgeNumber  *string `json:"badgeNumber"`
	ProfileImage *string `json:"profileImage"`
	Designation  *string `json:"designation"`
	Department   *string `json:"department"`
	JoinDate     *string `json:"joinDate"`
	ContactInfo  *string `json:"contactInfo"`
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByBadgeNumber(badgeNumber string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("badge_number = ?", badgeNumber).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListModerators() ([]model.User, error) {
	var users []model.User
	err := s.db.Model(model.User{}).
		Where("role = ?", model.RoleModerator).
		Order("id ASC").
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) CountModerators() (int64, error) {
	var count int64
	err := s.db.Model(model.User{}).
		Where("role = ?", model.RoleModerator).
		Count(&count).
		Error
	return count, err
}

// CreateModerator persists a new moderator. The role is forced to
// moderator regardless of anything the caller supplied; duplicate
// username or badge number reports ErrConflict and leaves the store
// unchanged.
func (s *UserService) CreateModerator(form *ModeratorForm) (*model.User, error) {
	hashedPassword, err := crypto.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     form.Username,
		Password:     hashedPassword,
		FullName:     form.FullName,
		Role:         model.RoleModerator,
		BadgeNumber:  form.BadgeNumber,
		ProfileImage: form.ProfileImage,
		Designation:  form.Designation,
		Department:   form.Department,
		JoinDate:     form.JoinDate,
		ContactInfo:  form.ContactInfo,
	}
	if err := s.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// CreateAdmin persists a new admin. The role is forced to admin and the
// badge number to the fixed admin sentinel, ignoring caller input.
func (s *UserService) CreateAdmin(form *AdminForm) (*model.User, error) {
	hashedPassword, err := crypto.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    form.Username,
		Password:    hashedPassword,
		FullName:    form.FullName,
		Role:        model.RoleAdmin,
		BadgeNumber: model.AdminBadgeNumber,
	}
	if err := s.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// getModerator loads the row and verifies it still holds the moderator
// role. Every mutation re-runs this inside its transaction, so an admin
// row can never be edited or deleted through moderator management.
func getModerator(tx *gorm.DB, id int) (*model.User, error) {
	user := &model.User{}
	err := tx.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if user.Role != model.RoleModerator {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateModerator applies a partial patch to a moderator row and
// returns the updated row.
func (s *UserService) UpdateModerator(id int, patch *ModeratorPatch) (*model.User, error) {
	updated := &model.User{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := getModerator(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.FullName != nil {
			updates["full_name"] = *patch.FullName
		}
		if patch.BadgeNumber != nil {
			updates["badge_number"] = *patch.BadgeNumber
		}
		if patch.ProfileImage != nil {
			updates["profile_image"] = *patch.ProfileImage
		}
		if patch.Designation != nil {
			updates["designation"] = *patch.Designation
		}
		if patch.Department != nil {
			updates["department"] = *patch.Department
		}
		if patch.JoinDate != nil {
			updates["join_date"] = *patch.JoinDate
		}
		if patch.ContactInfo != nil {
			updates["contact_info"] = *patch.ContactInfo
		}

		if len(updates) > 0 {
			err = tx.Model(model.User{}).
				Where("id = ?", id).
				Updates(updates).
				Error
			if database.IsUniqueViolation(err) {
				return ErrConflict
			} else if err != nil {
				return err
			}
		}

		return tx.Model(model.User{}).
			Where("id = ?", user.Id).
			First(updated).
			Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateModeratorCredentials replaces a moderator's username and
// password in one statement.
func (s *UserService) UpdateModeratorCredentials(id int, username, password string) (*model.User, error) {
	hashedPassword, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	updated := &model.User{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		user, err := getModerator(tx, id)
		if err != nil {
			return err
		}

		err = tx.Model(model.User{}).
			Where("id = ?", user.Id).
			Updates(map[string]any{"username": username, "password": hashedPassword}).
			Error
		if database.IsUniqueViolation(err) {
			return ErrConflict
		} else if err != nil {
			return err
		}

		return tx.Model(model.User{}).
			Where("id = ?", user.Id).
			First(updated).
			Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteModerator physically removes a moderator row.
func (s *UserService) DeleteModerator(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := getModerator(tx, id)
		if err != nil {
			return err
		}
		return tx.Delete(&model.User{}, user.Id).Error
	})
}
