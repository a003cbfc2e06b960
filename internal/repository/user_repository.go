package repository

import (
	"errors"

	"mytutor/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	_, err := r.FindByUsername(username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// UpdateProfile stores the chosen grade and subject together with the
// assigned tutor.
func (r *UserRepository) UpdateProfile(id uint, grade, subject, tutorName string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"grade":      grade,
			"subject":    subject,
			"tutor_name": tutorName,
		}).Error
}
