package service

import (
	"path/filepath"
	"testing"

	"mytutor/internal/model"
	"mytutor/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserRepo(t *testing.T) *repository.UserRepository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "svc.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return repository.NewUserRepository(db)
}

func newAuthService(repo *repository.UserRepository) *AuthService {
	s := NewAuthService(repo)
	s.Cost = bcrypt.MinCost
	return s
}
