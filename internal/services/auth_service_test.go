package services

import (
	"testing"

	"github.com/coursehub/course-platform-api/internal/models"
	"github.com/coursehub/course-platform-api/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceEnv(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewAuthService(repository.NewUserRepository(db)), db
}

func TestAuthService_Signup(t *testing.T) {
	service, db := setupAuthServiceEnv(t)

	user, err := service.Signup(SignupInput{
		Username:  "  sally  ",
		Email:     "sally@example.com",
		FirstName: "Sally",
		LastName:  "Andorra",
		Pronouns:  "she / her / hers",
		Password:  "longenoughpassword",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "sally", user.Username)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenoughpassword")))
}

func TestAuthService_Signup_DuplicateUsername(t *testing.T) {
	service, _ := setupAuthServiceEnv(t)

	_, err := service.Signup(SignupInput{Username: "sally", Password: "longenoughpassword"})
	require.NoError(t, err)

	_, err = service.Signup(SignupInput{Username: "sally", Password: "longenoughpassword"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Signup_ShortPassword(t *testing.T) {
	service, _ := setupAuthServiceEnv(t)

	_, err := service.Signup(SignupInput{Username: "sally", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Login(t *testing.T) {
	service, _ := setupAuthServiceEnv(t)

	created, err := service.Signup(SignupInput{Username: "sally", Password: "longenoughpassword"})
	require.NoError(t, err)

	user, err := service.Login(LoginInput{Username: "sally", Password: "longenoughpassword"})
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = service.Login(LoginInput{Username: "sally", Password: "wrongpassword"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Username: "nobody", Password: "longenoughpassword"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	service, _ := setupAuthServiceEnv(t)

	_, err := service.GetUser(42)
	require.ErrorIs(t, err, ErrUserNotFound)
}
