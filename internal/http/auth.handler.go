package http

import (
	"errors"
	"net/http"

	"github.com/equipstat/equipstat/internal/apierror"
	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/entity"
	"github.com/equipstat/equipstat/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Register(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request registerRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if request.Username == "" || request.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		user, err := createUser(ctx.DB, request.Username, request.Password, request.Email)
		if err != nil {
			if apierror.IsAuth(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to create user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		tokenString, err := utils.GenerateJWT(user.ID.String())
		if err != nil {
			ctx.Logger.Error("Failed to generate JWT token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate JWT token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":    tokenString,
			"user_id":  user.ID,
			"username": user.Username,
			"message":  "User created successfully",
		})
	}
}

func Login(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request loginRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if request.Username == "" || request.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		user, err := authenticateUser(ctx.DB, request.Username, request.Password)
		if err != nil {
			if apierror.IsAuth(err) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to authenticate user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate user"})
			return
		}

		tokenString, err := utils.GenerateJWT(user.ID.String())
		if err != nil {
			ctx.Logger.Error("Failed to generate JWT token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate JWT token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":    tokenString,
			"user_id":  user.ID,
			"username": user.Username,
		})
	}
}

// createUser registers a new account. A taken username yields an auth error;
// anything else is a store failure.
func createUser(db *gorm.DB, username, password, email string) (*entity.User, error) {
	var existing entity.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, apierror.NewAuthError("Username already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// authenticateUser verifies a username/password pair. Unknown usernames and
// wrong passwords produce the same auth error, so responses do not reveal
// which one was wrong.
func authenticateUser(db *gorm.DB, username, password string) (*entity.User, error) {
	var user entity.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewAuthError("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierror.NewAuthError("Invalid credentials")
	}
	return &user, nil
}
