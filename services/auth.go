package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

var sessionKey []byte

// SetSessionSecret sets the key session tokens are hashed with. Changing it
// invalidates every stored session.
func SetSessionSecret(secret string) {
	sessionKey = []byte(secret)
}

// HashSessionToken is the form a token is stored and looked up in
func HashSessionToken(token string) string {
	mac := hmac.New(sha256.New, sessionKey)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateSession creates a new session for a teacher. The returned session
// is the only place the raw token appears.
func CreateSession(db *gorm.DB, teacherID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Token:     token,
		TokenHash: HashSessionToken(token),
		ExpiresAt: DefaultClock.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session with its teacher
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	if token == "" {
		return nil, fmt.Errorf("empty session token: %w", ErrUnauthorized)
	}
	err := db.Preload("Teacher").Where("token_hash = ?", HashSessionToken(token)).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpiredAt(DefaultClock.Now()) {
		db.Delete(&session)
		return nil, fmt.Errorf("session expired: %w", ErrUnauthorized)
	}

	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	result := db.Where("token_hash = ?", HashSessionToken(token)).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at <= ?", DefaultClock.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		zap.L().Info("cleaned up expired sessions", zap.Int64("count", result.RowsAffected))
	}
	return nil
}
