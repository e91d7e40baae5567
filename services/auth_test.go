package services

import (
	"errors"
	"lessonbook_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	password := "SecretPass123!"

	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, VerifyPassword(hash, password))
	assert.False(t, VerifyPassword(hash, "WrongPass"))
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestTeacher(t, db, "alice", nil)

	// 1. Create Session
	session, err := CreateSession(db, teacher.ID, "127.0.0.1", "TestAgent")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, teacher.ID, session.TeacherID)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), session.ExpiresAt, 10*time.Second)

	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	assert.Equal(t, HashSessionToken(session.Token), stored.TokenHash)
	assert.NotEqual(t, session.Token, stored.TokenHash)
	assert.Empty(t, stored.Token)

	// 2. Validate Session (Valid)
	validSession, err := ValidateSession(db, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, validSession.ID)
	assert.Equal(t, "alice", validSession.Teacher.Subdomain)

	// 3. Validate Session (Invalid Token)
	invalidSession, err := ValidateSession(db, "invalid-token")
	assert.Error(t, err)
	assert.Nil(t, invalidSession)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	// 4. Delete Session
	assert.NoError(t, DeleteSession(db, session.Token))

	// 5. Validate Deleted Session
	deletedSession, err := ValidateSession(db, session.Token)
	assert.Error(t, err)
	assert.Nil(t, deletedSession)
}

func TestSessionExpiry(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestTeacher(t, db, "bob", nil)

	token := "expired-token"
	db.Create(&models.Session{
		ID:        "sess-expired",
		TeacherID: teacher.ID,
		TokenHash: HashSessionToken(token),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	})

	sess, err := ValidateSession(db, token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
	assert.Nil(t, sess)

	var count int64
	db.Model(&models.Session{}).Where("token_hash = ?", HashSessionToken(token)).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestTeacher(t, db, "carol", nil)

	db.Create(&models.Session{ID: "sess-valid", TeacherID: teacher.ID, TokenHash: HashSessionToken("valid"), ExpiresAt: time.Now().Add(1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-1", TeacherID: teacher.ID, TokenHash: HashSessionToken("exp1"), ExpiresAt: time.Now().Add(-1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-2", TeacherID: teacher.ID, TokenHash: HashSessionToken("exp2"), ExpiresAt: time.Now().Add(-2 * time.Hour)})

	assert.NoError(t, CleanupExpiredSessions(db))

	var remaining []models.Session
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "sess-valid", remaining[0].ID)
}

func TestHashSessionToken_KeyedBySecret(t *testing.T) {
	t.Cleanup(func() { SetSessionSecret("") })

	SetSessionSecret("first")
	a := HashSessionToken("token")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashSessionToken("token"))

	SetSessionSecret("second")
	assert.NotEqual(t, a, HashSessionToken("token"))
}
