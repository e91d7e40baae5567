package services

import (
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TeacherInput carries the fields needed to open a teacher account
type TeacherInput struct {
	Name       string
	Email      string
	Password   string
	Subdomain  string
	Timezone   string
	HourlyRate *decimal.Decimal
}

// ProfileUpdate carries the teacher-editable profile fields. Nil leaves a field unchanged.
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Bio        *string
	Theme      *string
	Timezone   *string
	Currency   *string
	HourlyRate *decimal.Decimal
	ClearRate  bool
}

// CreateTeacher registers a new tenant with a hashed password
func CreateTeacher(db *gorm.DB, input TeacherInput) (*models.Teacher, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" {
		return nil, invalid("name", "is required")
	}
	if !validEmail(input.Email) {
		return nil, invalid("email", "must be a valid email address")
	}
	if err := ValidatePassword(input.Password, input.Email); err != nil {
		return nil, err
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return nil, invalid("timezone", "unknown time zone %q", input.Timezone)
		}
	}
	if input.HourlyRate != nil && input.HourlyRate.IsNegative() {
		return nil, invalid("hourly_rate", "must not be negative")
	}

	subdomain := models.NormalizeSubdomain(input.Subdomain)
	if input.Subdomain != "" {
		if len(subdomain) < 3 {
			return nil, invalid("subdomain", "must be at least 3 characters of a-z, 0-9 or -")
		}
		var count int64
		db.Model(&models.Teacher{}).Unscoped().Where("subdomain = ?", subdomain).Count(&count)
		if count > 0 {
			return nil, &ConflictError{Resource: "teacher", Message: fmt.Sprintf("subdomain %q is taken", subdomain)}
		}
	}

	var existing int64
	db.Model(&models.Teacher{}).Where("email = ?", input.Email).Count(&existing)
	if existing > 0 {
		return nil, &ConflictError{Resource: "teacher", Message: "an account with this email already exists"}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		Name:       input.Name,
		Email:      input.Email,
		Password:   hash,
		Subdomain:  subdomain,
		Timezone:   input.Timezone,
		HourlyRate: input.HourlyRate,
		IsActive:   true,
	}
	if err := db.Create(teacher).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Resource: "teacher", Message: "subdomain or email already in use"}
		}
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	return teacher, nil
}

// GetTeacherByID loads an active teacher
func GetTeacherByID(db *gorm.DB, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("teacher", id)
		}
		return nil, fmt.Errorf("failed to load teacher: %w", err)
	}
	return &teacher, nil
}

// GetTeacherBySubdomain resolves the tenant behind a public booking page
func GetTeacherBySubdomain(db *gorm.DB, subdomain string) (*models.Teacher, error) {
	sub := models.NormalizeSubdomain(subdomain)
	if sub == "" {
		return nil, notFound("teacher", subdomain)
	}
	var teacher models.Teacher
	if err := db.Where("subdomain = ? AND is_active = ?", sub, true).First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("teacher", subdomain)
		}
		return nil, fmt.Errorf("failed to load teacher: %w", err)
	}
	return &teacher, nil
}

// dummyPasswordHash is compared against when no account matches an email
var dummyPasswordHash = "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t"

func init() {
	if hash, err := HashPassword("dummy_password_for_timing_mitigation"); err == nil {
		dummyPasswordHash = hash
	}
}

// AuthenticateTeacher checks an email/password pair
func AuthenticateTeacher(db *gorm.DB, email, password string) (*models.Teacher, error) {
	var teacher models.Teacher
	err := db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Timing attack mitigation: unknown emails still pay for a bcrypt compare
			VerifyPassword(dummyPasswordHash, password)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load teacher: %w", err)
	}
	if !VerifyPassword(teacher.Password, password) {
		return nil, ErrUnauthorized
	}
	return &teacher, nil
}

// UpdateTeacherProfile applies a partial profile update
func UpdateTeacherProfile(db *gorm.DB, teacherID string, update ProfileUpdate) (*models.Teacher, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		teacher.Name = name
	}
	if update.Phone != nil {
		teacher.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Bio != nil {
		teacher.Bio = *update.Bio
	}
	if update.Theme != nil && *update.Theme != "" {
		teacher.Theme = *update.Theme
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil {
			return nil, invalid("timezone", "unknown time zone %q", *update.Timezone)
		}
		teacher.Timezone = *update.Timezone
	}
	if update.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*update.Currency))
		if len(cur) != 3 {
			return nil, invalid("currency", "must be a 3-letter ISO code")
		}
		teacher.Currency = cur
	}
	switch {
	case update.ClearRate:
		teacher.HourlyRate = nil
	case update.HourlyRate != nil:
		if update.HourlyRate.IsNegative() {
			return nil, invalid("hourly_rate", "must not be negative")
		}
		rate := update.HourlyRate.Round(2)
		teacher.HourlyRate = &rate
	}

	if err := db.Save(teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to update teacher: %w", err)
	}
	return teacher, nil
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
