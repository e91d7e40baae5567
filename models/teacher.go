package models

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Teacher is the tenant root. Every availability window, blocked range,
// settings row, reservation and booking request hangs off a teacher.
type Teacher struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Subdomain string `gorm:"uniqueIndex;not null;size:63" json:"subdomain"`
	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Phone     string `json:"phone"`
	Bio       string `gorm:"type:text" json:"bio"`
	Theme     string `gorm:"not null;default:default" json:"theme"`
	Timezone  string `gorm:"not null;default:UTC" json:"timezone"`
	Currency  string `gorm:"not null;default:USD;size:3" json:"currency"`

	// HourlyRate is optional; nil disables cost computation.
	HourlyRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"hourly_rate,omitempty"`

	WebhookSecret string `gorm:"not null" json:"-"`
	IsActive      bool   `gorm:"not null;default:true" json:"is_active"`
}

var (
	subdomainInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	subdomainDashes       = regexp.MustCompile(`-+`)
)

// BeforeCreate hook to generate UUID, subdomain and webhook secret
func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Subdomain == "" {
		t.Subdomain = generateSubdomain(tx, t.Name)
	} else {
		t.Subdomain = NormalizeSubdomain(t.Subdomain)
	}
	if t.WebhookSecret == "" {
		secret := make([]byte, 24)
		if _, err := rand.Read(secret); err != nil {
			return err
		}
		t.WebhookSecret = hex.EncodeToString(secret)
	}
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}
	if t.Currency == "" {
		t.Currency = "USD"
	}
	return nil
}

// NormalizeSubdomain lowercases and strips a value down to a valid DNS label
func NormalizeSubdomain(value string) string {
	sub := strings.ToLower(strings.TrimSpace(value))
	sub = strings.ReplaceAll(sub, " ", "-")
	sub = subdomainInvalidChars.ReplaceAllString(sub, "")
	sub = subdomainDashes.ReplaceAllString(sub, "-")
	sub = strings.Trim(sub, "-")
	if len(sub) > 50 {
		sub = strings.TrimRight(sub[:50], "-")
	}
	return sub
}

// generateSubdomain derives a unique subdomain from the teacher's name
func generateSubdomain(tx *gorm.DB, name string) string {
	sub := NormalizeSubdomain(name)
	if sub == "" {
		sub = "teacher"
	}

	original := sub
	counter := 1
	for {
		var count int64
		tx.Model(&Teacher{}).Unscoped().Where("subdomain = ?", sub).Count(&count)
		if count == 0 {
			break
		}
		sub = original + "-" + strconv.Itoa(counter)
		counter++
	}
	return sub
}

// Location returns the teacher's time zone, falling back to UTC
func (t *Teacher) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasRate reports whether the teacher publishes an hourly rate
func (t *Teacher) HasRate() bool {
	return t.HourlyRate != nil && t.HourlyRate.IsPositive()
}

// TableName specifies the table name for Teacher model
func (Teacher) TableName() string {
	return "teachers"
}
