package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// Account represents the canonical identity entity for students and admins.
type Account struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email               string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash        string          `gorm:"column:password_hash;not null"`
	Name                string          `gorm:"column:name;not null"`
	ClassGroup          string          `gorm:"column:class_group;not null"`
	Balance             decimal.Decimal `gorm:"column:balance;type:numeric(10,2);not null;default:0"`
	ApprovedSubmissions int             `gorm:"column:approved_submissions;not null;default:0"`
	LGPDConsent         bool            `gorm:"column:lgpd_consent;not null;default:false"`
	IsActive            bool            `gorm:"column:is_active;not null;default:true"`
	Role                enums.Role      `gorm:"column:role;type:text;not null;default:student"`
	LastLoginAt         *time.Time      `gorm:"column:last_login_at"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
