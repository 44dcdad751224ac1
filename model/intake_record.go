package model

import (
	"time"

	"gorm.io/datatypes"
)

// IntakeRecord keeps a server-side copy of an authenticated user's intake
// submission so a new session can prefill the form. The session cookie
// stays authoritative for injection; this table is best-effort history.
type IntakeRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Fields    datatypes.JSON `gorm:"type:jsonb" json:"fields"`
	CreatedAt time.Time      `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for IntakeRecord
func (IntakeRecord) TableName() string {
	return "intake_records"
}
