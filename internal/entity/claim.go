package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimStatusPending is the only status the workflow assigns today.
const ClaimStatusPending = "pending"

// Claim belongs to exactly one item. Seq is its 1-based position in the
// item's claim sequence.
type Claim struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_claims_item_seq,priority:1" json:"item_id"`
	Seq        int       `gorm:"not null;uniqueIndex:idx_claims_item_seq,priority:2" json:"seq"`
	ClaimantID uuid.UUID `gorm:"type:uuid;not null;index" json:"claimant_id"`
	Claimant   *User     `gorm:"constraint:OnDelete:CASCADE" json:"claimant,omitempty"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	if c.Status == "" {
		c.Status = ClaimStatusPending
	}
	return
}
