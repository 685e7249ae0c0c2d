package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemKindLost  = "lost"
	ItemKindFound = "found"
)

// Item is a lost or found report. Resolved only ever moves false -> true.
type Item struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind                string     `gorm:"size:10;not null;index:idx_items_active,priority:2" json:"kind"`
	ReporterID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter            *User      `gorm:"constraint:OnDelete:CASCADE" json:"reporter,omitempty"`
	Resolved            bool       `gorm:"not null;index:idx_items_active,priority:1" json:"resolved"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	Name                string     `gorm:"size:120;not null" json:"name"`
	Place               string     `gorm:"size:200;not null" json:"place"`
	IncidentTime        string     `gorm:"size:100;not null" json:"time"`
	Contact             string     `gorm:"size:200;not null" json:"contact"`
	Description         string     `gorm:"type:text;not null" json:"description"`
	Reward              string     `gorm:"size:100" json:"reward,omitempty"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	ImageURL            *string    `gorm:"type:text" json:"image_url,omitempty"`
	SecurityQuestion    *string    `gorm:"size:255" json:"security_question,omitempty"`
	ChallengeSecretHash *string    `gorm:"size:100" json:"-"`
	ClaimCount          int        `gorm:"not null" json:"claim_count"`
	Claims              []Claim    `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt           time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

func (i *Item) HasChallenge() bool {
	return i.ChallengeSecretHash != nil && *i.ChallengeSecretHash != ""
}

func (i *Item) IsReporter(userID uuid.UUID) bool {
	return i.ReporterID == userID
}
