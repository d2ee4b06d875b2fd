package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ttacon/libphonenumber"
	"gorm.io/gorm"
)

var CountryCode = "RU"

// AgentPhone is a contact number on record for an agent.
type AgentPhone struct {
	ID          int       `gorm:"primary_key" json:"id"`
	AgentId     int       `gorm:"index;not null" json:"agent_id"`
	PhoneNumber string    `gorm:"size:32;not null" json:"phone_number"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

// CreateAgentPhone attaches a validated phone number to an existing agent.
func CreateAgentPhone(ctx context.Context, db *gorm.DB, agentID int, phoneNumber string) (*AgentPhone, error) {
	if err := ValidatePhoneNumber(phoneNumber, CountryCode); err != nil {
		return nil, err
	}

	var agent Agent
	if err := db.WithContext(ctx).First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("agent not found")
		}
		return nil, err
	}

	phone := AgentPhone{AgentId: agent.ID, PhoneNumber: phoneNumber}
	if err := db.WithContext(ctx).Create(&phone).Error; err != nil {
		return nil, err
	}
	return &phone, nil
}
