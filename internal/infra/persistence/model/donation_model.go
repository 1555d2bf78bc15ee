package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// JSONMap stores an arbitrary JSON object in a jsonb column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal json map")
	}

	return data, nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil

		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported jsonb source type %T", value)
	}

	return errors.Wrap(json.Unmarshal(data, m), "failed to unmarshal json map")
}

// DonationModel is the GORM model for the donations table. Reference is the
// locally generated idempotency key; TransactionID is the provider-assigned
// identifier and stays NULL until initiation succeeds.
type DonationModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	Email         string          `gorm:"type:varchar(255);not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	Reference     string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	TransactionID *string         `gorm:"type:varchar(255);uniqueIndex"`
	ErrorMessage  string          `gorm:"type:text"`
	PaymentInfo   JSONMap         `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for DonationModel.
func (DonationModel) TableName() string {
	return "donations"
}
