package model

import "time"

// ServiceIntegrationModel is the GORM model for the service_integrations
// table. Config holds the provider credentials as an opaque JSON object.
type ServiceIntegrationModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Service   string  `gorm:"type:varchar(50);not null;index"`
	Provider  string  `gorm:"type:varchar(50);not null"`
	Config    JSONMap `gorm:"type:jsonb"`
	IsActive  bool    `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for ServiceIntegrationModel.
func (ServiceIntegrationModel) TableName() string {
	return "service_integrations"
}
