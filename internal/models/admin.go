// internal/models/admin.go
package models

// AdminNotification is the operator channel for events that must not fail
// a customer request: low stock, invoice rendering failures, payment
// anomalies.
type AdminNotification struct {
	BaseModel
	Type         string `json:"type" gorm:"size:50;not null;index"`
	Title        string `json:"title" gorm:"size:255;not null"`
	Message      string `json:"message" gorm:"type:text"`
	Priority     string `json:"priority" gorm:"size:20;default:'medium'"`
	ResourceType string `json:"resource_type" gorm:"size:50"`
	ResourceID   *uint  `json:"resource_id"`
	IsRead       bool   `json:"is_read" gorm:"default:false"`
}
