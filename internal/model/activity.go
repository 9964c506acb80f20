package model

import "time"

// Activity levels
const (
	ActivityLevelInfo    = "info"
	ActivityLevelWarning = "warning"
	ActivityLevelError   = "error"
)

// Activity categories
const (
	ActivityCategoryAuth      = "auth"
	ActivityCategoryUser      = "user"
	ActivityCategoryContent   = "content"
	ActivityCategoryCommunity = "community"
	ActivityCategoryContact   = "contact"
	ActivityCategorySystem    = "system"
)

// ActivityEntry is one line of the audit trail.
type ActivityEntry struct {
	ID        string         `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    *string        `json:"userId"`
	IPAddress *string        `json:"ipAddress"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}
