package models

// NotificationType distinguishes delivery channels and templates.
type NotificationType string

const (
	NotificationFileMarked   NotificationType = "FILE_MARKED"
	NotificationFileReturned NotificationType = "FILE_RETURNED"
	NotificationVisibility   NotificationType = "VISIBILITY_FANOUT"
)

// Notification is a post-commit side effect. Delivery is best-effort:
// failures are logged and never affect the committed marking.
type Notification struct {
	PersonID string           `json:"person_id"`
	FileID   string           `json:"file_id"`
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
}
