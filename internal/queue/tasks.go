package queue

const (
	TypeNotificationCleanup = "notifications:cleanup"
	TypeSystemScan          = "notifications:system_scan"
)
