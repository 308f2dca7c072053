package search

// registry is the static table of settings fields. It is loaded once and
// never mutated; Fields hands out the same backing array to every caller.
var registry = []SearchableField{
	// profile
	{ID: "profile-name", Title: "Display Name", Description: "The name shown to other users across the application", Section: "profile", Path: "/settings/profile#name"},
	{ID: "profile-email", Title: "Email Address", Description: "Address used for sign-in and notifications", Section: "profile", Path: "/settings/profile#email"},
	{ID: "profile-avatar", Title: "Profile Picture", Description: "Upload and crop an avatar image", Section: "profile", Path: "/settings/profile#avatar"},
	{ID: "profile-language", Title: "Language", Description: "Interface language and regional formats", Section: "profile", Path: "/settings/profile#language"},

	// security
	{ID: "security-password", Title: "Change Password", Description: "Update your account password; strength is checked as you type", Section: "security", Path: "/settings/security#password"},
	{ID: "security-2fa", Title: "Two-Factor Authentication", Description: "Secure your account with a second sign-in factor", Section: "security", Path: "/settings/security#two-factor"},
	{ID: "security-sessions", Title: "Active Sessions", Description: "Review and revoke devices signed in to your account", Section: "security", Path: "/settings/security#sessions"},
	{ID: "security-audit", Title: "Audit Log", Description: "Chronological record of administrative actions", Section: "security", Path: "/settings/security#audit"},

	// appearance
	{ID: "appearance-theme", Title: "Theme", Description: "Choose light or dark theme, or follow the system", Section: "appearance", Path: "/settings/appearance#theme"},
	{ID: "appearance-density", Title: "Display Density", Description: "Compact or comfortable spacing for tables and lists", Section: "appearance", Path: "/settings/appearance#density"},
	{ID: "appearance-accent", Title: "Accent Color", Description: "Primary color used for buttons and highlights", Section: "appearance", Path: "/settings/appearance#accent"},

	// notifications
	{ID: "notify-email", Title: "Email Notifications", Description: "Receive order and stock alerts by email", Section: "notifications", Path: "/settings/notifications#email"},
	{ID: "notify-lowstock", Title: "Low Stock Alerts", Description: "Notify when item quantity drops below its threshold", Section: "notifications", Path: "/settings/notifications#low-stock"},
	{ID: "notify-digest", Title: "Weekly Digest", Description: "Summary of inventory changes delivered every week", Section: "notifications", Path: "/settings/notifications#digest"},

	// backup
	{ID: "backup-schedule", Title: "Backup Schedule", Description: "Daily time at which automatic backups run", Section: "backup", Path: "/settings/backup#schedule"},
	{ID: "backup-formats", Title: "Backup Formats", Description: "Archive formats produced by scheduled backups", Section: "backup", Path: "/settings/backup#formats"},
	{ID: "backup-retention", Title: "Backup Retention", Description: "How long manual, automatic, and pre-restore backups are kept", Section: "backup", Path: "/settings/backup#retention"},
	{ID: "backup-restore", Title: "Restore from Backup", Description: "Load a previous backup in preview, merge, or full mode", Section: "backup", Path: "/settings/backup#restore"},
	{ID: "backup-history", Title: "Backup History", Description: "Browse, validate, download, and delete stored backups", Section: "backup", Path: "/settings/backup#history"},

	// system
	{ID: "system-users", Title: "User Administration", Description: "Invite, deactivate, and manage user accounts in bulk", Section: "system", Path: "/settings/system#users"},
	{ID: "system-roles", Title: "Roles and Permissions", Description: "Static matrix of what each role may do", Section: "system", Path: "/settings/system#roles"},
	{ID: "system-developer", Title: "Developer Settings", Description: "API tokens, webhooks, and diagnostic panels", Section: "system", Path: "/settings/system#developer"},
}

// Fields returns the immutable settings registry. Callers must not modify
// the returned slice.
func Fields() []SearchableField {
	return registry
}
