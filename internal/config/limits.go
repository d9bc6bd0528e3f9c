package config

// Input limits enforced at the service layer.
const (
	// MaxGroupNameLength bounds group names, which double as physical
	// directory names.
	MaxGroupNameLength = 100

	// MaxFolderNameLength bounds folder names.
	MaxFolderNameLength = 255

	// MaxUsernameLength bounds usernames.
	MaxUsernameLength = 100

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxUploadBytes caps a single multipart upload (100 MB).
	MaxUploadBytes = 100 << 20
)
