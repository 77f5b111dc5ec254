package common

// File permission constants for consistent handling of sensitive files
const (
	// FilePermissionSecure is used for sensitive files (config, baselines, logs)
	FilePermissionSecure = 0600

	// FilePermissionNormal is used for non-sensitive files (generated datasets)
	FilePermissionNormal = 0644

	// DirPermissionSecure is used for directories containing sensitive files
	DirPermissionSecure = 0700

	// DirPermissionNormal is used for normal directories
	DirPermissionNormal = 0755
)
