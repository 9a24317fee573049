package config

// Scan defaults.
const (
	DefaultDays      = 30
	DefaultMaxRepos  = 50
	DefaultWorkers   = 0
	DefaultFeedLimit = 15
	DefaultChartDays = 14
)

// Logging defaults.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultExcludePatterns returns the exclusion patterns used when none are configured.
func DefaultExcludePatterns() []string {
	return []string{".git", "node_modules", "venv", "__pycache__"}
}
