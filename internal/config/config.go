package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Learning LearningConfig `mapstructure:"learning" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains token-verification settings. Tokens are issued by the
// external identity service; this service only validates them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LearningConfig contains the tunable policy knobs of the learning engine.
type LearningConfig struct {
	// NewItemSessionCap limits how many never-reviewed terms a single
	// review queue may introduce.
	NewItemSessionCap int `mapstructure:"new_item_session_cap" validate:"required,gt=0"`

	// FailEasePenalty is subtracted from an item's ease factor on a failed
	// recall; zero leaves ease untouched on fails.
	FailEasePenalty float64 `mapstructure:"fail_ease_penalty" validate:"gte=0"`

	// MaxIntervalDays caps review interval growth.
	MaxIntervalDays int `mapstructure:"max_interval_days" validate:"required,gt=0"`

	// MasteryMinRepetitions and MasteryMinEaseFactor form the named policy
	// cutoff for counting a term as mastered in reports.
	MasteryMinRepetitions int     `mapstructure:"mastery_min_repetitions" validate:"required,gt=0"`
	MasteryMinEaseFactor  float64 `mapstructure:"mastery_min_ease_factor" validate:"required,gt=1"`

	// StreakRiskCutoffHour is the local hour (0-23) after which a streak
	// with no practice today is reported as at risk.
	StreakRiskCutoffHour int `mapstructure:"streak_risk_cutoff_hour" validate:"gte=0,lt=24"`

	// DefaultDailyGoalMinutes is used when a profile carries no goal.
	DefaultDailyGoalMinutes int `mapstructure:"default_daily_goal_minutes" validate:"required,gt=0"`
}
