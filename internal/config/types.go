package config

// Config holds all configuration for the application.
type Config struct {
	Port          string
	DBName        string
	DatabaseURL   string
	MigrationsDir string
	Turso         TursoConfig
	Log           LogConfig
	Slack         SlackConfig
	ProjectID     string
	Registrar     RegistrarConfig
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type LogConfig struct {
	Format string
	Level  string
}
type RegistrarConfig struct {
	MaxRetries uint64
}
