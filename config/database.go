package config

// DBConfig contains PostgreSQL database configuration for the audit log.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"imblue"`
	Password string `env:"PASSWORD"                envDefault:"imblue"`
	Name     string `env:"NAME"                    envDefault:"imblue"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// Enabled controls whether the gateway connects to Postgres at all.
	// The audit log degrades to structured logging when disabled.
	Enabled bool `env:"ENABLED"                 envDefault:"true"`
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the session store.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
