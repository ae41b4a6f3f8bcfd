package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Fleet     FleetConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// FleetConfig holds the reservation and maintenance policy knobs.
type FleetConfig struct {
	Timezone            string // IANA name of the fleet's fixed timezone
	AutoCompleteHour    int    // local hour at which overdue trips are force-completed
	ReminderHours       []int  // local hours at which mileage reminders go out
	ReminderThrottle    time.Duration
	CooldownDays        int // post-trip wash/inspection window
	ServiceIntervalKm   int
	RevisionIntervalKm  int
	RevisionIntervalMon int // months until next revision after confirmation
	ApproachingKm       int // "approaching" maintenance band
	UrgentKm            int // "urgent" maintenance band
	DefaultMarginKm     int
	SchedulerBatchSize  int
	RetryMaxAttempts    int
	RetryBaseDelay      time.Duration
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	setFleetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		Fleet: FleetConfig{
			Timezone:            viper.GetString("FLEET_TIMEZONE"),
			AutoCompleteHour:    viper.GetInt("FLEET_AUTOCOMPLETE_HOUR"),
			ReminderHours:       viper.GetIntSlice("FLEET_REMINDER_HOURS"),
			ReminderThrottle:    viper.GetDuration("FLEET_REMINDER_THROTTLE"),
			CooldownDays:        viper.GetInt("FLEET_COOLDOWN_DAYS"),
			ServiceIntervalKm:   viper.GetInt("FLEET_SERVICE_INTERVAL_KM"),
			RevisionIntervalKm:  viper.GetInt("FLEET_REVISION_INTERVAL_KM"),
			RevisionIntervalMon: viper.GetInt("FLEET_REVISION_INTERVAL_MONTHS"),
			ApproachingKm:       viper.GetInt("FLEET_APPROACHING_KM"),
			UrgentKm:            viper.GetInt("FLEET_URGENT_KM"),
			DefaultMarginKm:     viper.GetInt("FLEET_DEFAULT_MARGIN_KM"),
			SchedulerBatchSize:  viper.GetInt("FLEET_SCHEDULER_BATCH_SIZE"),
			RetryMaxAttempts:    viper.GetInt("FLEET_RETRY_MAX_ATTEMPTS"),
			RetryBaseDelay:      viper.GetDuration("FLEET_RETRY_BASE_DELAY"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func setFleetDefaults() {
	viper.SetDefault("FLEET_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("FLEET_AUTOCOMPLETE_HOUR", 18)
	viper.SetDefault("FLEET_REMINDER_HOURS", []int{8, 14, 20})
	viper.SetDefault("FLEET_REMINDER_THROTTLE", 24*time.Hour)
	viper.SetDefault("FLEET_COOLDOWN_DAYS", 2)
	viper.SetDefault("FLEET_SERVICE_INTERVAL_KM", 10000)
	viper.SetDefault("FLEET_REVISION_INTERVAL_KM", 10000)
	viper.SetDefault("FLEET_REVISION_INTERVAL_MONTHS", 6)
	viper.SetDefault("FLEET_APPROACHING_KM", 1000)
	viper.SetDefault("FLEET_URGENT_KM", 500)
	viper.SetDefault("FLEET_DEFAULT_MARGIN_KM", 500)
	viper.SetDefault("FLEET_SCHEDULER_BATCH_SIZE", 500)
	viper.SetDefault("FLEET_RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("FLEET_RETRY_BASE_DELAY", 200*time.Millisecond)
}

// Location resolves the configured fleet timezone, defaulting to UTC when the
// name cannot be loaded.
func (f *FleetConfig) Location() *time.Location {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
