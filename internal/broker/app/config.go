package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/keybridge-labs/keybridge/internal/broker/provider/devsim"
)

type Config struct {
	ClientID string // Provider client registration this daemon authenticates as
	AppID    string // Application identity used for account associations

	DefaultAuthority  string        // Authority used when a request does not name one
	DefaultScope      string        // Scope used when a request does not name one
	OperationDeadline time.Duration // Optional: per-phase deadline (0 = broker default of 60s)
	MatchAllAccounts  bool          // Optional: match account hints against all accounts, not just associated ones

	ProfilePath string // Optional: path of the last-account profile file (default: per-user config dir)

	DatabaseFile     string        // Optional: path to the simulator's SQLite database file (default: keybridge.db, ":memory:" supported)
	SeedAccounts     string        // Optional: accounts to seed, "username[:display[:password[:totp]]]" comma-separated
	DefaultAccount   string        // Optional: username the silent sign-in prefers
	ApproverMode     string        // Optional: interactive approval mode (auto, deny) (default: auto)
	ApprovalDelay    time.Duration // Optional: pause before interactive approval resolves
	DiscoveryDelay   time.Duration // Optional: pause before account discovery completes
	SilentDelay      time.Duration // Optional: pause before silent acquisition completes
	InteractiveDelay time.Duration // Optional: pause before interactive sign-in starts
	SigningKeyFile   string        // Optional: PEM file with the simulator's Ed25519 signing key (default: ephemeral key)
	SessionTTL       time.Duration // Optional: simulator session lifetime (0 = simulator default)
	CredentialTTL    time.Duration // Optional: minted credential lifetime (0 = simulator default)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Host                 string        // Listen host (default: 127.0.0.1, the daemon is a local broker)
	Port                 int           // HTTP server port (default: 8180)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-session sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		ClientID: getEnvOrDefault("KEYBRIDGE_CLIENT_ID", "keybridge-dev"),
		AppID:    getEnvOrDefault("KEYBRIDGE_APP_ID", "keybridge-host"),

		DefaultAuthority:  getEnvOrDefault("KEYBRIDGE_AUTHORITY", "https://login.keybridge.test/common"),
		DefaultScope:      getEnvOrDefault("KEYBRIDGE_SCOPE", "user.read"),
		OperationDeadline: getEnvDurationOrDefault("KEYBRIDGE_OPERATION_DEADLINE", 0),
		MatchAllAccounts:  getEnvBoolOrDefault("KEYBRIDGE_MATCH_ALL_ACCOUNTS", false),

		ProfilePath: os.Getenv("KEYBRIDGE_PROFILE_PATH"),

		DatabaseFile:     getEnvOrDefault("KEYBRIDGE_DATABASE_FILE", "keybridge.db"),
		SeedAccounts:     getEnvOrDefault("KEYBRIDGE_SEED_ACCOUNTS", "alice:Alice Example,bob:Bob Example"),
		DefaultAccount:   os.Getenv("KEYBRIDGE_DEFAULT_ACCOUNT"),
		ApproverMode:     getEnvOrDefault("KEYBRIDGE_APPROVER", "auto"),
		ApprovalDelay:    getEnvDurationOrDefault("KEYBRIDGE_APPROVAL_DELAY", 0),
		DiscoveryDelay:   getEnvDurationOrDefault("KEYBRIDGE_DISCOVERY_DELAY", 0),
		SilentDelay:      getEnvDurationOrDefault("KEYBRIDGE_SILENT_DELAY", 0),
		InteractiveDelay: getEnvDurationOrDefault("KEYBRIDGE_INTERACTIVE_DELAY", 0),
		SigningKeyFile:   os.Getenv("KEYBRIDGE_SIGNING_KEY_FILE"),
		SessionTTL:       getEnvDurationOrDefault("KEYBRIDGE_SESSION_TTL", 0),
		CredentialTTL:    getEnvDurationOrDefault("KEYBRIDGE_CREDENTIAL_TTL", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Host:                 getEnvOrDefault("KEYBRIDGE_LISTEN_HOST", "127.0.0.1"),
		Port:                 getEnvIntOrDefault("PORT", 8180),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// ParseSeedAccounts parses the KEYBRIDGE_SEED_ACCOUNTS format: entries
// separated by commas, fields by colons. Username is required; display
// name and password are optional (an empty password is generated and
// logged at startup); a literal "totp" fourth field enrols the account in
// one-time codes.
//
//	alice:Alice Example:hunter2:totp,bob,carol::pw-carol
func ParseSeedAccounts(raw string) ([]devsim.SeedAccount, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var seeds []devsim.SeedAccount
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) > 4 {
			return nil, fmt.Errorf("seed account %q: too many fields", entry)
		}

		seed := devsim.SeedAccount{Username: strings.TrimSpace(parts[0])}
		if seed.Username == "" {
			return nil, fmt.Errorf("seed account %q: username is required", entry)
		}
		if len(parts) > 1 {
			seed.DisplayName = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			seed.Password = parts[2]
		}
		if len(parts) > 3 {
			if parts[3] != "totp" {
				return nil, fmt.Errorf("seed account %q: unknown flag %q", entry, parts[3])
			}
			seed.TOTP = true
		}

		seeds = append(seeds, seed)
	}

	return seeds, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
