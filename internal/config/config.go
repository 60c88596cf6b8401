package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration for ledger change notifications
type NATSConfig struct {
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	SubjectPrefix   string        `mapstructure:"subject_prefix"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// EVMSourceConfig holds configuration for the EVM escrow contract source
type EVMSourceConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	RPCURL               string        `mapstructure:"rpc_url"`
	ChainID              domain.Chain  `mapstructure:"chain_id"`
	EscrowAddress        string        `mapstructure:"escrow_address"`
	StartBlock           uint64        `mapstructure:"start_block"` // deployment block of the escrow contract
	Confirmations        uint64        `mapstructure:"confirmations"`
	BlockHeadTTL         time.Duration `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration `mapstructure:"block_head_stale_window"`
}

// SuiSourceConfig holds configuration for the Sui escrow package source
type SuiSourceConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	RPCURL       string        `mapstructure:"rpc_url"`
	WebSocketURL string        `mapstructure:"websocket_url"`
	ChainID      domain.Chain  `mapstructure:"chain_id"`
	PackageID    string        `mapstructure:"package_id"`
	Module       string        `mapstructure:"module"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ProjectionConfig holds the projector loop settings shared by all sources
type ProjectionConfig struct {
	PageSize     int           `mapstructure:"page_size"`
	SafetyWindow uint64        `mapstructure:"safety_window"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// WebhookConfig holds the endpoints receiving signed ledger change events
type WebhookConfig struct {
	URLs       []string      `mapstructure:"urls"`
	Secret     string        `mapstructure:"secret"`
	EventTypes []string      `mapstructure:"event_types"` // empty or "*" delivers every type
	Timeout    time.Duration `mapstructure:"timeout"`
}

// GatewayConfig holds configuration for the burn/attestation service and the destination minter
type GatewayConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	MinterRPCURL   string        `mapstructure:"minter_rpc_url"`
	MinterAddress  string        `mapstructure:"minter_address"`
	MinterKey      string        `mapstructure:"minter_key"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
}

// BridgeConfig holds configuration for the bridging intermediary
type BridgeConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	APIKey       string        `mapstructure:"api_key"`
	Token        string        `mapstructure:"token"` // settlement token symbol or address understood by the bridge
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// SettlementConfig holds the orchestrator loop settings
type SettlementConfig struct {
	TreasuryChain        domain.Chain  `mapstructure:"treasury_chain"`
	Interval             time.Duration `mapstructure:"interval"`
	FundingBatchSize     int           `mapstructure:"funding_batch_size"`
	PayoutBatchSize      int           `mapstructure:"payout_batch_size"`
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
	MaxRetries           uint64        `mapstructure:"max_retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxElapsed      time.Duration `mapstructure:"retry_max_elapsed"`
	StuckAfter           time.Duration `mapstructure:"stuck_after"`
}

// AuthorizationConfig holds payout authorization settings
type AuthorizationConfig struct {
	Backend           string        `mapstructure:"backend"` // memory or redis
	TTL               time.Duration `mapstructure:"ttl"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	SignerKey         string        `mapstructure:"signer_key"`
	DomainName        string        `mapstructure:"domain_name"`
	DomainVersion     string        `mapstructure:"domain_version"`
	ChainID           int64         `mapstructure:"chain_id"`
	VerifyingContract string        `mapstructure:"verifying_contract"`
	IdentityAPIURL    string        `mapstructure:"identity_api_url"`
	IdentityAPIKey    string        `mapstructure:"identity_api_key"`
}

// ProjectorConfig holds configuration for the projector binary
type ProjectorConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Projection    ProjectionConfig    `mapstructure:"projection"`
	EVM           EVMSourceConfig     `mapstructure:"evm"`
	Sui           SuiSourceConfig     `mapstructure:"sui"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Authorization AuthorizationConfig `mapstructure:"authorization"`
}

// OrchestratorConfig holds configuration for the settlement orchestrator binary
type OrchestratorConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Settlement    SettlementConfig    `mapstructure:"settlement"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Bridge        BridgeConfig        `mapstructure:"bridge"`
	Authorization AuthorizationConfig `mapstructure:"authorization"`
}

// MigrateConfig holds configuration for the migrate binary
type MigrateConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// LoadProjectorConfig loads configuration for the projector
func LoadProjectorConfig(configFile string, envPath string) (*ProjectorConfig, error) {
	v := configureViper("projector", configFile, envPath)

	setDatabaseDefaults(v)
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.subject_prefix", "ledger")
	v.SetDefault("nats.stream_name", "LEDGER")
	v.SetDefault("nats.duplicate_window", "2h")
	v.SetDefault("nats.connection_name", "bounty-projector")
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("projection.page_size", domain.DEFAULT_PAGE_SIZE)
	v.SetDefault("projection.safety_window", domain.DEFAULT_SAFETY_WINDOW)
	v.SetDefault("projection.poll_interval", "15s")
	v.SetDefault("evm.chain_id", string(domain.ChainBaseMainnet))
	v.SetDefault("evm.confirmations", 5)
	v.SetDefault("evm.block_head_ttl", "4s")
	v.SetDefault("evm.block_head_stale_window", "60s")
	v.SetDefault("sui.chain_id", string(domain.ChainSuiMainnet))
	v.SetDefault("sui.module", "escrow")
	v.SetDefault("sui.idle_timeout", "5m")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("authorization.backend", "memory")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config ProjectorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadOrchestratorConfig loads configuration for the settlement orchestrator
func LoadOrchestratorConfig(configFile string, envPath string) (*OrchestratorConfig, error) {
	v := configureViper("settlement-orchestrator", configFile, envPath)

	setDatabaseDefaults(v)
	v.SetDefault("metrics.addr", ":9091")
	v.SetDefault("settlement.treasury_chain", string(domain.ChainBaseMainnet))
	v.SetDefault("settlement.interval", "30s")
	v.SetDefault("settlement.funding_batch_size", 10)
	v.SetDefault("settlement.payout_batch_size", 10)
	v.SetDefault("settlement.call_timeout", "45s")
	v.SetDefault("settlement.max_retries", 3)
	v.SetDefault("settlement.retry_initial_interval", "2s")
	v.SetDefault("settlement.retry_max_elapsed", "2m")
	v.SetDefault("settlement.stuck_after", "30m")
	v.SetDefault("gateway.receipt_timeout", "2m")
	v.SetDefault("bridge.token", "USDC")
	v.SetDefault("bridge.poll_interval", "5s")
	v.SetDefault("authorization.backend", "redis")
	v.SetDefault("authorization.ttl", "15m")
	v.SetDefault("authorization.sweep_interval", "1m")
	v.SetDefault("authorization.domain_name", "BountyEscrow")
	v.SetDefault("authorization.domain_version", "1")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config OrchestratorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadMigrateConfig loads configuration for the migrate command
func LoadMigrateConfig(configFile string, envPath string) (*MigrateConfig, error) {
	v := configureViper("migrate", configFile, envPath)
	setDatabaseDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config MigrateConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

// readConfig reads the config file, falling back to environment variables when it does not exist
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("FF_BOUNTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.duplicate_window",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Metrics
		"metrics.addr",
		// Projection
		"projection.page_size",
		"projection.safety_window",
		"projection.poll_interval",
		// EVM source
		"evm.enabled",
		"evm.rpc_url",
		"evm.chain_id",
		"evm.escrow_address",
		"evm.start_block",
		"evm.confirmations",
		"evm.block_head_ttl",
		"evm.block_head_stale_window",
		// Sui source
		"sui.enabled",
		"sui.rpc_url",
		"sui.websocket_url",
		"sui.chain_id",
		"sui.package_id",
		"sui.module",
		"sui.idle_timeout",
		// Settlement
		"settlement.treasury_chain",
		"settlement.interval",
		"settlement.funding_batch_size",
		"settlement.payout_batch_size",
		"settlement.call_timeout",
		"settlement.max_retries",
		"settlement.retry_initial_interval",
		"settlement.retry_max_elapsed",
		"settlement.stuck_after",
		// Gateway
		"gateway.api_url",
		"gateway.api_key",
		"gateway.minter_rpc_url",
		"gateway.minter_address",
		"gateway.minter_key",
		"gateway.receipt_timeout",
		// Bridge
		"bridge.api_url",
		"bridge.api_key",
		"bridge.token",
		"bridge.poll_interval",
		// Authorization
		"webhook.urls",
		"webhook.secret",
		"webhook.event_types",
		"webhook.timeout",
		"authorization.backend",
		"authorization.ttl",
		"authorization.sweep_interval",
		"authorization.signer_key",
		"authorization.domain_name",
		"authorization.domain_version",
		"authorization.chain_id",
		"authorization.verifying_contract",
		"authorization.identity_api_url",
		"authorization.identity_api_key",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the database connection string in URL form, as pgx stdlib expects for goose
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}
