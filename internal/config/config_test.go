package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	if content == "" {
		return filepath.Join(tmpDir, "nonexistent.yaml")
	}
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadProjectorConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *ProjectorConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  subject_prefix: "bounty"
projection:
  page_size: 200
  safety_window: 1000
  poll_interval: "5s"
evm:
  enabled: true
  rpc_url: "http://localhost:8545"
  chain_id: "eip155:84532"
  escrow_address: "0x00000000000000000000000000000000000000e5"
  confirmations: 2
sui:
  enabled: true
  rpc_url: "https://fullnode.testnet.sui.io"
  websocket_url: "wss://fullnode.testnet.sui.io"
  chain_id: "sui:testnet"
  package_id: "0xabc"
`,
			validate: func(t *testing.T, cfg *ProjectorConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "bounty", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 200, cfg.Projection.PageSize)
				assert.Equal(t, uint64(1000), cfg.Projection.SafetyWindow)
				assert.Equal(t, 5*time.Second, cfg.Projection.PollInterval)
				assert.True(t, cfg.EVM.Enabled)
				assert.Equal(t, domain.ChainBaseSepolia, cfg.EVM.ChainID)
				assert.Equal(t, uint64(2), cfg.EVM.Confirmations)
				assert.True(t, cfg.Sui.Enabled)
				assert.Equal(t, domain.ChainSuiTestnet, cfg.Sui.ChainID)
				assert.Equal(t, "escrow", cfg.Sui.Module)
				assert.Equal(t, 5*time.Minute, cfg.Sui.IdleTimeout)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
evm:
  rpc_url: "http://localhost:8545"
`,
			validate: func(t *testing.T, cfg *ProjectorConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "ledger", cfg.NATS.SubjectPrefix)
				assert.Equal(t, "LEDGER", cfg.NATS.StreamName)
				assert.Equal(t, 2*time.Hour, cfg.NATS.DuplicateWindow)
				assert.Equal(t, domain.DEFAULT_PAGE_SIZE, cfg.Projection.PageSize)
				assert.Equal(t, uint64(domain.DEFAULT_SAFETY_WINDOW), cfg.Projection.SafetyWindow)
				assert.Equal(t, 15*time.Second, cfg.Projection.PollInterval)
				assert.Equal(t, domain.ChainBaseMainnet, cfg.EVM.ChainID)
				assert.Equal(t, 4*time.Second, cfg.EVM.BlockHeadTTL)
			},
		},
		{
			name:       "missing config file",
			configFile: "",
			validate: func(t *testing.T, cfg *ProjectorConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadProjectorConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadOrchestratorConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *OrchestratorConfig)
	}{
		{
			name: "valid config file",
			configFile: `
database:
  host: db
redis:
  addr: "localhost:6379"
  db: 2
settlement:
  treasury_chain: "eip155:84532"
  interval: "10s"
  funding_batch_size: 5
  payout_batch_size: 7
  call_timeout: "20s"
  max_retries: 1
gateway:
  api_url: "https://gateway-api-testnet.circle.com"
  minter_address: "0x0022222ABE238Cc2C7Bb1f21003F0a260052475B"
bridge:
  api_url: "https://bridge.example.com"
authorization:
  backend: redis
  ttl: "5m"
  chain_id: 84532
  verifying_contract: "0x00000000000000000000000000000000000000e5"
`,
			validate: func(t *testing.T, cfg *OrchestratorConfig) {
				assert.Equal(t, "db", cfg.Database.Host)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, 2, cfg.Redis.DB)
				assert.Equal(t, domain.ChainBaseSepolia, cfg.Settlement.TreasuryChain)
				assert.Equal(t, 10*time.Second, cfg.Settlement.Interval)
				assert.Equal(t, 5, cfg.Settlement.FundingBatchSize)
				assert.Equal(t, 7, cfg.Settlement.PayoutBatchSize)
				assert.Equal(t, 20*time.Second, cfg.Settlement.CallTimeout)
				assert.Equal(t, uint64(1), cfg.Settlement.MaxRetries)
				assert.Equal(t, "https://bridge.example.com", cfg.Bridge.APIURL)
				assert.Equal(t, "redis", cfg.Authorization.Backend)
				assert.Equal(t, 5*time.Minute, cfg.Authorization.TTL)
				assert.Equal(t, int64(84532), cfg.Authorization.ChainID)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: db
`,
			validate: func(t *testing.T, cfg *OrchestratorConfig) {
				assert.Equal(t, 30*time.Second, cfg.Settlement.Interval)
				assert.Equal(t, 10, cfg.Settlement.FundingBatchSize)
				assert.Equal(t, 10, cfg.Settlement.PayoutBatchSize)
				assert.Equal(t, 45*time.Second, cfg.Settlement.CallTimeout)
				assert.Equal(t, uint64(3), cfg.Settlement.MaxRetries)
				assert.Equal(t, 30*time.Minute, cfg.Settlement.StuckAfter)
				assert.Equal(t, "redis", cfg.Authorization.Backend)
				assert.Equal(t, "BountyEscrow", cfg.Authorization.DomainName)
				assert.Equal(t, "1", cfg.Authorization.DomainVersion)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadOrchestratorConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadOrchestratorConfig_EnvOverride(t *testing.T) {
	t.Setenv("FF_BOUNTY_SETTLEMENT_PAYOUT_BATCH_SIZE", "3")
	t.Setenv("FF_BOUNTY_BRIDGE_API_KEY", "secret")

	cfg, err := LoadOrchestratorConfig(writeConfig(t, ""), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Settlement.PayoutBatchSize)
	assert.Equal(t, "secret", cfg.Bridge.APIKey)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "bounty", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=bounty sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/bounty?sslmode=disable", cfg.URL())
}
