package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
	"github.com/feral-file/ff-bounty-ledger/internal/store/schema"
)

type pgStore struct {
	db   *gorm.DB
	inTx bool
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	maxIdleConns = min(maxIdleConns, maxOpenConns)

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Transaction runs fn inside a database transaction. Rows read through tx are locked FOR UPDATE.
func (s *pgStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx, inTx: true})
	})
}

// locked returns a query builder that takes row locks when running inside a transaction
func (s *pgStore) locked(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// GetBounty retrieves a bounty by its on-chain id
func (s *pgStore) GetBounty(ctx context.Context, id string) (*schema.Bounty, error) {
	var bounty schema.Bounty
	err := s.locked(ctx).Where("id = ?", id).First(&bounty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bounty: %w", err)
	}
	return &bounty, nil
}

// SaveBounty inserts or overwrites a bounty
func (s *pgStore) SaveBounty(ctx context.Context, bounty *schema.Bounty) error {
	if err := s.db.WithContext(ctx).Save(bounty).Error; err != nil {
		return fmt.Errorf("failed to save bounty: %w", err)
	}
	return nil
}

// GetBountyAsset retrieves the counters of one token of a bounty
func (s *pgStore) GetBountyAsset(ctx context.Context, bountyID, token string) (*schema.BountyAsset, error) {
	var asset schema.BountyAsset
	err := s.locked(ctx).
		Where("bounty_id = ? AND token = ?", bountyID, token).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bounty asset: %w", err)
	}
	return &asset, nil
}

// ListBountyAssets retrieves every token of a bounty
func (s *pgStore) ListBountyAssets(ctx context.Context, bountyID string) ([]schema.BountyAsset, error) {
	var assets []schema.BountyAsset
	err := s.db.WithContext(ctx).
		Where("bounty_id = ?", bountyID).
		Order("token ASC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bounty assets: %w", err)
	}
	return assets, nil
}

// SaveBountyAsset inserts or overwrites the counters of one token of a bounty
func (s *pgStore) SaveBountyAsset(ctx context.Context, asset *schema.BountyAsset) error {
	if err := s.db.WithContext(ctx).Save(asset).Error; err != nil {
		return fmt.Errorf("failed to save bounty asset: %w", err)
	}
	return nil
}

// GetRecord retrieves a funding/claim/payout/refund record by dedup key
func (s *pgStore) GetRecord(ctx context.Context, kind schema.RecordKind, dedupKey string) (*schema.LedgerRecord, error) {
	var record schema.LedgerRecord
	err := s.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("dedup_key = ?", dedupKey).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s record: %w", kind, err)
	}
	record.Kind = kind
	return &record, nil
}

// ListRecords retrieves the records of a bounty, oldest first
func (s *pgStore) ListRecords(ctx context.Context, kind schema.RecordKind, bountyID string) ([]schema.LedgerRecord, error) {
	var records []schema.LedgerRecord
	err := s.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("bounty_id = ?", bountyID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	for i := range records {
		records[i].Kind = kind
	}
	return records, nil
}

// UpsertRecord inserts a record keyed by dedup key. On conflict only the descriptive
// columns are refreshed: bounty, token and amount of an existing record never change.
func (s *pgStore) UpsertRecord(ctx context.Context, record *schema.LedgerRecord) (bool, error) {
	if record.Raw == nil {
		record.Raw = []byte("{}")
	}

	result := s.db.WithContext(ctx).
		Table(record.Kind.TableName()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert %s record: %w", record.Kind, result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	err := s.db.WithContext(ctx).
		Table(record.Kind.TableName()).
		Where("dedup_key = ?", record.DedupKey).
		Updates(map[string]any{
			"actor":      record.Actor,
			"url":        record.URL,
			"source_key": record.SourceKey,
			"tx_id":      record.TxID,
			"raw":        record.Raw,
			"updated_at": gorm.Expr("now()"),
		}).Error
	if err != nil {
		return false, fmt.Errorf("failed to refresh %s record: %w", record.Kind, err)
	}

	return false, nil
}

// GetCursor retrieves the persisted position of a source, empty when none exists
func (s *pgStore) GetCursor(ctx context.Context, source domain.SourceKey) (domain.Cursor, error) {
	var cursor schema.IndexerCursor
	err := s.db.WithContext(ctx).Where("source_key = ?", string(source)).First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get cursor: %w", err)
	}
	return domain.Cursor(cursor.Position), nil
}

// SaveCursor stores the position of a source
func (s *pgStore) SaveCursor(ctx context.Context, source domain.SourceKey, cursor domain.Cursor) error {
	row := schema.IndexerCursor{
		SourceKey: string(source),
		Position:  string(cursor),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

// GetFundingIntent retrieves a funding intent, locking it for the rest of the transaction
func (s *pgStore) GetFundingIntent(ctx context.Context, id string) (*schema.TreasuryFundingIntent, error) {
	var intent schema.TreasuryFundingIntent
	err := s.locked(ctx).Where("id = ?", id).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get funding intent: %w", err)
	}
	return &intent, nil
}

// SaveFundingIntent inserts or overwrites a funding intent
func (s *pgStore) SaveFundingIntent(ctx context.Context, intent *schema.TreasuryFundingIntent) error {
	if err := s.db.WithContext(ctx).Save(intent).Error; err != nil {
		return fmt.Errorf("failed to save funding intent: %w", err)
	}
	return nil
}

// ListFundingIntents retrieves funding intents in a status, oldest first
func (s *pgStore) ListFundingIntents(ctx context.Context, status schema.FundingIntentStatus, limit int) ([]schema.TreasuryFundingIntent, error) {
	var intents []schema.TreasuryFundingIntent
	q := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&intents).Error; err != nil {
		return nil, fmt.Errorf("failed to list funding intents: %w", err)
	}
	return intents, nil
}

// GetPayoutIntent retrieves a payout intent, locking it for the rest of the transaction
func (s *pgStore) GetPayoutIntent(ctx context.Context, id string) (*schema.TreasuryPayoutIntent, error) {
	var intent schema.TreasuryPayoutIntent
	err := s.locked(ctx).Where("id = ?", id).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payout intent: %w", err)
	}
	return &intent, nil
}

// SavePayoutIntent inserts or overwrites a payout intent
func (s *pgStore) SavePayoutIntent(ctx context.Context, intent *schema.TreasuryPayoutIntent) error {
	if err := s.db.WithContext(ctx).Save(intent).Error; err != nil {
		return fmt.Errorf("failed to save payout intent: %w", err)
	}
	return nil
}

// ListPayoutIntents retrieves payout intents in a status, oldest first
func (s *pgStore) ListPayoutIntents(ctx context.Context, status schema.PayoutIntentStatus, limit int) ([]schema.TreasuryPayoutIntent, error) {
	var intents []schema.TreasuryPayoutIntent
	q := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&intents).Error; err != nil {
		return nil, fmt.Errorf("failed to list payout intents: %w", err)
	}
	return intents, nil
}

// GetTreasuryLedger retrieves the treasury balance row of a bounty
func (s *pgStore) GetTreasuryLedger(ctx context.Context, bountyID string) (*schema.TreasuryBountyLedger, error) {
	var ledger schema.TreasuryBountyLedger
	err := s.locked(ctx).Where("bounty_id = ?", bountyID).First(&ledger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get treasury ledger: %w", err)
	}
	return &ledger, nil
}

// SaveTreasuryLedger inserts or overwrites the treasury balance row of a bounty
func (s *pgStore) SaveTreasuryLedger(ctx context.Context, ledger *schema.TreasuryBountyLedger) error {
	if err := s.db.WithContext(ctx).Save(ledger).Error; err != nil {
		return fmt.Errorf("failed to save treasury ledger: %w", err)
	}
	return nil
}
