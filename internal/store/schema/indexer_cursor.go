package schema

import "time"

// IndexerCursor stores the last projected position of one ledger source
type IndexerCursor struct {
	SourceKey string    `gorm:"column:source_key;primaryKey;type:text"`
	Position  string    `gorm:"column:position;not null;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

func (IndexerCursor) TableName() string {
	return "indexer_cursors"
}
