package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// storedText is the table row of a record.
type storedText struct {
	ID        string `gorm:"primaryKey;size:36"`
	Batch     string `gorm:"index;size:36"`
	Position  int
	Text      string
	Label     string `gorm:"index"`
	CreatedAt time.Time
}

// TableName implements gorm's tabler interface.
func (storedText) TableName() string { return "texts" }

// insertBatchSize is the number of rows per INSERT statement.
const insertBatchSize = 500

// SQLiteStore keeps datasets in a SQLite database. Each call to Save adds a batch of records, so
// the inputs and outputs of several runs can share a database.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite database in filePath and migrates its schema.
func OpenSQLite(filePath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SQLite database %q", filePath)
	}
	if err = db.AutoMigrate(&storedText{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate SQLite database %q", filePath)
	}
	return &SQLiteStore{db: db}, nil
}

// Save appends records as a new batch and returns the batch id.
func (s *SQLiteStore) Save(ctx context.Context, records []Record) (batch string, err error) {
	batch = uuid.NewString()
	if len(records) == 0 {
		return batch, nil
	}
	now := time.Now()
	rows := make([]storedText, len(records))
	for ii, rec := range records {
		rows[ii] = storedText{
			ID:        uuid.NewString(),
			Batch:     batch,
			Position:  ii,
			Text:      rec.Text,
			Label:     rec.Label,
			CreatedAt: now,
		}
	}
	if err = s.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return "", errors.Wrapf(err, "failed to save %d records", len(records))
	}
	return batch, nil
}

// Load returns the records of batch, in the order they were saved. If batch is empty, it returns
// the records of all batches, oldest batch first.
func (s *SQLiteStore) Load(ctx context.Context, batch string) ([]Record, error) {
	query := s.db.WithContext(ctx).Model(&storedText{})
	if batch != "" {
		query = query.Where("batch = ?", batch)
	}
	var rows []storedText
	if err := query.Order("created_at").Order("batch").Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load batch %q", batch)
	}
	records := make([]Record, len(rows))
	for ii, row := range rows {
		records[ii] = Record{Text: row.Text, Label: row.Label}
	}
	return records, nil
}

// Batches returns the ids of the saved batches, oldest first.
func (s *SQLiteStore) Batches(ctx context.Context) ([]string, error) {
	var batches []string
	err := s.db.WithContext(ctx).Model(&storedText{}).
		Select("batch").Group("batch").Order("MIN(created_at)").
		Pluck("batch", &batches).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list batches")
	}
	return batches, nil
}

// Delete removes the records of batch.
func (s *SQLiteStore) Delete(ctx context.Context, batch string) error {
	err := s.db.WithContext(ctx).Where("batch = ?", batch).Delete(&storedText{}).Error
	return errors.Wrapf(err, "failed to delete batch %q", batch)
}

// Close the database.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get database handle")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close database")
}
