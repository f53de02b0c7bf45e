package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type chatHistoryRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;not null;index:idx_chat_history_user_ts,priority:1"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Response  string    `gorm:"column:response;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index:idx_chat_history_user_ts,priority:2"`
}

func (chatHistoryRow) TableName() string { return "chat_history" }

// Postgres persists exchanges to a PostgreSQL chat_history table, the
// schema the hosted deployment uses.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects with the given DSN and bootstraps the table.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := db.AutoMigrate(&chatHistoryRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate chat_history")
	}
	return &Postgres{db: db}, nil
}

// Append inserts one exchange row.
func (p *Postgres) Append(ctx context.Context, userID, message, response string, ts time.Time) error {
	row := chatHistoryRow{
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: ts,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	return nil
}

// List returns all rows for userID, oldest first.
func (p *Postgres) List(ctx context.Context, userID string) ([]Record, error) {
	var rows []chatHistoryRow
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, Record{
			UserID:    r.UserID,
			Message:   r.Message,
			Response:  r.Response,
			Timestamp: r.Timestamp,
		})
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
