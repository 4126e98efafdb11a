package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns []string
}

// secondaryIndexes are the lookups the timeline and relationship pages rely on.
var secondaryIndexes = []index{
	{"messages", "idx_messages_user_timestamp", []string{"user_id", "timestamp"}},
	{"messages", "idx_messages_timestamp", []string{"timestamp"}},
	{"follows", "idx_follows_followed_follower", []string{"followed_id", "follower_id"}},
	{"likes", "idx_likes_message_user", []string{"message_id", "user_id"}},
}

// AddIndexes adds secondary indexes that AutoMigrate does not derive from tags.
func AddIndexes(db *gorm.DB) error {
	for _, idx := range secondaryIndexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table)
	}

	return nil
}
