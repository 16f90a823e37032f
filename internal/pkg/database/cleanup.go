package database

import (
	"context"
	"time"
)

// Cleanup removes backups older than retention. The newest backup of every
// device is always kept.
func (db *Database) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	const deleteSQL = `
	DELETE FROM config_backup
	WHERE created_at < $1
	AND id NOT IN (
		SELECT DISTINCT ON (device_id) id
		FROM config_backup
		ORDER BY device_id, created_at DESC, id DESC
	);
	`
	tag, err := db.pool.Exec(ctx, deleteSQL, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
