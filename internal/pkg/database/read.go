package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const backupColumns = `id, device_id, ip_address, generation, firmware, document, created_at`

func (db *Database) GetLatestBackup(ctx context.Context, deviceID string) (Backup, error) {
	query := `
	SELECT ` + backupColumns + `
	FROM config_backup
	WHERE device_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT 1;
	`
	rows, err := db.pool.Query(ctx, query, deviceID)
	if err != nil {
		return Backup{}, err
	}
	backup, err := pgx.CollectExactlyOneRow(rows, scanBackup)
	if errors.Is(err, pgx.ErrNoRows) {
		return Backup{}, ErrNoBackup
	}
	return backup, err
}

// ListBackups returns the backups of a device, newest first.
func (db *Database) ListBackups(ctx context.Context, deviceID string) ([]Backup, error) {
	query := `
	SELECT ` + backupColumns + `
	FROM config_backup
	WHERE device_id = $1
	ORDER BY created_at DESC, id DESC;
	`
	rows, err := db.pool.Query(ctx, query, deviceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBackup)
}

func (db *Database) ListDevices(ctx context.Context) ([]Device, error) {
	const query = `
	SELECT id, name, ip_address, mac_address, firmware, generation, updated_at
	FROM device
	ORDER BY id;
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Device, error) {
		var d Device
		err := row.Scan(&d.ID, &d.Name, &d.IPAddress, &d.MACAddress, &d.Firmware, &d.Generation, &d.UpdatedAt)
		return d, err
	})
}

func scanBackup(row pgx.CollectableRow) (Backup, error) {
	var (
		b        Backup
		document string
	)
	if err := row.Scan(&b.ID, &b.DeviceID, &b.IPAddress, &b.Generation, &b.Firmware, &document, &b.CreatedAt); err != nil {
		return Backup{}, err
	}
	b.Document = []byte(document)
	return b, nil
}
