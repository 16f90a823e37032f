package database

import (
	"context"

	"github.com/anicoll/buttonplus-integration/internal/pkg/model"
)

// WriteBackup stores b and returns it with its id and creation time set.
func (db *Database) WriteBackup(ctx context.Context, b Backup) (Backup, error) {
	const insertSQL = `
	INSERT INTO config_backup (device_id, ip_address, generation, firmware, document)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`
	row := db.pool.QueryRow(ctx, insertSQL, b.DeviceID, b.IPAddress, b.Generation, b.Firmware, string(b.Document))
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return Backup{}, err
	}
	return b, nil
}

// RegisterDevice records a provisioned device, replacing what was known about it.
func (db *Database) RegisterDevice(ctx context.Context, cfg model.DeviceConfiguration) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO device (id, name, ip_address, mac_address, firmware, generation, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			ip_address = EXCLUDED.ip_address,
			mac_address = EXCLUDED.mac_address,
			firmware = EXCLUDED.firmware,
			generation = EXCLUDED.generation,
			updated_at = EXCLUDED.updated_at;`,
		cfg.Identifier(), cfg.Name(), cfg.IPAddress(), cfg.MACAddress(), cfg.FirmwareVersion().String(), cfg.Generation())
	return err
}
