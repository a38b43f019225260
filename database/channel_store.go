// database/channel_store.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/tapline/barmatrix/models"
)

// ChannelStore persists the per-input current-channel snapshot.
type ChannelStore struct{}

// SaveCurrentChannel upserts the snapshot row for one input.
func (ChannelStore) SaveCurrentChannel(ch models.CurrentChannel) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	_, err := DB.Exec(`
		INSERT INTO current_channels (
			input_number, channel_number, channel_name, device_type, last_tuned
		) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			channel_number = VALUES(channel_number),
			channel_name = VALUES(channel_name),
			device_type = VALUES(device_type),
			last_tuned = VALUES(last_tuned)
	`, ch.InputNumber, ch.ChannelNumber, ch.ChannelName, ch.DeviceType, ch.LastTuned)
	if err != nil {
		return fmt.Errorf("failed to upsert current channel for input %d: %w", ch.InputNumber, err)
	}
	return nil
}

// GetCurrentChannel returns the snapshot for one input, or nil if nothing
// has ever been tuned on it.
func (ChannelStore) GetCurrentChannel(inputNumber int) (*models.CurrentChannel, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var ch models.CurrentChannel
	var name, deviceType sql.NullString
	err := DB.QueryRow(`
		SELECT input_number, channel_number, channel_name, device_type, last_tuned
		FROM current_channels
		WHERE input_number = ?
	`, inputNumber).Scan(&ch.InputNumber, &ch.ChannelNumber, &name, &deviceType, &ch.LastTuned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query current channel for input %d: %w", inputNumber, err)
	}
	if name.Valid {
		ch.ChannelName = name.String
	}
	if deviceType.Valid {
		ch.DeviceType = deviceType.String
	}
	return &ch, nil
}
