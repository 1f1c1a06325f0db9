package catalog

import (
	"database/sql"
	"errors"
)

// GetSetting returns the stored value for key, or nil when the key is unset.
func (c *Catalog) GetSetting(key string) (*string, error) {
	var value sql.NullString
	err := c.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return NullStringToPtr(value), nil
}

// SetSetting upserts a key/value pair.
func (c *Catalog) SetSetting(key, value string) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}
