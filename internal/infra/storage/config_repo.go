package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"
)

type ConfigRepo struct{ db *sql.DB }

func NewConfigRepo(db *sql.DB) *ConfigRepo { return &ConfigRepo{db: db} }

// Upsert por (guild, rol, tipo).
func (r *ConfigRepo) Upsert(ctx context.Context, c ShiftConfig) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO shift_configs
  (guild_id, role_id, shift_type, afk_timeout_seconds, weekly_quota_minutes)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id, role_id, shift_type) DO UPDATE SET
  afk_timeout_seconds  = EXCLUDED.afk_timeout_seconds,
  weekly_quota_minutes = EXCLUDED.weekly_quota_minutes,
  updated_at           = now()
`, c.GuildID, c.RoleID, c.ShiftType, c.AFKTimeoutSeconds, c.WeeklyQuotaMinutes)
	return err
}

func (r *ConfigRepo) Get(ctx context.Context, guildID, roleID, shiftType string) (ShiftConfig, error) {
	var c ShiftConfig
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, role_id, shift_type, afk_timeout_seconds, weekly_quota_minutes, created_at, updated_at
  FROM shift_configs
 WHERE guild_id = $1 AND role_id = $2 AND shift_type = $3
`, guildID, roleID, shiftType).Scan(
		&c.GuildID, &c.RoleID, &c.ShiftType, &c.AFKTimeoutSeconds, &c.WeeklyQuotaMinutes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return ShiftConfig{}, ErrNotFound
	}
	return c, err
}

// GetForRoles resuelve qué config aplica a un miembro con esos roles.
// Si varios roles tienen config para el mismo tipo, gana el umbral AFK más
// chico (determinístico, y el más estricto).
func (r *ConfigRepo) GetForRoles(ctx context.Context, guildID, shiftType string, roleIDs []string) (ShiftConfig, error) {
	if len(roleIDs) == 0 {
		return ShiftConfig{}, ErrNotFound
	}
	var c ShiftConfig
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, role_id, shift_type, afk_timeout_seconds, weekly_quota_minutes, created_at, updated_at
  FROM shift_configs
 WHERE guild_id = $1 AND shift_type = $2 AND role_id = ANY($3)
 ORDER BY afk_timeout_seconds ASC, role_id ASC
 LIMIT 1
`, guildID, shiftType, pq.Array(roleIDs)).Scan(
		&c.GuildID, &c.RoleID, &c.ShiftType, &c.AFKTimeoutSeconds, &c.WeeklyQuotaMinutes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return ShiftConfig{}, ErrNotFound
	}
	return c, err
}

func (r *ConfigRepo) ListByGuild(ctx context.Context, guildID string) ([]ShiftConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, role_id, shift_type, afk_timeout_seconds, weekly_quota_minutes, created_at, updated_at
  FROM shift_configs
 WHERE guild_id = $1
 ORDER BY shift_type, role_id
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftConfig
	for rows.Next() {
		var c ShiftConfig
		if err := rows.Scan(&c.GuildID, &c.RoleID, &c.ShiftType, &c.AFKTimeoutSeconds, &c.WeeklyQuotaMinutes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete quita la config hacia adelante; los turnos históricos no se tocan.
func (r *ConfigRepo) Delete(ctx context.Context, guildID, roleID, shiftType string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM shift_configs
 WHERE guild_id = $1 AND role_id = $2 AND shift_type = $3
`, guildID, roleID, shiftType)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
