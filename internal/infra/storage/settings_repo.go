package storage

import (
	"context"
	"database/sql"
)

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get devuelve la config del guild; si no existe crea la fila default.
func (r *SettingsRepo) Get(ctx context.Context, guildID string) (GuildSettings, error) {
	var g GuildSettings
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, shift_channel_id, report_channel_id, panel_channel_id, panel_message_id, created_at, updated_at
  FROM guild_settings
 WHERE guild_id = $1
`, guildID).Scan(&g.GuildID, &g.ShiftChannelID, &g.ReportChannelID, &g.PanelChannelID, &g.PanelMessageID, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id) VALUES ($1)
`, guildID)
		if err != nil {
			return GuildSettings{}, err
		}
		return r.Get(ctx, guildID)
	}
	return g, err
}

func (r *SettingsRepo) SetShiftChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id, shift_channel_id)
VALUES ($1,$2)
ON CONFLICT (guild_id) DO UPDATE SET
  shift_channel_id = EXCLUDED.shift_channel_id, updated_at = now()
`, guildID, channelID)
	return err
}

func (r *SettingsRepo) SetReportChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id, report_channel_id)
VALUES ($1,$2)
ON CONFLICT (guild_id) DO UPDATE SET
  report_channel_id = EXCLUDED.report_channel_id, updated_at = now()
`, guildID, channelID)
	return err
}

// SetPanel guarda dónde quedó publicado el panel de botones.
func (r *SettingsRepo) SetPanel(ctx context.Context, guildID, channelID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_settings (guild_id, panel_channel_id, panel_message_id)
VALUES ($1,$2,$3)
ON CONFLICT (guild_id) DO UPDATE SET
  panel_channel_id = EXCLUDED.panel_channel_id,
  panel_message_id = EXCLUDED.panel_message_id,
  updated_at       = now()
`, guildID, channelID, messageID)
	return err
}

// ListWithReportChannel: guilds que quieren el resumen semanal.
func (r *SettingsRepo) ListWithReportChannel(ctx context.Context) ([]GuildSettings, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, shift_channel_id, report_channel_id, panel_channel_id, panel_message_id, created_at, updated_at
  FROM guild_settings
 WHERE report_channel_id <> ''
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GuildSettings
	for rows.Next() {
		var g GuildSettings
		if err := rows.Scan(&g.GuildID, &g.ShiftChannelID, &g.ReportChannelID, &g.PanelChannelID, &g.PanelMessageID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
