package storage

import (
	"context"
	"database/sql"
)

// NotifyRepo audita los intentos de aviso (DM de pausa/cierre automático).
// No bloquea nada: si el log falla, el aviso igual se considera hecho.
type NotifyRepo struct{ db *sql.DB }

func NewNotifyRepo(db *sql.DB) *NotifyRepo { return &NotifyRepo{db: db} }

func (r *NotifyRepo) Log(ctx context.Context, guildID, userID, kind string, ok bool, detail string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notify_log (guild_id, user_id, kind, ok, detail)
VALUES ($1,$2,$3,$4,$5)
`, guildID, userID, kind, ok, detail)
	return err
}
