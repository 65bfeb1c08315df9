package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// ErrOpenSessionExists: chocamos contra el índice único de turnos abiertos.
var ErrOpenSessionExists = errors.New("open session exists")

type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionCols = `id, guild_id, user_id, role_id, shift_type, status, started_at, ended_at,
       last_touch_at, break_started_at, break_seconds, break_auto, auto_closed, end_reason`

func scanSession(row interface{ Scan(...any) error }) (ShiftSession, error) {
	var s ShiftSession
	err := row.Scan(&s.ID, &s.GuildID, &s.UserID, &s.RoleID, &s.ShiftType, &s.Status,
		&s.StartedAt, &s.EndedAt, &s.LastTouchAt, &s.BreakStartedAt,
		&s.BreakSeconds, &s.BreakAuto, &s.AutoClosed, &s.EndReason)
	return s, err
}

// Insert crea el turno en 'active'. Si ya hay uno abierto para ese
// (guild, user) el índice parcial lo rechaza y devolvemos ErrOpenSessionExists,
// así dos clock-in concurrentes nunca ganan los dos.
func (r *SessionRepo) Insert(ctx context.Context, s ShiftSession) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO shift_sessions
  (id, guild_id, user_id, role_id, shift_type, status, started_at, last_touch_at)
VALUES ($1,$2,$3,$4,$5,'active',$6,$7)
`, s.ID, s.GuildID, s.UserID, s.RoleID, s.ShiftType, s.StartedAt, s.LastTouchAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrOpenSessionExists
	}
	return err
}

// GetOpen devuelve el turno abierto (active o break) de un usuario.
func (r *SessionRepo) GetOpen(ctx context.Context, guildID, userID string) (ShiftSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `
SELECT `+sessionCols+`
  FROM shift_sessions
 WHERE guild_id = $1 AND user_id = $2 AND status <> 'ended'
`, guildID, userID))
	if err == sql.ErrNoRows {
		return ShiftSession{}, ErrNotFound
	}
	return s, err
}

// ListOpen enumera todos los turnos abiertos (el sweeper recorre esto).
func (r *SessionRepo) ListOpen(ctx context.Context) ([]ShiftSession, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionCols+`
  FROM shift_sessions
 WHERE status <> 'ended'
 ORDER BY started_at ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListOpenByGuild: turnos abiertos de un guild (para /statusz y reportes).
func (r *SessionRepo) ListOpenByGuild(ctx context.Context, guildID string) ([]ShiftSession, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionCols+`
  FROM shift_sessions
 WHERE guild_id = $1 AND status <> 'ended'
 ORDER BY started_at ASC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountOpen: cantidad de turnos abiertos (probe de /statusz).
func (r *SessionRepo) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM shift_sessions WHERE status <> 'ended'
`).Scan(&n)
	return n, err
}

// MarkBreak pasa active → break. El WHERE sobre status hace de CAS: si otro
// ya movió el turno, no afecta filas y devolvemos false.
func (r *SessionRepo) MarkBreak(ctx context.Context, id string, at time.Time, auto bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE shift_sessions
   SET status = 'break', break_started_at = $2, break_auto = $3
 WHERE id = $1 AND status = 'active'
`, id, at, auto)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkAutoBreak: variante del sweeper. Además del estado exige que el último
// touch siga siendo viejo, por si el usuario volvió entre el scan y el update
// (o lo tocó otro proceso).
func (r *SessionRepo) MarkAutoBreak(ctx context.Context, id string, at, idleSince time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE shift_sessions
   SET status = 'break', break_started_at = $2, break_auto = TRUE
 WHERE id = $1 AND status = 'active' AND last_touch_at <= $3
`, id, at, idleSince)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkResume pasa break → active y acumula la pausa que se cierra.
func (r *SessionRepo) MarkResume(ctx context.Context, id string, at time.Time, addBreakSeconds int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE shift_sessions
   SET status = 'active', break_started_at = NULL, break_auto = FALSE,
       break_seconds = break_seconds + $3, last_touch_at = $2
 WHERE id = $1 AND status = 'break'
`, id, at, addBreakSeconds)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkEnded cierra el turno desde cualquier estado abierto y acredita el
// tiempo activo al acumulador de la semana, en la misma transacción: o el
// turno queda cerrado con su crédito sumado, o queda abierto y se reintenta.
// Un cierre que dejara el turno en 'ended' sin acreditar sería irrecuperable
// (nada vuelve a pasar por un turno cerrado).
func (r *SessionRepo) MarkEnded(ctx context.Context, id string, at time.Time, breakSeconds int64, autoClosed bool, reason, weekID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var guildID, userID, shiftType string
	var startedAt time.Time
	err = tx.QueryRowContext(ctx, `
UPDATE shift_sessions
   SET status = 'ended', ended_at = $2, break_started_at = NULL,
       break_seconds = $3, auto_closed = $4, end_reason = $5
 WHERE id = $1 AND status <> 'ended'
 RETURNING guild_id, user_id, shift_type, started_at
`, id, at, breakSeconds, autoClosed, reason).Scan(&guildID, &userID, &shiftType, &startedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if active := int64(at.Sub(startedAt).Seconds()) - breakSeconds; active > 0 {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO quota_weeks (guild_id, user_id, shift_type, week_id, total_seconds)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id, user_id, shift_type, week_id) DO UPDATE SET
  total_seconds = quota_weeks.total_seconds + EXCLUDED.total_seconds
`, guildID, userID, shiftType, weekID, active); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// Touch refresca last_touch_at sólo si el turno sigue activo y el timestamp
// es más nuevo que el guardado (señales fuera de orden se ignoran).
func (r *SessionRepo) Touch(ctx context.Context, guildID, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE shift_sessions
   SET last_touch_at = $3
 WHERE guild_id = $1 AND user_id = $2
   AND status = 'active'
   AND last_touch_at < $3
`, guildID, userID, at)
	return err
}

// History: últimos turnos cerrados de un usuario.
func (r *SessionRepo) History(ctx context.Context, guildID, userID string, limit int) ([]ShiftSession, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionCols+`
  FROM shift_sessions
 WHERE guild_id = $1 AND user_id = $2 AND status = 'ended'
 ORDER BY ended_at DESC
 LIMIT $3
`, guildID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
