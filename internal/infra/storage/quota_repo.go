package storage

import (
	"context"
	"database/sql"
	"time"
)

type QuotaRepo struct{ db *sql.DB }

func NewQuotaRepo(db *sql.DB) *QuotaRepo { return &QuotaRepo{db: db} }

// Add suma segundos al acumulador semanal. Sólo suma: el acumulador nunca
// baja dentro de una semana, se "resetea" porque cambia el week_id.
func (r *QuotaRepo) Add(ctx context.Context, guildID, userID, shiftType, weekID string, seconds int64) error {
	if seconds <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO quota_weeks (guild_id, user_id, shift_type, week_id, total_seconds)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id, user_id, shift_type, week_id) DO UPDATE SET
  total_seconds = quota_weeks.total_seconds + EXCLUDED.total_seconds
`, guildID, userID, shiftType, weekID, seconds)
	return err
}

// Total de una semana para un usuario. Sin fila = 0, no es error.
func (r *QuotaRepo) Total(ctx context.Context, guildID, userID, shiftType, weekID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
SELECT total_seconds
  FROM quota_weeks
 WHERE guild_id = $1 AND user_id = $2 AND shift_type = $3 AND week_id = $4
`, guildID, userID, shiftType, weekID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// LeaderboardTotals: totales cerrados de la semana por usuario, con el inicio
// del turno más viejo de esa semana para desempatar en orden estable.
// [weekStart, weekEnd) viene del reloj de asistencia. El desempate se agrega
// en un subquery aparte (una fila por usuario) para que el join no duplique
// las filas del acumulador cuando alguien cerró varios turnos en la semana.
func (r *QuotaRepo) LeaderboardTotals(ctx context.Context, guildID, shiftType, weekID string, weekStart, weekEnd time.Time) ([]LeaderboardRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT q.user_id,
       SUM(q.total_seconds) AS total,
       MIN(s.first_start)   AS first_start
  FROM quota_weeks q
  LEFT JOIN (
        SELECT guild_id, user_id, MIN(started_at) AS first_start
          FROM shift_sessions
         WHERE started_at >= $4 AND started_at < $5
         GROUP BY guild_id, user_id
       ) s
    ON s.guild_id = q.guild_id AND s.user_id = q.user_id
 WHERE q.guild_id = $1
   AND ($2 = '' OR q.shift_type = $2)
   AND q.week_id = $3
 GROUP BY q.user_id
 ORDER BY total DESC, first_start ASC NULLS LAST
`, guildID, shiftType, weekID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var lr LeaderboardRow
		if err := rows.Scan(&lr.UserID, &lr.TotalSeconds, &lr.FirstStart); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
