package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// QuotaService es proyección de solo lectura sobre turnos y acumuladores.
// Nunca muta sesiones: el tiempo provisional de un turno abierto se calcula
// al vuelo y no se persiste hasta el cierre.
type QuotaService struct {
	sessions SessionRepo
	configs  ConfigRepo
	quotas   QuotaRepo
	clock    Clock
}

func NewQuotaService(sessions SessionRepo, configs ConfigRepo, quotas QuotaRepo, clock Clock) *QuotaService {
	return &QuotaService{sessions: sessions, configs: configs, quotas: quotas, clock: clock}
}

type QuotaStatus struct {
	ShiftType string
	WeekID    string
	Tracked   bool // hay config (sin config la cuota no se trackea, no es error)
	Required  time.Duration
	Completed time.Duration
	Remaining time.Duration
	MetQuota  bool
}

type LeaderboardEntry struct {
	UserID     string
	Total      time.Duration
	FirstStart time.Time // inicio del turno más viejo de la semana (desempate)
	OnShift    bool
}

// provisionalSeconds: aporte de un turno abierto, como si cerrara ahora.
// En pausa, la pausa abierta también se descuenta.
func provisionalSeconds(sess storage.ShiftSession, now time.Time) int64 {
	if sess.Status == domain.StatusEnded {
		return 0
	}
	n := int64(now.Sub(sess.StartedAt).Seconds()) - sess.BreakSeconds
	if sess.Status == domain.StatusBreak && sess.BreakStartedAt != nil {
		n -= int64(now.Sub(*sess.BreakStartedAt).Seconds())
	}
	if n < 0 {
		n = 0
	}
	return n
}

// WeeklyTotal: total cerrado de la semana + provisional del turno abierto
// si la semana pedida es la actual.
func (q *QuotaService) WeeklyTotal(ctx context.Context, guildID, userID, shiftType, weekID string) (time.Duration, error) {
	now := q.clock.Now()
	if weekID == "" {
		weekID = q.clock.WeekID(now)
	}
	total, err := q.quotas.Total(ctx, guildID, userID, shiftType, weekID)
	if err != nil {
		return 0, err
	}

	if weekID == q.clock.WeekID(now) {
		sess, err := q.sessions.GetOpen(ctx, guildID, userID)
		switch {
		case err == nil:
			if shiftType == "" || sess.ShiftType == shiftType {
				total += provisionalSeconds(sess, now)
			}
		case !errors.Is(err, storage.ErrNotFound):
			return 0, err
		}
	}
	return time.Duration(total) * time.Second, nil
}

// Status arma {required, completed, remaining, met} para la semana en curso.
// Sin config para los roles del miembro, la cuota queda sin trackear.
func (q *QuotaService) Status(ctx context.Context, guildID, userID, shiftType string, roleIDs []string) (QuotaStatus, error) {
	now := q.clock.Now()
	st := QuotaStatus{ShiftType: shiftType, WeekID: q.clock.WeekID(now)}

	completed, err := q.WeeklyTotal(ctx, guildID, userID, shiftType, st.WeekID)
	if err != nil {
		return QuotaStatus{}, err
	}
	st.Completed = completed

	cfg, err := q.configs.GetForRoles(ctx, guildID, shiftType, roleIDs)
	if errors.Is(err, storage.ErrNotFound) {
		return st, nil // Tracked=false
	}
	if err != nil {
		return QuotaStatus{}, err
	}

	st.Tracked = true
	st.Required = time.Duration(cfg.WeeklyQuotaMinutes) * time.Minute
	st.MetQuota = st.Completed >= st.Required
	if st.Remaining = st.Required - st.Completed; st.Remaining < 0 {
		st.Remaining = 0
	}
	return st, nil
}

// Leaderboard de una semana: cerrado + provisional si la semana es la actual,
// orden total desc, empates por el turno más viejo de la semana y después por
// user ID. Nunca por orden de storage. weekID vacío = semana en curso.
func (q *QuotaService) Leaderboard(ctx context.Context, guildID, shiftType, weekID string, topN int) ([]LeaderboardEntry, error) {
	now := q.clock.Now()
	current := q.clock.WeekID(now)
	if weekID == "" {
		weekID = current
	}
	weekStart, weekEnd, err := q.clock.ParseWeekID(weekID)
	if err != nil {
		return nil, ErrInvalidWeek
	}

	rows, err := q.quotas.LeaderboardTotals(ctx, guildID, shiftType, weekID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*LeaderboardEntry, len(rows))
	for _, r := range rows {
		e := &LeaderboardEntry{UserID: r.UserID, Total: time.Duration(r.TotalSeconds) * time.Second}
		if r.FirstStart != nil {
			e.FirstStart = *r.FirstStart
		}
		byUser[r.UserID] = e
	}

	// los turnos abiertos sólo aportan a la semana en curso
	if weekID == current {
		open, err := q.sessions.ListOpenByGuild(ctx, guildID)
		if err != nil {
			return nil, err
		}
		for _, sess := range open {
			if shiftType != "" && sess.ShiftType != shiftType {
				continue
			}
			e, ok := byUser[sess.UserID]
			if !ok {
				e = &LeaderboardEntry{UserID: sess.UserID}
				byUser[sess.UserID] = e
			}
			e.OnShift = true
			e.Total += time.Duration(provisionalSeconds(sess, now)) * time.Second
			if !sess.StartedAt.Before(weekStart) && (e.FirstStart.IsZero() || sess.StartedAt.Before(e.FirstStart)) {
				e.FirstStart = sess.StartedAt
			}
		}
	}

	out := make([]LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		fi, fj := out[i].FirstStart, out[j].FirstStart
		if !fi.Equal(fj) {
			if fi.IsZero() {
				return false
			}
			if fj.IsZero() {
				return true
			}
			return fi.Before(fj)
		}
		return out[i].UserID < out[j].UserID
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// PreviousWeekReport: ranking cerrado de la semana anterior (al ser una
// semana pasada, no hay provisional que sumar). Lo consume el reporte del
// lunes.
func (q *QuotaService) PreviousWeekReport(ctx context.Context, guildID, shiftType string) ([]LeaderboardEntry, string, error) {
	weekStart, _ := q.clock.WeekBounds(q.clock.Now())
	weekID := q.clock.WeekID(weekStart.AddDate(0, 0, -7))
	entries, err := q.Leaderboard(ctx, guildID, shiftType, weekID, 0)
	return entries, weekID, err
}
