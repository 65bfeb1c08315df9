package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// reloj controlado por el test
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// repos en memoria sobre los ports; mismas semánticas condicionales que los
// repos SQL (updates guardados por estado, índice de un-abierto-por-par).
type memSessions struct {
	mu     sync.Mutex
	m      map[string]storage.ShiftSession
	fail   map[string]error // id → error forzado en MarkAutoBreak/MarkEnded
	quotas *memQuotas       // MarkEnded acredita acá, como la transacción SQL
}

func newMemSessions() *memSessions {
	return &memSessions{m: map[string]storage.ShiftSession{}, fail: map[string]error{}}
}

func (r *memSessions) Insert(_ context.Context, s storage.ShiftSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.m {
		if cur.GuildID == s.GuildID && cur.UserID == s.UserID && cur.Status != domain.StatusEnded {
			return storage.ErrOpenSessionExists
		}
	}
	r.m[s.ID] = s
	return nil
}

func (r *memSessions) GetOpen(_ context.Context, guildID, userID string) (storage.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.m {
		if cur.GuildID == guildID && cur.UserID == userID && cur.Status != domain.StatusEnded {
			return cur, nil
		}
	}
	return storage.ShiftSession{}, storage.ErrNotFound
}

func (r *memSessions) list(filter func(storage.ShiftSession) bool) []storage.ShiftSession {
	var out []storage.ShiftSession
	for _, cur := range r.m {
		if filter(cur) {
			out = append(out, cur)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (r *memSessions) ListOpen(context.Context) ([]storage.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(s storage.ShiftSession) bool { return s.Status != domain.StatusEnded }), nil
}

func (r *memSessions) ListOpenByGuild(_ context.Context, guildID string) ([]storage.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(s storage.ShiftSession) bool {
		return s.GuildID == guildID && s.Status != domain.StatusEnded
	}), nil
}

func (r *memSessions) MarkBreak(_ context.Context, id string, at time.Time, auto bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok || s.Status != domain.StatusActive {
		return false, nil
	}
	s.Status = domain.StatusBreak
	s.BreakStartedAt = &at
	s.BreakAuto = auto
	r.m[id] = s
	return true, nil
}

func (r *memSessions) MarkAutoBreak(_ context.Context, id string, at, idleSince time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[id]; err != nil {
		return false, err
	}
	s, ok := r.m[id]
	if !ok || s.Status != domain.StatusActive || s.LastTouchAt.After(idleSince) {
		return false, nil
	}
	s.Status = domain.StatusBreak
	s.BreakStartedAt = &at
	s.BreakAuto = true
	r.m[id] = s
	return true, nil
}

func (r *memSessions) MarkResume(_ context.Context, id string, at time.Time, addBreakSeconds int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok || s.Status != domain.StatusBreak {
		return false, nil
	}
	s.Status = domain.StatusActive
	s.BreakStartedAt = nil
	s.BreakAuto = false
	s.BreakSeconds += addBreakSeconds
	s.LastTouchAt = at
	r.m[id] = s
	return true, nil
}

// MarkEnded replica la transacción real: el fallo inyectado deja el turno
// abierto y sin crédito; el éxito cierra y acredita, todo o nada.
func (r *memSessions) MarkEnded(_ context.Context, id string, at time.Time, breakSeconds int64, autoClosed bool, reason, weekID string) (bool, error) {
	r.mu.Lock()
	if err := r.fail[id]; err != nil {
		r.mu.Unlock()
		return false, err
	}
	s, ok := r.m[id]
	if !ok || s.Status == domain.StatusEnded {
		r.mu.Unlock()
		return false, nil
	}
	s.Status = domain.StatusEnded
	s.EndedAt = &at
	s.BreakStartedAt = nil
	s.BreakSeconds = breakSeconds
	s.AutoClosed = autoClosed
	s.EndReason = reason
	r.m[id] = s
	r.mu.Unlock()

	if active := s.ActiveSeconds(); active > 0 {
		return true, r.quotas.Add(context.Background(), s.GuildID, s.UserID, s.ShiftType, weekID, active)
	}
	return true, nil
}

func (r *memSessions) Touch(_ context.Context, guildID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.m {
		if s.GuildID == guildID && s.UserID == userID &&
			s.Status == domain.StatusActive && s.LastTouchAt.Before(at) {
			s.LastTouchAt = at
			r.m[id] = s
		}
	}
	return nil
}

func (r *memSessions) History(_ context.Context, guildID, userID string, limit int) ([]storage.ShiftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list(func(s storage.ShiftSession) bool {
		return s.GuildID == guildID && s.UserID == userID && s.Status == domain.StatusEnded
	})
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type memConfigs struct {
	mu sync.Mutex
	m  map[string]storage.ShiftConfig // guild|role|type
}

func newMemConfigs() *memConfigs { return &memConfigs{m: map[string]storage.ShiftConfig{}} }

func cfgKey(guildID, roleID, shiftType string) string {
	return guildID + "|" + roleID + "|" + shiftType
}

func (r *memConfigs) Upsert(_ context.Context, c storage.ShiftConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[cfgKey(c.GuildID, c.RoleID, c.ShiftType)] = c
	return nil
}

func (r *memConfigs) Get(_ context.Context, guildID, roleID, shiftType string) (storage.ShiftConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[cfgKey(guildID, roleID, shiftType)]
	if !ok {
		return storage.ShiftConfig{}, storage.ErrNotFound
	}
	return c, nil
}

func (r *memConfigs) GetForRoles(_ context.Context, guildID, shiftType string, roleIDs []string) (storage.ShiftConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *storage.ShiftConfig
	for _, rid := range roleIDs {
		if c, ok := r.m[cfgKey(guildID, rid, shiftType)]; ok {
			cc := c
			if best == nil || cc.AFKTimeoutSeconds < best.AFKTimeoutSeconds {
				best = &cc
			}
		}
	}
	if best == nil {
		return storage.ShiftConfig{}, storage.ErrNotFound
	}
	return *best, nil
}

func (r *memConfigs) ListByGuild(_ context.Context, guildID string) ([]storage.ShiftConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []storage.ShiftConfig
	for k, c := range r.m {
		if strings.HasPrefix(k, guildID+"|") {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleID < out[j].RoleID })
	return out, nil
}

func (r *memConfigs) Delete(_ context.Context, guildID, roleID, shiftType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := cfgKey(guildID, roleID, shiftType)
	if _, ok := r.m[k]; !ok {
		return false, nil
	}
	delete(r.m, k)
	return true, nil
}

type memQuotas struct {
	mu       sync.Mutex
	m        map[string]int64 // guild|user|type|week
	sessions *memSessions     // para el first_start del desempate
}

func newMemQuotas(sessions *memSessions) *memQuotas {
	return &memQuotas{m: map[string]int64{}, sessions: sessions}
}

func quotaKey(guildID, userID, shiftType, weekID string) string {
	return guildID + "|" + userID + "|" + shiftType + "|" + weekID
}

func (r *memQuotas) Add(_ context.Context, guildID, userID, shiftType, weekID string, seconds int64) error {
	if seconds <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[quotaKey(guildID, userID, shiftType, weekID)] += seconds
	return nil
}

func (r *memQuotas) Total(_ context.Context, guildID, userID, shiftType, weekID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[quotaKey(guildID, userID, shiftType, weekID)], nil
}

func (r *memQuotas) LeaderboardTotals(_ context.Context, guildID, shiftType, weekID string, weekStart, weekEnd time.Time) ([]storage.LeaderboardRow, error) {
	r.mu.Lock()
	totals := map[string]int64{}
	for k, secs := range r.m {
		parts := strings.Split(k, "|")
		if parts[0] != guildID || parts[3] != weekID {
			continue
		}
		if shiftType != "" && parts[2] != shiftType {
			continue
		}
		totals[parts[1]] += secs
	}
	r.mu.Unlock()

	// como el subquery real: un first_start por usuario, agregado ANTES de
	// cruzarlo con el acumulador (varias sesiones nunca multiplican totales)
	firstStart := map[string]time.Time{}
	r.sessions.mu.Lock()
	for _, s := range r.sessions.m {
		if s.GuildID != guildID {
			continue
		}
		if s.StartedAt.Before(weekStart) || !s.StartedAt.Before(weekEnd) {
			continue
		}
		if cur, ok := firstStart[s.UserID]; !ok || s.StartedAt.Before(cur) {
			firstStart[s.UserID] = s.StartedAt
		}
	}
	r.sessions.mu.Unlock()

	var out []storage.LeaderboardRow
	for uid, total := range totals {
		row := storage.LeaderboardRow{UserID: uid, TotalSeconds: total}
		if fs, ok := firstStart[uid]; ok {
			t := fs
			row.FirstStart = &t
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalSeconds > out[j].TotalSeconds })
	return out, nil
}

// notifier que vuelve a entrar al engine: Touch toma el mismo lock del par,
// así que sólo funciona si el sweeper notifica con el lock ya soltado
type lockingNotifier struct {
	shift *ShiftService
	clk   *testClock
	calls atomic.Int64
}

func (n *lockingNotifier) Notify(ctx context.Context, ev domain.AutoTransition) {
	n.calls.Add(1)
	_ = n.shift.Touch(ctx, ev.GuildID, ev.UserID, n.clk.now())
}

// notifier que acumula eventos
type memNotifier struct {
	mu     sync.Mutex
	events []domain.AutoTransition
}

func (n *memNotifier) Notify(_ context.Context, ev domain.AutoTransition) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *memNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// mondayT0: lunes 00:00:00 en la zona de asistencia GMT+8
func mondayT0() time.Time {
	return time.Date(2026, time.January, 5, 0, 0, 0, 0, domain.AttendanceZone(8))
}

type fixture struct {
	clock    *testClock
	sessions *memSessions
	configs  *memConfigs
	quotas   *memQuotas
	shift    *ShiftService
	quota    *QuotaService
	notifier *memNotifier
	sweeper  *Sweeper
}

func newFixture(start time.Time) *fixture {
	clk := &testClock{t: start}
	sessions := newMemSessions()
	configs := newMemConfigs()
	quotas := newMemQuotas(sessions)
	sessions.quotas = quotas
	clock := Clock{NowFn: clk.now, OffsetHours: 8}
	shift := NewShiftService(sessions, configs, clock)
	notifier := &memNotifier{}
	return &fixture{
		clock:    clk,
		sessions: sessions,
		configs:  configs,
		quotas:   quotas,
		shift:    shift,
		quota:    NewQuotaService(sessions, configs, quotas, clock),
		notifier: notifier,
		sweeper:  NewSweeper(shift, configs, notifier, 300*time.Second),
	}
}
