package service

import (
	"context"
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// Lo implementa internal/infra/storage.SessionRepo
type SessionRepo interface {
	Insert(ctx context.Context, s storage.ShiftSession) error
	GetOpen(ctx context.Context, guildID, userID string) (storage.ShiftSession, error)
	ListOpen(ctx context.Context) ([]storage.ShiftSession, error)
	ListOpenByGuild(ctx context.Context, guildID string) ([]storage.ShiftSession, error)
	MarkBreak(ctx context.Context, id string, at time.Time, auto bool) (bool, error)
	MarkAutoBreak(ctx context.Context, id string, at, idleSince time.Time) (bool, error)
	MarkResume(ctx context.Context, id string, at time.Time, addBreakSeconds int64) (bool, error)
	MarkEnded(ctx context.Context, id string, at time.Time, breakSeconds int64, autoClosed bool, reason, weekID string) (bool, error)
	Touch(ctx context.Context, guildID, userID string, at time.Time) error
	History(ctx context.Context, guildID, userID string, limit int) ([]storage.ShiftSession, error)
}

// Lo implementa internal/infra/storage.ConfigRepo
type ConfigRepo interface {
	Upsert(ctx context.Context, c storage.ShiftConfig) error
	Get(ctx context.Context, guildID, roleID, shiftType string) (storage.ShiftConfig, error)
	GetForRoles(ctx context.Context, guildID, shiftType string, roleIDs []string) (storage.ShiftConfig, error)
	ListByGuild(ctx context.Context, guildID string) ([]storage.ShiftConfig, error)
	Delete(ctx context.Context, guildID, roleID, shiftType string) (bool, error)
}

// Lo implementa internal/infra/storage.QuotaRepo
type QuotaRepo interface {
	Add(ctx context.Context, guildID, userID, shiftType, weekID string, seconds int64) error
	Total(ctx context.Context, guildID, userID, shiftType, weekID string) (int64, error)
	LeaderboardTotals(ctx context.Context, guildID, shiftType, weekID string, weekStart, weekEnd time.Time) ([]storage.LeaderboardRow, error)
}

// Notifier recibe las transiciones forzadas por el sweeper. La entrega
// (DM, canal, nada) es problema del que implementa; acá sólo se emite.
type Notifier interface {
	Notify(ctx context.Context, ev domain.AutoTransition)
}

// NopNotifier para tests y para correr sin Discord.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, domain.AutoTransition) {}
