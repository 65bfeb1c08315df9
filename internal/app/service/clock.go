package service

import (
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
)

// Clock es la única fuente de "ahora" del engine. NowFn se inyecta en tests;
// en producción queda nil y usamos la hora real. El offset ancla los límites
// de semana (un solo offset para todo el deploy, ver domain).
type Clock struct {
	NowFn       func() time.Time
	OffsetHours int
}

func (c Clock) Now() time.Time {
	if c.NowFn != nil {
		return c.NowFn()
	}
	return time.Now()
}

func (c Clock) WeekID(t time.Time) string {
	return domain.WeekID(t, c.OffsetHours)
}

func (c Clock) WeekBounds(t time.Time) (time.Time, time.Time) {
	return domain.WeekBounds(t, c.OffsetHours)
}

func (c Clock) ParseWeekID(weekID string) (time.Time, time.Time, error) {
	return domain.ParseWeekID(weekID, c.OffsetHours)
}
