package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

func seedConfig(t *testing.T, f *fixture, afkSeconds int) {
	t.Helper()
	require.NoError(t, f.configs.Upsert(context.Background(), storage.ShiftConfig{
		GuildID: "g1", RoleID: "r-mod", ShiftType: "regular",
		AFKTimeoutSeconds: afkSeconds, WeeklyQuotaMinutes: 600,
	}))
}

// inactividad >= afkTimeout → pausa automática + notificación
func TestSweepPausaPorInactividad(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)

	// justo antes del umbral no pasa nada
	f.clock.advance(299 * time.Second)
	paused, closed := f.sweeper.SweepOnce(ctx)
	require.Zero(t, paused)
	require.Zero(t, closed)

	f.clock.advance(2 * time.Second)
	paused, closed = f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)
	require.Zero(t, closed)

	sess, err := f.shift.Current(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusBreak, sess.Status)
	require.True(t, sess.BreakAuto)

	require.Equal(t, 1, f.notifier.count())
	ev := f.notifier.events[0]
	require.Equal(t, domain.StatusActive, ev.From)
	require.Equal(t, domain.StatusBreak, ev.To)
	require.Equal(t, domain.ReasonAFKTimeout, ev.Reason)
}

// en pausa >= 2×afkTimeout → cierre automático, con el tiempo activo acreditado
func TestSweepCierraPausaLarga(t *testing.T) {
	t0 := mondayT0()
	f := newFixture(t0)
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)

	// 1h de trabajo, después se va sin pausar
	f.clock.advance(1 * time.Hour)
	require.NoError(t, f.shift.Touch(ctx, "g1", "u1", f.clock.now()))

	f.clock.advance(301 * time.Second)
	paused, _ := f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)

	// la pausa inducida todavía no llegó al doble del timeout
	f.clock.advance(599 * time.Second)
	paused, closed := f.sweeper.SweepOnce(ctx)
	require.Zero(t, paused)
	require.Zero(t, closed)

	f.clock.advance(2 * time.Second)
	paused, closed = f.sweeper.SweepOnce(ctx)
	require.Zero(t, paused)
	require.Equal(t, 1, closed)

	_, err = f.shift.Current(ctx, "g1", "u1")
	require.ErrorIs(t, err, ErrNoOpenSession)

	require.Equal(t, 2, f.notifier.count())
	ev := f.notifier.events[1]
	require.Equal(t, domain.StatusBreak, ev.From)
	require.Equal(t, domain.StatusEnded, ev.To)

	// al acumulador va sólo el tiempo activo, la pausa inducida no
	hist, err := f.shift.History(ctx, "g1", "u1", 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.True(t, hist[0].AutoClosed)
	require.Equal(t, domain.ReasonAFKTimeout, hist[0].EndReason)

	total, err := f.quotas.Total(ctx, "g1", "u1", "regular", domain.WeekID(t0, 8))
	require.NoError(t, err)
	require.Equal(t, hist[0].ActiveSeconds(), total)
	require.EqualValues(t, 3600+301, total)
}

// las pausas voluntarias caducan igual que las inducidas
func TestSweepCierraPausaVoluntaria(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)
	_, err = f.shift.StartBreak(ctx, "g1", "u1")
	require.NoError(t, err)

	f.clock.advance(601 * time.Second)
	_, closed := f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, closed)
}

// repetir el tick sin que cambie nada no produce transiciones nuevas
func TestSweepEsIdempotente(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)
	f.clock.advance(301 * time.Second)

	paused, _ := f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)

	for i := 0; i < 3; i++ {
		paused, closed := f.sweeper.SweepOnce(ctx)
		require.Zero(t, paused)
		require.Zero(t, closed)
	}
	require.Equal(t, 1, f.notifier.count())
}

// actividad reciente resetea el reloj de inactividad
func TestSweepRespetaActividad(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)

	f.clock.advance(250 * time.Second)
	require.NoError(t, f.shift.Touch(ctx, "g1", "u1", f.clock.now()))

	f.clock.advance(250 * time.Second)
	paused, closed := f.sweeper.SweepOnce(ctx)
	require.Zero(t, paused)
	require.Zero(t, closed)

	sess, err := f.shift.Current(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, sess.Status)
}

// cambio de config aplica en el próximo tick, sin reabrir el turno
func TestSweepReleeLaConfigVigente(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)

	f.clock.advance(200 * time.Second)
	paused, _ := f.sweeper.SweepOnce(ctx)
	require.Zero(t, paused)

	// el admin baja el timeout a 100s: los 200s de idle ya lo superan
	seedConfig(t, f, 100)
	paused, _ = f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)
}

// turnos sin config de rol usan el timeout default del deploy
func TestSweepUsaDefaultSinConfig(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", nil)
	require.NoError(t, err)

	f.clock.advance(301 * time.Second)
	paused, _ := f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)
}

// la notificación sale fuera del lock del par: un notifier que a su vez
// necesita ese lock (como el engine al registrar actividad) no se traba
func TestSweepNotificaFueraDelLock(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	n := &lockingNotifier{shift: f.shift, clk: f.clock}
	sweeper := NewSweeper(f.shift, f.configs, n, 300*time.Second)

	_, err := f.shift.ClockIn(ctx, "g1", "u1", "regular", []string{"r-mod"})
	require.NoError(t, err)
	f.clock.advance(301 * time.Second)

	done := make(chan struct{})
	go func() {
		paused, _ := sweeper.SweepOnce(ctx)
		require.Equal(t, 1, paused)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("SweepOnce no terminó: la notificación corre con el lock tomado")
	}
	require.EqualValues(t, 1, n.calls.Load())
}

// el fallo de un turno no frena el barrido de los demás
func TestSweepAislaFallosPorTurno(t *testing.T) {
	f := newFixture(mondayT0())
	ctx := context.Background()
	seedConfig(t, f, 300)

	sessA, err := f.shift.ClockIn(ctx, "g1", "uA", "regular", []string{"r-mod"})
	require.NoError(t, err)
	_, err = f.shift.ClockIn(ctx, "g1", "uB", "regular", []string{"r-mod"})
	require.NoError(t, err)

	f.clock.advance(301 * time.Second)
	f.sessions.fail[sessA.ID] = errors.New("deadlock detected")

	paused, _ := f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)

	curB, err := f.shift.Current(ctx, "g1", "uB")
	require.NoError(t, err)
	require.Equal(t, domain.StatusBreak, curB.Status)

	curA, err := f.shift.Current(ctx, "g1", "uA")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, curA.Status)

	// próximo tick sin el fallo: converge
	delete(f.sessions.fail, sessA.ID)
	paused, _ = f.sweeper.SweepOnce(ctx)
	require.Equal(t, 1, paused)
}
