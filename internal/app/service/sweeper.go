package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// Sweeper: pasada periódica sobre todos los turnos abiertos. Detecta "no pasó
// nada" (no hay evento que dispare la inactividad, así que esto es un poll):
//   - active y sin touch hace >= afkTimeout  → pausa automática
//   - en pausa hace >= 2×afkTimeout          → cierre automático
//
// Cada tick relee estado durable y config vigente, así que un tick perdido,
// duplicado o concurrente converge al mismo resultado. El fallo de un turno
// no frena a los demás: se loguea y se reintenta en el próximo tick.
type Sweeper struct {
	svc        *ShiftService
	configs    ConfigRepo
	notifier   Notifier
	defaultAFK time.Duration
}

func NewSweeper(svc *ShiftService, configs ConfigRepo, notifier Notifier, defaultAFK time.Duration) *Sweeper {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Sweeper{svc: svc, configs: configs, notifier: notifier, defaultAFK: defaultAFK}
}

// SweepOnce evalúa todos los turnos abiertos una vez.
func (w *Sweeper) SweepOnce(ctx context.Context) (paused, closed int) {
	sessions, err := w.svc.sessions.ListOpen(ctx)
	if err != nil {
		log.Printf("sweep: listando turnos abiertos: %v", err)
		return 0, 0
	}

	for _, sess := range sessions {
		ev, err := w.evaluate(ctx, sess.GuildID, sess.UserID)
		if err != nil {
			log.Printf("sweep: session %s (guild=%s user=%s): %v", sess.ID, sess.GuildID, sess.UserID, err)
			continue
		}
		if ev == nil {
			continue
		}
		// la notificación sale con el lock ya soltado: un DM lento no puede
		// frenar los comandos de ese miembro
		w.notifier.Notify(ctx, *ev)
		switch ev.To {
		case domain.StatusBreak:
			paused++
		case domain.StatusEnded:
			closed++
		}
	}
	return paused, closed
}

// evaluate procesa un solo turno bajo su lock, releyendo el estado adentro:
// entre el scan y acá el usuario pudo haber tocado, pausado o cerrado.
// Devuelve la transición forzada, si hubo.
func (w *Sweeper) evaluate(ctx context.Context, guildID, userID string) (*domain.AutoTransition, error) {
	unlock := w.svc.locks.lock(guildID, userID)
	defer unlock()

	sess, err := w.svc.sessions.GetOpen(ctx, guildID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil // ya lo cerró alguien, no hay nada que barrer
	}
	if err != nil {
		return nil, err
	}

	timeout, err := w.timeoutFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, nil
	}

	now := w.svc.clock.Now()
	switch sess.Status {
	case domain.StatusActive:
		if now.Sub(sess.LastTouchAt) < timeout {
			return nil, nil
		}
		ok, err := w.svc.sessions.MarkAutoBreak(ctx, sess.ID, now, now.Add(-timeout))
		if err != nil || !ok {
			return nil, err
		}
		return &domain.AutoTransition{
			GuildID:   guildID,
			UserID:    userID,
			ShiftType: sess.ShiftType,
			From:      domain.StatusActive,
			To:        domain.StatusBreak,
			Reason:    domain.ReasonAFKTimeout,
		}, nil

	case domain.StatusBreak:
		// aplica a pausas voluntarias y a las inducidas por AFK por igual
		if sess.BreakStartedAt == nil || now.Sub(*sess.BreakStartedAt) < 2*timeout {
			return nil, nil
		}
		if _, err := w.svc.close(ctx, sess, now, true, domain.ReasonAFKTimeout); err != nil {
			if errors.Is(err, ErrInvalidState) {
				return nil, nil // otro proceso lo cerró primero
			}
			return nil, err
		}
		return &domain.AutoTransition{
			GuildID:   guildID,
			UserID:    userID,
			ShiftType: sess.ShiftType,
			From:      domain.StatusBreak,
			To:        domain.StatusEnded,
			Reason:    domain.ReasonAFKTimeout,
		}, nil
	}
	return nil, nil
}

// timeoutFor relee la config vigente para el (guild, rol, tipo) del turno.
// A diferencia del snapshot de apertura, acá un cambio de config aplica en
// el próximo tick. Sin config: default global.
func (w *Sweeper) timeoutFor(ctx context.Context, sess storage.ShiftSession) (time.Duration, error) {
	if sess.RoleID == "" {
		return w.defaultAFK, nil
	}
	cfg, err := w.configs.Get(ctx, sess.GuildID, sess.RoleID, sess.ShiftType)
	if errors.Is(err, storage.ErrNotFound) {
		return w.defaultAFK, nil
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(cfg.AFKTimeoutSeconds) * time.Second, nil
}
