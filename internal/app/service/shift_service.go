package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// ShiftService es la máquina de estados de turnos:
// active → break → active → ... → ended (terminal).
// Invariante: a lo sumo un turno abierto por (guild, user). Cada transición
// es una secuencia corta leer-decidir-escribir bajo el lock del par, y el
// UPDATE condicional de la capa de storage corta cualquier carrera restante.
type ShiftService struct {
	sessions SessionRepo
	configs  ConfigRepo
	clock    Clock
	locks    *sessionLocks
}

func NewShiftService(sessions SessionRepo, configs ConfigRepo, clock Clock) *ShiftService {
	return &ShiftService{
		sessions: sessions,
		configs:  configs,
		clock:    clock,
		locks:    newSessionLocks(),
	}
}

// ClockIn abre un turno en 'active'. Los turnos cerrados nunca bloquean uno
// nuevo. roleIDs son los roles del miembro: de ahí resolvemos qué config
// aplica y guardamos ese rol como snapshot en la fila del turno.
func (s *ShiftService) ClockIn(ctx context.Context, guildID, userID, shiftType string, roleIDs []string) (storage.ShiftSession, error) {
	unlock := s.locks.lock(guildID, userID)
	defer unlock()

	_, err := s.sessions.GetOpen(ctx, guildID, userID)
	if err == nil {
		return storage.ShiftSession{}, ErrAlreadyOnShift
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.ShiftSession{}, err
	}

	roleID := ""
	if cfg, err := s.configs.GetForRoles(ctx, guildID, shiftType, roleIDs); err == nil {
		roleID = cfg.RoleID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storage.ShiftSession{}, err
	}

	now := s.clock.Now()
	sess := storage.ShiftSession{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		UserID:      userID,
		RoleID:      roleID,
		ShiftType:   shiftType,
		Status:      domain.StatusActive,
		StartedAt:   now,
		LastTouchAt: now,
	}
	if err := s.sessions.Insert(ctx, sess); err != nil {
		if errors.Is(err, storage.ErrOpenSessionExists) {
			return storage.ShiftSession{}, ErrAlreadyOnShift
		}
		return storage.ShiftSession{}, err
	}
	return sess, nil
}

// StartBreak: sólo desde 'active'.
func (s *ShiftService) StartBreak(ctx context.Context, guildID, userID string) (storage.ShiftSession, error) {
	unlock := s.locks.lock(guildID, userID)
	defer unlock()

	sess, err := s.openSession(ctx, guildID, userID)
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if sess.Status != domain.StatusActive {
		return storage.ShiftSession{}, ErrInvalidState
	}

	now := s.clock.Now()
	ok, err := s.sessions.MarkBreak(ctx, sess.ID, now, false)
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if !ok {
		return storage.ShiftSession{}, ErrInvalidState
	}
	sess.Status = domain.StatusBreak
	sess.BreakStartedAt = &now
	sess.BreakAuto = false
	return sess, nil
}

// EndBreak: sólo desde 'break'. Cierra la pausa abierta, la acumula y
// resetea el reloj de inactividad.
func (s *ShiftService) EndBreak(ctx context.Context, guildID, userID string) (storage.ShiftSession, error) {
	unlock := s.locks.lock(guildID, userID)
	defer unlock()

	sess, err := s.openSession(ctx, guildID, userID)
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if sess.Status != domain.StatusBreak || sess.BreakStartedAt == nil {
		return storage.ShiftSession{}, ErrInvalidState
	}

	now := s.clock.Now()
	add := int64(now.Sub(*sess.BreakStartedAt).Seconds())
	if add < 0 {
		add = 0
	}
	ok, err := s.sessions.MarkResume(ctx, sess.ID, now, add)
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if !ok {
		return storage.ShiftSession{}, ErrInvalidState
	}
	sess.Status = domain.StatusActive
	sess.BreakStartedAt = nil
	sess.BreakAuto = false
	sess.BreakSeconds += add
	sess.LastTouchAt = now
	return sess, nil
}

// ClockOut cierra el turno desde 'active' o 'break'. Si estaba en pausa, la
// pausa abierta se pliega primero, igual que en EndBreak. El tiempo activo
// resultante va al acumulador de la semana en curso.
func (s *ShiftService) ClockOut(ctx context.Context, guildID, userID, reason string) (storage.ShiftSession, error) {
	unlock := s.locks.lock(guildID, userID)
	defer unlock()

	sess, err := s.openSession(ctx, guildID, userID)
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if reason == "" {
		reason = domain.ReasonManual
	}
	return s.close(ctx, sess, s.clock.Now(), false, reason)
}

// close asume el lock tomado. Lo comparte el clock-out manual y el sweeper.
// Cierre y crédito semanal van juntos en el storage: si la acreditación
// falla, el turno sigue abierto y el reintento repite todo.
func (s *ShiftService) close(ctx context.Context, sess storage.ShiftSession, now time.Time, autoClosed bool, reason string) (storage.ShiftSession, error) {
	breakSecs := sess.BreakSeconds
	if sess.Status == domain.StatusBreak && sess.BreakStartedAt != nil {
		open := int64(now.Sub(*sess.BreakStartedAt).Seconds())
		if open > 0 {
			breakSecs += open
		}
	}

	ok, err := s.sessions.MarkEnded(ctx, sess.ID, now, breakSecs, autoClosed, reason, s.clock.WeekID(now))
	if err != nil {
		return storage.ShiftSession{}, err
	}
	if !ok {
		return storage.ShiftSession{}, ErrInvalidState
	}

	sess.Status = domain.StatusEnded
	sess.EndedAt = &now
	sess.BreakStartedAt = nil
	sess.BreakSeconds = breakSecs
	sess.AutoClosed = autoClosed
	sess.EndReason = reason
	return sess, nil
}

// Touch registra actividad. Sin turno activo es un no-op silencioso: que un
// miembro fuera de turno escriba es lo esperado, no un error. Timestamps más
// viejos que el guardado se descartan en el UPDATE.
func (s *ShiftService) Touch(ctx context.Context, guildID, userID string, at time.Time) error {
	unlock := s.locks.lock(guildID, userID)
	defer unlock()

	if at.IsZero() {
		at = s.clock.Now()
	}
	return s.sessions.Touch(ctx, guildID, userID, at)
}

// Current devuelve el turno abierto, o ErrNoOpenSession.
func (s *ShiftService) Current(ctx context.Context, guildID, userID string) (storage.ShiftSession, error) {
	return s.openSession(ctx, guildID, userID)
}

// History: últimos turnos cerrados (se retienen tras el cierre).
func (s *ShiftService) History(ctx context.Context, guildID, userID string, limit int) ([]storage.ShiftSession, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}
	return s.sessions.History(ctx, guildID, userID, limit)
}

func (s *ShiftService) openSession(ctx context.Context, guildID, userID string) (storage.ShiftSession, error) {
	sess, err := s.sessions.GetOpen(ctx, guildID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ShiftSession{}, ErrNoOpenSession
	}
	return sess, err
}
