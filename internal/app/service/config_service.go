package service

import (
	"context"
	"errors"
	"time"

	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

type ConfigService struct {
	repo ConfigRepo
}

func NewConfigService(repo ConfigRepo) *ConfigService { return &ConfigService{repo: repo} }

// Set crea o pisa la config de (guild, rol, tipo). afkTimeout > 0 siempre;
// la cuota puede ser 0 (rol sin mínimo semanal).
func (s *ConfigService) Set(ctx context.Context, guildID, roleID, shiftType string, afkTimeout, weeklyQuota time.Duration) (storage.ShiftConfig, error) {
	if afkTimeout <= 0 || shiftType == "" || roleID == "" || weeklyQuota < 0 {
		return storage.ShiftConfig{}, ErrInvalidConfig
	}
	cfg := storage.ShiftConfig{
		GuildID:            guildID,
		RoleID:             roleID,
		ShiftType:          shiftType,
		AFKTimeoutSeconds:  int(afkTimeout.Seconds()),
		WeeklyQuotaMinutes: int(weeklyQuota.Minutes()),
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return storage.ShiftConfig{}, err
	}
	return cfg, nil
}

func (s *ConfigService) Get(ctx context.Context, guildID, roleID, shiftType string) (storage.ShiftConfig, error) {
	cfg, err := s.repo.Get(ctx, guildID, roleID, shiftType)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ShiftConfig{}, ErrConfigNotFound
	}
	return cfg, err
}

func (s *ConfigService) List(ctx context.Context, guildID string) ([]storage.ShiftConfig, error) {
	return s.repo.ListByGuild(ctx, guildID)
}

// Delete borra la config hacia adelante; no toca turnos históricos.
func (s *ConfigService) Delete(ctx context.Context, guildID, roleID, shiftType string) error {
	ok, err := s.repo.Delete(ctx, guildID, roleID, shiftType)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConfigNotFound
	}
	return nil
}
