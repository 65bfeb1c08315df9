package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	DiscordGuild string // opcional: vacío registra comandos globales
	HTTPAddr     string // opcional, default :8080

	AdminRoleIDs []string // roles que pueden usar /shiftadmin además de admins

	// reloj de asistencia y sweeper
	ShiftUTCOffsetHours      int // offset fijo para límites de semana (default GMT+8)
	SweepIntervalSeconds     int
	DefaultAFKTimeoutSeconds int // para turnos sin config de rol
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}
	getInt := func(k string, def int) int {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("env %s inválida: %v", k, err)
		}
		return n
	}

	cfg := Config{
		DatabaseURL:  get("DATABASE_URL", true),
		DiscordToken: get("DISCORD_BOT_TOKEN", true),
		DiscordGuild: get("DISCORD_GUILD_ID", false),
		HTTPAddr:     get("HTTP_ADDR", false),

		ShiftUTCOffsetHours:      getInt("SHIFT_UTC_OFFSET_HOURS", 8),
		SweepIntervalSeconds:     getInt("SWEEP_INTERVAL_SECONDS", 30),
		DefaultAFKTimeoutSeconds: getInt("DEFAULT_AFK_TIMEOUT_SECONDS", 300),
	}
	if raw := get("ADMIN_ROLE_IDS", false); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.AdminRoleIDs = append(cfg.AdminRoleIDs, id)
			}
		}
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SweepIntervalSeconds <= 0 {
		cfg.SweepIntervalSeconds = 30
	}
	return cfg
}
