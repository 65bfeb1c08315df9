package storage

import "time"

// ShiftConfig: umbrales por (guild, rol, tipo de turno). Se lee como snapshot
// al abrir un turno; el sweeper la relee en cada tick, así que un cambio
// aplica recién en la próxima pasada.
type ShiftConfig struct {
	GuildID            string
	RoleID             string
	ShiftType          string
	AFKTimeoutSeconds  int
	WeeklyQuotaMinutes int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ShiftSession: un turno. Mientras está abierto (status != ended) hay a lo
// sumo uno por (guild, user); eso lo garantiza un índice único parcial.
type ShiftSession struct {
	ID             string
	GuildID        string
	UserID         string
	RoleID         string // rol cuya config aplicaba al abrir
	ShiftType      string
	Status         string // active | break | ended
	StartedAt      time.Time
	EndedAt        *time.Time
	LastTouchAt    time.Time
	BreakStartedAt *time.Time
	BreakSeconds   int64 // pausas ya cerradas, acumuladas
	BreakAuto      bool  // la pausa abierta la inició el sweeper
	AutoClosed     bool
	EndReason      string
}

// ActiveSeconds: tiempo activo de un turno cerrado.
// endedAt − startedAt − pausas acumuladas.
func (s ShiftSession) ActiveSeconds() int64 {
	if s.EndedAt == nil {
		return 0
	}
	n := int64(s.EndedAt.Sub(s.StartedAt).Seconds()) - s.BreakSeconds
	if n < 0 {
		n = 0
	}
	return n
}

// GuildSettings: canal de comandos de turnos, canal de reportes y el panel
// de botones publicado (si hay).
type GuildSettings struct {
	GuildID         string
	ShiftChannelID  string
	ReportChannelID string
	PanelChannelID  string
	PanelMessageID  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaderboardRow: total semanal cerrado por usuario, más el inicio del turno
// más viejo de esa semana (desempate estable del ranking).
type LeaderboardRow struct {
	UserID       string
	TotalSeconds int64
	FirstStart   *time.Time
}
