package domain

import (
	"fmt"
	"time"
)

// Estados del ciclo de vida de un turno.
const (
	StatusActive = "active"
	StatusBreak  = "break"
	StatusEnded  = "ended"
)

// Motivos de cierre conocidos.
const (
	ReasonManual     = "manual"
	ReasonAFKTimeout = "afk-timeout"
)

// AutoTransition es el evento que emite el sweeper cuando fuerza un cambio
// de estado sin intervención del usuario. El que lo recibe decide cómo
// avisarle al staff (DM, canal, nada).
type AutoTransition struct {
	GuildID   string
	UserID    string
	ShiftType string
	From      string
	To        string
	Reason    string
}

// AttendanceZone devuelve la zona fija (offset en horas respecto de UTC)
// con la que se calculan los límites de semana. Una sola para todo el deploy.
func AttendanceZone(offsetHours int) *time.Location {
	return time.FixedZone("attendance", offsetHours*3600)
}

// WeekStart baja t al lunes 00:00 en la zona de asistencia.
func WeekStart(t time.Time, offsetHours int) time.Time {
	lt := t.In(AttendanceZone(offsetHours))
	days := (int(lt.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
	return day.AddDate(0, 0, -days)
}

// WeekID identifica la semana de asistencia: la fecha del lunes en la zona
// configurada. Es función pura del reloj + offset, nunca del guild.
func WeekID(t time.Time, offsetHours int) string {
	return WeekStart(t, offsetHours).Format("2006-01-02")
}

// WeekBounds devuelve [inicio, fin) de la semana que contiene a t.
func WeekBounds(t time.Time, offsetHours int) (time.Time, time.Time) {
	start := WeekStart(t, offsetHours)
	return start, start.AddDate(0, 0, 7)
}

// ParseWeekID invierte WeekID: de la fecha del lunes a los límites
// [inicio, fin) de esa semana. Rechaza fechas que no caen en lunes.
func ParseWeekID(weekID string, offsetHours int) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", weekID, AttendanceZone(offsetHours))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.Weekday() != time.Monday {
		return time.Time{}, time.Time{}, fmt.Errorf("week id %q: no es lunes", weekID)
	}
	return start, start.AddDate(0, 0, 7), nil
}
