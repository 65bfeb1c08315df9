package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/staff-shift-bot/internal/app/service"
	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

func optStr(ic *discordgo.InteractionCreate, name string) (string, bool) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return "", false
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue(), true
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && so.Type == discordgo.ApplicationCommandOptionString {
					return so.StringValue(), true
				}
			}
		}
	}
	return "", false
}

func optInt(ic *discordgo.InteractionCreate, name string) (int, bool) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return 0, false
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionInteger {
			return int(o.IntValue()), true
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && so.Type == discordgo.ApplicationCommandOptionInteger {
					return int(so.IntValue()), true
				}
			}
		}
	}
	return 0, false
}

// optSnowflake: roles, users y channels viajan como string ID.
func optSnowflake(ic *discordgo.InteractionCreate, name string) (string, bool) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return "", false
	}
	want := func(t discordgo.ApplicationCommandOptionType) bool {
		return t == discordgo.ApplicationCommandOptionRole ||
			t == discordgo.ApplicationCommandOptionUser ||
			t == discordgo.ApplicationCommandOptionChannel
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Name == name && want(o.Type) {
			return fmt.Sprint(o.Value), true
		}
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				if so.Name == name && want(so.Type) {
					return fmt.Sprint(so.Value), true
				}
			}
		}
	}
	return "", false
}

func subcmdName(ic *discordgo.InteractionCreate) (string, bool) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return "", false
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return o.Name, true
		}
	}
	return "", false
}

// fmtDur: "3h 25m" / "45m" / "30s" para mensajes.
func fmtDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func statusEmoji(status string) string {
	switch status {
	case domain.StatusActive:
		return "🟢"
	case domain.StatusBreak:
		return "🟡"
	default:
		return "🔴"
	}
}

// fmtSession arma la línea de estado de un turno abierto.
func fmtSession(sess storage.ShiftSession, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Turno **%s** (%s)\n", statusEmoji(sess.Status), sess.Status, sess.ShiftType)
	fmt.Fprintf(&b, "• Inicio: <t:%d:R>\n", sess.StartedAt.Unix())
	if sess.Status == domain.StatusBreak && sess.BreakStartedAt != nil {
		kind := "pausa"
		if sess.BreakAuto {
			kind = "pausa automática (AFK)"
		}
		fmt.Fprintf(&b, "• En %s desde <t:%d:R>\n", kind, sess.BreakStartedAt.Unix())
	}
	active := now.Sub(sess.StartedAt) - time.Duration(sess.BreakSeconds)*time.Second
	if sess.Status == domain.StatusBreak && sess.BreakStartedAt != nil {
		active -= now.Sub(*sess.BreakStartedAt)
	}
	fmt.Fprintf(&b, "• Tiempo activo hasta ahora: **%s**", fmtDur(active))
	return b.String()
}

// errText traduce los errores con nombre del engine; lo demás es genérico.
func errText(err error) string {
	switch {
	case errors.Is(err, service.ErrAlreadyOnShift):
		return "❌ Ya estás en turno. Usa `/shift status` o `/shift clockout`."
	case errors.Is(err, service.ErrNoOpenSession):
		return "ℹ️ No tenés un turno abierto. Usa `/shift clockin`."
	case errors.Is(err, service.ErrInvalidState):
		return "❌ Tu turno no está en un estado que permita eso. Mirá `/shift status`."
	case errors.Is(err, service.ErrConfigNotFound):
		return "ℹ️ No hay configuración de turnos para ese rol/tipo."
	case errors.Is(err, service.ErrInvalidWeek):
		return "❌ Semana inválida: usá la fecha del lunes, `YYYY-MM-DD`."
	case errors.Is(err, service.ErrInvalidConfig):
		return "❌ Config inválida: el timeout AFK debe ser > 0 y la cuota ≥ 0."
	default:
		return "⚠️ Algo falló procesando el comando. Probá de nuevo en un rato."
	}
}
