// aqui solo manejamos la interaccion del usuario y despachamos al engine;
// los mensajes de error con nombre se traducen en errText.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	if ic.Member == nil || ic.Member.User == nil {
		return // los comandos de turno sólo tienen sentido dentro de un guild
	}
	log.Printf("cmd: /%s by=%s guild=%s", cmd.Name, ic.Member.User.ID, ic.GuildID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in cmd /%s: %v", cmd.Name, rec)
			ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado procesando el comando.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	switch cmd.Name {
	case "shift":
		sub, ok := subcmdName(ic)
		if !ok {
			ReplyEphemeral(s, ic, "Usa `/shift clockin`, `/shift status`, `/shift clockout`…")
			return
		}
		if !r.checkShiftChannel(ctx, s, ic) {
			return
		}
		r.dispatchShift(ctx, s, ic, sub)

	case "shiftadmin":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		sub, ok := subcmdName(ic)
		if !ok {
			ReplyEphemeral(s, ic, "Usa `/shiftadmin config_set`, `/shiftadmin settings`…")
			return
		}
		r.dispatchShiftAdmin(ctx, s, ic, sub)
	}
}

func (r *Router) dispatchShift(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, sub string) {
	guildID, userID := ic.GuildID, ic.Member.User.ID

	switch sub {
	case "clockin":
		shiftType, _ := optStr(ic, "type")
		if shiftType == "" {
			shiftType = "regular"
		}
		sess, err := r.shift.ClockIn(ctx, guildID, userID, shiftType, ic.Member.Roles)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🟢 Turno **%s** iniciado. Inicio <t:%d:t>. ¡Buen turno!", sess.ShiftType, sess.StartedAt.Unix()))

	case "break":
		sess, err := r.shift.StartBreak(ctx, guildID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🟡 Turno en pausa desde <t:%d:t>. `/shift resume` para volver.", sess.BreakStartedAt.Unix()))

	case "resume":
		sess, err := r.shift.EndBreak(ctx, guildID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🟢 Turno retomado. Pausas acumuladas: **%s**.", fmtDur(time.Duration(sess.BreakSeconds)*time.Second)))

	case "clockout":
		sess, err := r.shift.ClockOut(ctx, guildID, userID, "")
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"🔴 Turno cerrado.\n• Activo: **%s**\n• Pausas: **%s**",
			fmtDur(time.Duration(sess.ActiveSeconds())*time.Second),
			fmtDur(time.Duration(sess.BreakSeconds)*time.Second),
		))

	case "status":
		sess, err := r.shift.Current(ctx, guildID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmtSession(sess, time.Now()))

	case "history":
		items, err := r.shift.History(ctx, guildID, userID, 10)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		if len(items) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ Todavía no tenés turnos cerrados.")
			return
		}
		var b strings.Builder
		b.WriteString("📋 **Tus últimos turnos**\n")
		for _, it := range items {
			mark := ""
			if it.AutoClosed {
				mark = " ⚠️ (auto)"
			}
			fmt.Fprintf(&b, "• <t:%d:d> — activo **%s**, pausas %s%s\n",
				it.StartedAt.Unix(),
				fmtDur(time.Duration(it.ActiveSeconds())*time.Second),
				fmtDur(time.Duration(it.BreakSeconds)*time.Second),
				mark)
		}
		ReplyEphemeral(s, ic, b.String())

	case "quota":
		shiftType, _ := optStr(ic, "type")
		if shiftType == "" {
			shiftType = "regular"
		}
		st, err := r.quota.Status(ctx, guildID, userID, shiftType, ic.Member.Roles)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		if !st.Tracked {
			ReplyEphemeral(s, ic, fmt.Sprintf(
				"ℹ️ Sin cuota configurada para tus roles (%s). Llevás **%s** esta semana.",
				shiftType, fmtDur(st.Completed)))
			return
		}
		check := "❌"
		if st.MetQuota {
			check = "✅"
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"📊 **Cuota semana %s** (%s)\n• Requerido: **%s**\n• Completado: **%s**\n• Restante: **%s**\n• Cumplida: %s",
			st.WeekID, st.ShiftType, fmtDur(st.Required), fmtDur(st.Completed), fmtDur(st.Remaining), check))

	case "leaderboard":
		shiftType, _ := optStr(ic, "type")
		weekID, _ := optStr(ic, "week")
		top, ok := optInt(ic, "top")
		if !ok || top <= 0 || top > 25 {
			top = 10
		}
		entries, err := r.quota.Leaderboard(ctx, guildID, shiftType, weekID, top)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		if len(entries) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ Sin actividad de turnos esa semana.")
			return
		}
		medals := []string{"🥇", "🥈", "🥉"}
		var b strings.Builder
		b.WriteString("🏆 **Leaderboard semanal**\n")
		for i, e := range entries {
			pre := fmt.Sprintf("#%d", i+1)
			if i < len(medals) {
				pre = medals[i]
			}
			live := ""
			if e.OnShift {
				live = " 🟢"
			}
			fmt.Fprintf(&b, "%s <@%s> — **%s**%s\n", pre, e.UserID, fmtDur(e.Total), live)
		}
		ReplyEphemeral(s, ic, b.String())
	}
}

func (r *Router) dispatchShiftAdmin(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate, sub string) {
	guildID := ic.GuildID

	switch sub {
	case "config_set":
		roleID, _ := optSnowflake(ic, "role")
		shiftType, _ := optStr(ic, "type")
		afkSecs, _ := optInt(ic, "afk_seconds")
		quotaMins, _ := optInt(ic, "quota_minutes")
		cfg, err := r.config.Set(ctx, guildID, roleID, shiftType,
			time.Duration(afkSecs)*time.Second, time.Duration(quotaMins)*time.Minute)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"✅ Config guardada para <@&%s> (%s): AFK **%s**, cuota **%s**/semana.",
			cfg.RoleID, cfg.ShiftType,
			fmtDur(time.Duration(cfg.AFKTimeoutSeconds)*time.Second),
			fmtDur(time.Duration(cfg.WeeklyQuotaMinutes)*time.Minute)))

	case "config_del":
		roleID, _ := optSnowflake(ic, "role")
		shiftType, _ := optStr(ic, "type")
		if err := r.config.Delete(ctx, guildID, roleID, shiftType); err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Config de <@&%s> (%s) borrada. Los turnos históricos no se tocan.", roleID, shiftType))

	case "settings":
		configs, err := r.config.List(ctx, guildID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		if len(configs) == 0 {
			ReplyEphemeral(s, ic, "ℹ️ No hay configs de turno en este guild.")
			return
		}
		var b strings.Builder
		b.WriteString("📋 **Configs de turno**\n")
		for _, c := range configs {
			fmt.Fprintf(&b, "• <@&%s> · %s — AFK %s · cuota %s/semana\n",
				c.RoleID, c.ShiftType,
				fmtDur(time.Duration(c.AFKTimeoutSeconds)*time.Second),
				fmtDur(time.Duration(c.WeeklyQuotaMinutes)*time.Minute))
		}
		ReplyEphemeral(s, ic, b.String())

	case "channel":
		channelID, _ := optSnowflake(ic, "channel")
		if err := r.settings.SetShiftChannel(ctx, guildID, channelID); err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Comandos de turno restringidos a <#"+channelID+">.")

	case "reportchannel":
		channelID, _ := optSnowflake(ic, "channel")
		if err := r.settings.SetReportChannel(ctx, guildID, channelID); err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, "✅ Resumen semanal de cuotas va a <#"+channelID+">.")

	case "panel":
		if err := r.publishShiftPanel(ctx, guildID, ic.ChannelID); err != nil {
			ReplyEphemeral(s, ic, "⚠️ No pude publicar el panel: "+err.Error())
			return
		}
		ReplyEphemeral(s, ic, "✅ Panel publicado en este canal.")

	case "view":
		memberID, _ := optSnowflake(ic, "member")
		sess, err := r.shift.Current(ctx, guildID, memberID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, "Turno de <@"+memberID+">:\n"+fmtSession(sess, time.Now()))
	}
}
