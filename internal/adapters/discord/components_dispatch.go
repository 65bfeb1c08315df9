package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	if ic.Member == nil || ic.Member.User == nil {
		return
	}

	_ = DeferEphemeral(s, ic)

	if !r.clickLimiter.Allow(ic.Member.User.ID) {
		ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	guildID, userID := ic.GuildID, ic.Member.User.ID

	switch data.CustomID {

	case "shift_start":
		stop := step("shift_start")
		defer stop()
		sess, err := r.shift.ClockIn(ctx, guildID, userID, "regular", ic.Member.Roles)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🟢 Turno **%s** iniciado, <t:%d:t>.", sess.ShiftType, sess.StartedAt.Unix()))

	case "shift_break":
		_, err := r.shift.StartBreak(ctx, guildID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, "🟡 Turno en pausa. **Resume** para volver.")

	case "shift_resume":
		sess, err := r.shift.EndBreak(ctx, guildID, userID)
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("🟢 De vuelta. Pausas acumuladas: **%s**.", fmtDur(time.Duration(sess.BreakSeconds)*time.Second)))

	case "shift_end":
		sess, err := r.shift.ClockOut(ctx, guildID, userID, "")
		if err != nil {
			ReplyEphemeral(s, ic, errText(err))
			return
		}
		ReplyEphemeral(s, ic, fmt.Sprintf(
			"🔴 Turno cerrado: activo **%s**, pausas **%s**.",
			fmtDur(time.Duration(sess.ActiveSeconds())*time.Second),
			fmtDur(time.Duration(sess.BreakSeconds)*time.Second)))
	}
}
