package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// PostWeeklyReports manda el resumen de la semana anterior a cada guild que
// configuró canal de reportes. Lo agenda el cron del main (lunes a la
// madrugada, hora de asistencia).
func (r *Router) PostWeeklyReports(ctx context.Context) {
	guilds, err := r.settings.ListWithReportChannel(ctx)
	if err != nil {
		log.Printf("weekly report: listando guilds: %v", err)
		return
	}

	for _, g := range guilds {
		entries, weekID, err := r.quota.PreviousWeekReport(ctx, g.GuildID, "")
		if err != nil {
			log.Printf("weekly report guild=%s: %v", g.GuildID, err)
			continue
		}
		if len(entries) == 0 {
			continue // semana sin actividad, no hay nada que publicar
		}

		var b strings.Builder
		fmt.Fprintf(&b, "📊 **Resumen de turnos — semana %s**\n", weekID)
		for i, e := range entries {
			fmt.Fprintf(&b, "%d) <@%s> — **%s**\n", i+1, e.UserID, fmtDur(e.Total))
			if i == 14 {
				break
			}
		}
		if _, err := r.s.ChannelMessageSend(g.ReportChannelID, b.String()); err != nil {
			log.Printf("weekly report guild=%s send: %v", g.GuildID, err)
		}
	}
}
