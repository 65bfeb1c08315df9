package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// onMessageCreate es el feed de actividad: cualquier mensaje atribuible a un
// miembro resetea su reloj de inactividad. El filtrado (bots, DMs) es
// responsabilidad de este handler; el engine ignora touches sin turno activo.
func (r *Router) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if r.guildID != "" && m.GuildID != r.guildID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.shift.Touch(ctx, m.GuildID, m.Author.ID, m.Timestamp); err != nil {
		// actividad perdida no es fatal: el próximo mensaje la repone
		log.Printf("touch guild=%s user=%s: %v", m.GuildID, m.Author.ID, err)
	}
}
