package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Publica (o re-publica) el panel de botones de turnos en ESTE canal.
// El panel es compartido: cada click opera sobre el turno de quien clickea.
func (r *Router) publishShiftPanel(ctx context.Context, guildID, channelID string) error {
	embed := &discordgo.MessageEmbed{
		Title: "🕒 Panel de turnos",
		Description: "Manejá tu turno con los botones:\n" +
			"🟢 **Start** inicia turno · 🟡 **Break** pausa · ▶️ **Resume** retoma · 🔴 **End** cierra.\n" +
			"Si te quedás inactivo el bot te pausa solo, y si seguís sin aparecer te cierra el turno.",
	}
	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Start", Style: discordgo.SuccessButton, CustomID: "shift_start", Emoji: &discordgo.ComponentEmoji{Name: "🟢"}},
			discordgo.Button{Label: "Break", Style: discordgo.PrimaryButton, CustomID: "shift_break", Emoji: &discordgo.ComponentEmoji{Name: "🟡"}},
			discordgo.Button{Label: "Resume", Style: discordgo.SecondaryButton, CustomID: "shift_resume", Emoji: &discordgo.ComponentEmoji{Name: "▶️"}},
			discordgo.Button{Label: "End", Style: discordgo.DangerButton, CustomID: "shift_end", Emoji: &discordgo.ComponentEmoji{Name: "🔴"}},
		},
	}
	msg, err := r.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{row},
	})
	if err != nil {
		return err
	}
	return r.settings.SetPanel(ctx, guildID, channelID, msg.ID)
}
