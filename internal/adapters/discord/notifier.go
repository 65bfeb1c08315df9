package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

// DMNotifier avisa por DM cuando el sweeper pausa o cierra un turno.
// Cada intento queda auditado en notify_log; un DM cerrado no es error
// del engine, sólo queda registrado.
type DMNotifier struct {
	s   *discordgo.Session
	log *storage.NotifyRepo
}

func NewDMNotifier(s *discordgo.Session, logRepo *storage.NotifyRepo) *DMNotifier {
	return &DMNotifier{s: s, log: logRepo}
}

func (n *DMNotifier) Notify(ctx context.Context, ev domain.AutoTransition) {
	kind := "auto-break"
	msg := "🟡 **Turno pausado por inactividad.** Mandá un mensaje o usá `/shift resume` para retomarlo."
	if ev.To == domain.StatusEnded {
		kind = "auto-end"
		msg = "🔴 **Turno cerrado por inactividad.** Podés abrir uno nuevo con `/shift clockin` cuando vuelvas."
	}

	err := n.dm(ev.UserID, msg)
	detail := ""
	if err != nil {
		detail = err.Error()
		log.Printf("notify %s user=%s: %v", kind, ev.UserID, err)
	}
	if lerr := n.log.Log(ctx, ev.GuildID, ev.UserID, kind, err == nil, detail); lerr != nil {
		log.Printf("notify_log: %v", lerr)
	}
}

func (n *DMNotifier) dm(userID, content string) error {
	ch, err := n.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("dm channel: %w", err)
	}
	_, err = n.s.ChannelMessageSend(ch.ID, content)
	return err
}
