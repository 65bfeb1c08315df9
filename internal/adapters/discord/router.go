package discord

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/staff-shift-bot/internal/app/service"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"
)

type Router struct {
	s       *discordgo.Session
	guildID string // vacío = registrar comandos globales

	shift    *service.ShiftService
	quota    *service.QuotaService
	config   *service.ConfigService
	settings *storage.SettingsRepo

	adminRoleIDs []string
	clickLimiter *userLimiter
}

func NewRouter(
	s *discordgo.Session,
	guildID string,
	shift *service.ShiftService,
	quota *service.QuotaService,
	config *service.ConfigService,
	settings *storage.SettingsRepo,
	adminRoleIDs []string,
) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		shift:        shift,
		quota:        quota,
		config:       config,
		settings:     settings,
		adminRoleIDs: adminRoleIDs,
		clickLimiter: newUserLimiter(1500 * time.Millisecond),
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, r.guildID, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})

	// feed de actividad: cualquier mensaje de un miembro cuenta como touch
	r.s.AddHandler(r.onMessageCreate)
}

// checkShiftChannel: si el guild restringió los comandos de turno a un canal,
// los demás canales rebotan con un aviso.
func (r *Router) checkShiftChannel(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	gs, err := r.settings.Get(ctx, ic.GuildID)
	if err != nil {
		log.Printf("settings get guild=%s: %v", ic.GuildID, err)
		return true // no bloqueamos comandos por un fallo de lectura acá
	}
	if gs.ShiftChannelID != "" && gs.ShiftChannelID != ic.ChannelID {
		ReplyEphemeral(s, ic, "❌ Los comandos de turno van en <#"+gs.ShiftChannelID+">.")
		return false
	}
	return true
}
