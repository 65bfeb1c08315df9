package discord

import "github.com/bwmarrin/discordgo"

// Gate de /shiftadmin: dueño del guild, permiso Administrator, o alguno de
// los roles de ADMIN_ROLE_IDS. El staff común maneja sus turnos con /shift;
// acá sólo entra quien configura umbrales y canales.
func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil || ic.Member.User == nil {
		return false
	}
	if g, _ := s.State.Guild(ic.GuildID); g != nil && g.OwnerID == ic.Member.User.ID {
		return true
	}
	if memberIsAdmin(s, ic.GuildID, ic.Member.Roles) {
		return true
	}
	for _, want := range r.adminRoleIDs {
		for _, rid := range ic.Member.Roles {
			if rid == want {
				return true
			}
		}
	}

	ReplyEphemeral(s, ic, "🔒 La configuración de turnos es sólo para admins.")
	return false
}

func memberIsAdmin(s *discordgo.Session, guildID string, memberRoles []string) bool {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return false
	}
	perms := make(map[string]int64, len(roles))
	for _, ro := range roles {
		perms[ro.ID] = ro.Permissions
	}
	for _, rid := range memberRoles {
		if perms[rid]&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}
