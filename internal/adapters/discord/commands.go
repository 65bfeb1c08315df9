package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "shift",
		Description: "Gestiona tu turno de staff",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "clockin",
				Description: "Iniciar turno",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Tipo de turno (default: regular)",
				}},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "break", Description: "Pausar turno"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "resume", Description: "Retomar turno"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clockout", Description: "Terminar turno"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Ver tu turno actual"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "history", Description: "Tus últimos turnos cerrados"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "quota",
				Description: "Tu cuota de la semana",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Tipo de turno (default: regular)",
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leaderboard",
				Description: "Ranking semanal de horas",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Filtrar por tipo de turno"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "week", Description: "Semana a consultar: fecha del lunes YYYY-MM-DD (default: actual)"},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "top", Description: "Cuántos mostrar (default 10)"},
				},
			},
		},
	},
	{
		Name:        "shiftadmin",
		Description: "Configuración de turnos (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "config_set",
				Description: "Crear/actualizar config de un rol y tipo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rol de staff", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Tipo de turno", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "afk_seconds", Description: "Timeout AFK en segundos", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "quota_minutes", Description: "Cuota semanal en minutos", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "config_del",
				Description: "Borrar config de un rol y tipo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rol de staff", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Tipo de turno", Required: true},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "settings", Description: "Ver configs del guild"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "channel",
				Description: "Restringir comandos de turno a un canal",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Canal de turnos",
					Required:    true,
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reportchannel",
				Description: "Canal para el resumen semanal de cuotas",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Canal de reportes",
					Required:    true,
				}},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "panel", Description: "Publicar panel de botones en este canal"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "view",
				Description: "Ver el turno de otro miembro",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Miembro",
					Required:    true,
				}},
			},
		},
	},
}
