package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	discordrouter "github.com/jose-valero/staff-shift-bot/internal/adapters/discord"
	"github.com/jose-valero/staff-shift-bot/internal/adapters/httpops"
	"github.com/jose-valero/staff-shift-bot/internal/app/service"
	"github.com/jose-valero/staff-shift-bot/internal/domain"
	"github.com/jose-valero/staff-shift-bot/internal/infra/config"
	"github.com/jose-valero/staff-shift-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	sessionsRepo := storage.NewSessionRepo(db)
	configsRepo := storage.NewConfigRepo(db)
	quotasRepo := storage.NewQuotaRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)
	notifyRepo := storage.NewNotifyRepo(db)

	// Reloj de asistencia (un solo offset para todo el deploy)
	clock := service.Clock{OffsetHours: cfg.ShiftUTCOffsetHours}

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	// Services
	shiftSvc := service.NewShiftService(sessionsRepo, configsRepo, clock)
	quotaSvc := service.NewQuotaService(sessionsRepo, configsRepo, quotasRepo, clock)
	configSvc := service.NewConfigService(configsRepo)

	notifier := discordrouter.NewDMNotifier(s, notifyRepo)
	sweeper := service.NewSweeper(shiftSvc, configsRepo, notifier,
		time.Duration(cfg.DefaultAFKTimeoutSeconds)*time.Second)

	// Probes HTTP
	ops := httpops.New(db, sessionsRepo)
	go ops.Start(cfg.HTTPAddr)

	// Router
	r := discordrouter.NewRouter(s, cfg.DiscordGuild, shiftSvc, quotaSvc, configSvc, settingsRepo, cfg.AdminRoleIDs)
	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	r.Handlers()
	log.Printf("✅ comandos registrados (guild=%q)", cfg.DiscordGuild)

	// Sweeper AFK: tick fijo, más corto que el timeout más chico razonable.
	go func() {
		t := time.NewTicker(time.Duration(cfg.SweepIntervalSeconds) * time.Second)
		defer t.Stop()
		for range t.C {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			paused, closed := sweeper.SweepOnce(ctx)
			cancel()
			if paused > 0 || closed > 0 {
				log.Printf("sweep: paused=%d closed=%d", paused, closed)
			}
		}
	}()

	// Reporte semanal: lunes 00:05 hora de asistencia, cuando la semana ya rotó.
	cr := cron.New(cron.WithLocation(domain.AttendanceZone(cfg.ShiftUTCOffsetHours)))
	_, err = cr.AddFunc("5 0 * * 1", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r.PostWeeklyReports(ctx)
	})
	if err != nil {
		log.Fatalf("cron: %v", err)
	}
	cr.Start()
	defer cr.Stop()

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
