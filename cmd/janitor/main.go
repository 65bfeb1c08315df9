package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Limpieza periódica (lambda): los turnos cerrados y los acumuladores viejos
// no le sirven a nadie después de un par de meses.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `
DELETE FROM shift_sessions
 WHERE status = 'ended'
   AND ended_at < now() - INTERVAL '90 days';`)

	// week_id es YYYY-MM-DD del lunes, compara bien como texto
	cutoff := time.Now().UTC().AddDate(0, 0, -26*7).Format("2006-01-02")
	_, _ = pool.Exec(cctx, `DELETE FROM quota_weeks WHERE week_id < $1;`, cutoff)

	_, _ = pool.Exec(cctx, `DELETE FROM notify_log WHERE created_at < now() - INTERVAL '30 days';`)

	return "ok", nil
}

func main() { lambda.Start(handler) }
