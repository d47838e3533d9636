package cli

import (
	"context"
	"fmt"
	"log"

	"deepref-rcs-service/internal/app"
	"deepref-rcs-service/internal/config"
	"deepref-rcs-service/internal/domain"
	"deepref-rcs-service/internal/infra/postgres"
	"deepref-rcs-service/internal/scoring"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewRecalcCmd runs a one-shot batch recalculation over Postgres.
func NewRecalcCmd(configPath *string) *cobra.Command {
	var requesterID string
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate credibility scores for completed submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalc(cmd.Context(), *configPath, requesterID)
		},
	}
	cmd.Flags().StringVar(&requesterID, "requester", "", "limit recalculation to one requester")
	return cmd
}

func runRecalc(ctx context.Context, configPath, requesterID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewSubmissionStore(pool)
	engine, err := scoring.NewEngine(cfg.Weights())
	if err != nil {
		return err
	}
	service := app.NewRcsService(store, store, store, engine)

	report, err := service.RecalculateBatch(ctx, domain.PopulationScope{RequesterID: requesterID})
	if err != nil {
		return err
	}

	log.Printf("recalculated %d submissions: %d updated, %d failed", report.Total, report.Updated, report.Failed)
	for _, failure := range report.Failures {
		log.Printf("  %s: %s", failure.SubmissionID, failure.Reason)
	}
	return nil
}
