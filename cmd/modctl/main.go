package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/icar-directory/backend/internal/app"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/db"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/moderation"
	"github.com/icar-directory/backend/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonOutput bool

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modctl",
		Short: "ICAR directory moderation console",
		Long: `modctl works the edit moderation queue, organization claims and taxonomy
directly against the directory store.
The store driver and connection come from the same environment as the API
(STORE_DRIVER, POSTGRES_DSN, SQLITE_PATH, MIGRATIONS_DIR, REDIS_ENABLED, REDIS_URL).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	root.AddCommand(pendingCmd())
	root.AddCommand(editsCmd())
	root.AddCommand(trustCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(claimsCmd())
	root.AddCommand(taxonomyCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())
	return root
}

type env struct {
	cfg      *config.Config
	store    *app.Store
	edits    *services.EditService
	claims   *services.ClaimService
	taxonomy *services.TaxonomyService
}

// withService opens the configured store for one command. When Redis is
// enabled the CLI shares the API's trust cache and moderation stream, so
// approvals made here invalidate cached approved counts.
func withService(ctx context.Context, fn func(context.Context, env) error) error {
	log := zap.NewNop()
	cfg := config.Load()
	cfg.Validate(log)

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher events.Publisher = events.NopPublisher{}
	var trustCache moderation.TrustCache
	if cfg.RedisEnabled {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: redis unavailable, API trust cache will not be invalidated:", err)
		} else {
			defer rdb.Close()
			publisher = events.NewRedisPublisher(rdb, log)
			trustCache = services.NewRedisTrustCache(rdb, cfg.TrustCacheTTL)
		}
	}

	return fn(ctx, env{
		cfg:      cfg,
		store:    store,
		edits:    services.NewEditService(store.Records, store.Ledger, cfg.ModerationRules(), trustCache, publisher, log),
		claims:   services.NewClaimService(store.Claims, store.Records, publisher, log),
		taxonomy: services.NewTaxonomyService(store.Taxonomy, log),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
