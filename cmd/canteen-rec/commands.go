package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/engine"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/logging"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/store"
)

type globalOptions struct {
	configPath string
	fixture    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "canteen-rec",
		Short:         "Canteen dish recommendation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $CANTEEN_CONFIG or ./canteen.yaml)")
	root.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "Import a JSON fixture before running the command")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	root.AddCommand(
		newRecommendCmd(opts),
		newScoresCmd(opts),
		newFavoritesCmd(opts),
		newImportCmd(opts),
		newResetCmd(opts),
		newBlacklistCmd(opts),
		newSalesCmd(opts),
	)
	return root
}

// withApp 建立依赖、执行 fn 并释放资源。
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, _ := logging.WithRequestID(cmd.Context(), "")
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRecommendCmd(opts *globalOptions) *cobra.Command {
	var (
		userID  string
		k       int
		alpha   float64
		at      string
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend dishes for a user",
		Example: `  canteen-rec recommend -u 1001
  canteen-rec recommend -u 1001 -k 5 --alpha 0.5 --at 2024-05-20T18:30:00+08:00
  canteen-rec recommend -u 1001 --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := engine.Request{UserID: userID, K: k}
			if cmd.Flags().Changed("alpha") {
				req.Alpha = &alpha
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				now := time.Now()
				if at != "" {
					t, err := time.Parse(time.RFC3339, at)
					if err != nil {
						return fmt.Errorf("--at: %w", err)
					}
					now = t
				}
				if explain {
					recs, err := a.engine.ExplainAt(ctx, req, now)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), recs)
				}
				dishes, err := a.engine.RecommendAt(ctx, req, now)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dishes)
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of dishes (default from config)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "MMR relevance weight in [0,1] (default from config)")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 time instead of now")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include the path, relevance and per-stage labels of each dish")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newScoresCmd(opts *globalOptions) *cobra.Command {
	var (
		userID   string
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show per-strategy dish scores",
		Example: `  canteen-rec scores -u 1001
  canteen-rec scores -u 1001 -s collaborative`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					out any
					err error
				)
				switch strings.ToLower(strategy) {
				case "", "all":
					out, err = a.engine.StrategyScores(ctx, userID)
				case "collaborative", "cf":
					out, err = a.engine.CollaborativeScore(ctx, userID)
				case "content":
					out, err = a.engine.ContentScore(ctx, userID)
				case "popularity":
					out, err = a.engine.PopularityScore(ctx)
				default:
					return fmt.Errorf("unknown strategy %q (all, collaborative, content, popularity)", strategy)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "all", "all | collaborative | content | popularity")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newFavoritesCmd(opts *globalOptions) *cobra.Command {
	var (
		userID string
		n      int
	)
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Show a user's most ordered dishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				favs, err := a.engine.FavoriteDishes(ctx, userID, n)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), favs)
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().IntVarP(&n, "n", "n", 10, "Number of dishes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Import dishes and orders from a JSON fixture",
		Example: `  canteen-rec import -f testdata/menu.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				n, err := a.importFixture(ctx, file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all behavior logs of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.repo.ResetHistory(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "history of %s cleared\n", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBlacklistCmd(opts *globalOptions) *cobra.Command {
	var (
		set []string
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Show or replace the stored dish blacklist",
		Example: `  canteen-rec blacklist
  canteen-rec blacklist --set d1,d2
  canteen-rec blacklist --set d3 --ttl 4h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if a.blacklist == nil {
					return fmt.Errorf("stored blacklist requires a memory or redis store: %w", core.ErrStoreNotSupported)
				}
				if cmd.Flags().Changed("set") {
					if err := a.blacklist.SetBlacklist(ctx, store.KeyBlacklist, set, ttl); err != nil {
						return err
					}
				}
				ids, err := a.blacklist.GetBlacklist(ctx, store.KeyBlacklist)
				if err != nil {
					return err
				}
				if ids == nil {
					ids = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), ids)
			})
		},
	}
	cmd.Flags().StringSliceVar(&set, "set", nil, "Replace the blacklist with these dish ids (empty clears it)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Expire the stored blacklist after this duration (0 = never)")
	return cmd
}

func newSalesCmd(opts *globalOptions) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:     "sales",
		Short:   "Show the order-count ranking kept by the key-value store",
		Example: `  canteen-rec sales --top 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if a.kv == nil {
					return fmt.Errorf("sales ranking requires a memory or redis store: %w", core.ErrStoreNotSupported)
				}
				sales, err := a.kv.DailySales(ctx, n)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), sales)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "top", "n", 10, "Number of dishes (0 = all)")
	return cmd
}
