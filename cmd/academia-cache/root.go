package main

import (
	"context"
	"encoding/json"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/di"
	"github.com/spf13/cobra"
)

// flagMapping routes global override flags onto config keys
var flagMapping = map[string]string{
	"redis-host": "redis.host",
	"redis-port": "redis.port",
	"redis-db":   "redis.db",
	"log-level":  "logger.level",
	"addr":       "http.addr",
}

type rootOptions struct {
	configPath string
	envPrefix  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "academia-cache",
		Short:         "Academia Pro cache administration",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "./configs", "directory holding config.yaml and <env>.yaml")
	pf.StringVar(&opts.envPrefix, "env-prefix", "ACADEMIA", "prefix for PREFIX_SECTION_FIELD overrides")
	pf.String("redis-host", "", "redis host override")
	pf.Int("redis-port", 0, "redis port override")
	pf.Int("redis-db", 0, "redis database override")
	pf.String("log-level", "", "log level override")

	root.AddCommand(
		newServeCmd(opts),
		newStatsCmd(opts),
		newGetCmd(opts),
		newDelCmd(opts),
		newInvalidateCmd(opts),
		newFlushCmd(opts),
		newPingCmd(opts),
	)
	return root
}

func (o *rootOptions) newApp(cmd *cobra.Command, extra ...di.AppOption) *di.Application {
	opts := []di.AppOption{
		di.WithConfigPath(o.configPath),
		di.WithEnvPrefix(o.envPrefix),
		di.WithFlags(cmd.Flags(), flagMapping),
	}
	return di.NewApplication(append(opts, extra...)...)
}

// withCache sets up the container for a one-shot command and tears it down afterwards
func (o *rootOptions) withCache(cmd *cobra.Command, fn func(ctx context.Context, svc *cache.Service) error) (err error) {
	app := o.newApp(cmd)
	if err := app.Setup(); err != nil {
		return err
	}
	defer func() {
		if shutdownErr := app.Shutdown(context.Background()); err == nil {
			err = shutdownErr
		}
	}()

	svc, err := app.CacheService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, svc)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
