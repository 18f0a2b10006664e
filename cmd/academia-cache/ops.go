package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/flagx"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
)

type keyRequest struct {
	Prefix string `flag:"prefix,p" usage:"key prefix" default:"cache" json:"prefix"`
}

func (r *keyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Prefix, validation.Required),
	)
}

type flushRequest struct {
	Yes bool `flag:"yes,y" usage:"confirm flushing the whole redis database" json:"yes"`
}

func (r *flushRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Yes, validation.Required.Error("pass --yes to confirm")),
	)
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print key count, memory usage and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				return printJSON(cmd, svc.Stats(ctx))
			})
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	req := &keyRequest{}
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.Parse(cmd, req); err != nil {
				return err
			}
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				var raw json.RawMessage
				if !svc.Get(ctx, args[0], &raw, cache.WithPrefix(req.Prefix)) {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "(nil)")
					return err
				}
				var v interface{}
				if err := json.Unmarshal(raw, &v); err != nil {
					return err
				}
				return printJSON(cmd, v)
			})
		},
	}
	_ = flagx.BindFlags(cmd, req)
	return cmd
}

func newDelCmd(opts *rootOptions) *cobra.Command {
	req := &keyRequest{}
	cmd := &cobra.Command{
		Use:   "del <key>",
		Short: "Delete a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.Parse(cmd, req); err != nil {
				return err
			}
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				svc.Del(ctx, args[0], cache.WithPrefix(req.Prefix))
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			})
		},
	}
	_ = flagx.BindFlags(cmd, req)
	return cmd
}

func newInvalidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <pattern>",
		Short: "Delete every key matching a glob pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				deleted := svc.InvalidatePattern(ctx, args[0])
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", deleted)
				return err
			})
		},
	}
}

func newFlushCmd(opts *rootOptions) *cobra.Command {
	req := &flushRequest{}
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Flush the whole redis database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.Parse(cmd, req); err != nil {
				return err
			}
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				svc.ClearAll(ctx)
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			})
		},
	}
	_ = flagx.BindFlags(cmd, req)
	return cmd
}

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check redis connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCache(cmd, func(ctx context.Context, svc *cache.Service) error {
				if !svc.Ping(ctx) {
					return fmt.Errorf("redis unreachable")
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "PONG")
				return err
			})
		},
	}
}
