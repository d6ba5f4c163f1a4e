// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siderolabs/go-ramlog"
	"github.com/siderolabs/go-ramlog/console"
	"github.com/siderolabs/go-ramlog/region"
)

var recordFlags struct {
	eccFlags

	size         int64
	unbuffered   bool
	syncInterval time.Duration
	archive      string
}

var recordCmd = &cobra.Command{
	Use:   "record <region-file>",
	Short: "Append stdin to a file-backed log region",
	Long: `Append stdin to a file-backed log region, line by line.

Previous contents of the region are recovered and printed to stderr before
recording starts. The mapping is synced periodically and on exit, so the most
recent lines survive a crash of this process.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}

		reg, err := region.MapFile(args[0], recordFlags.size, recordFlags.unbuffered)
		if err != nil {
			return err
		}

		defer reg.Close() //nolint:errcheck

		opts, err := recordFlags.storeOptions()
		if err != nil {
			return err
		}

		cons := &console.Console{}

		opts = append(opts, ramlog.WithLogger(logger), ramlog.WithSink(cons))

		if recordFlags.archive != "" {
			opts = append(opts, ramlog.WithArchive(recordFlags.archive, nil))
		}

		store, err := ramlog.NewStore(reg.Bytes(), opts...)
		if err != nil {
			return err
		}

		if old := store.Recovered(); old.Size() > 0 {
			fmt.Fprintf(os.Stderr, "--- previous run (%d bytes) ---\n", old.Size())

			io.Copy(os.Stderr, old.Reader()) //nolint:errcheck

			fmt.Fprintln(os.Stderr, "--- end of previous run ---")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var eg errgroup.Group

		eg.Go(func() error {
			ticker := time.NewTicker(recordFlags.syncInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := reg.Sync(); err != nil {
						logger.Error("failed to sync region", zap.Error(err))
					}
				}
			}
		})

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fmt.Fprintln(cons, scanner.Text()) //nolint:errcheck
		}

		cancel()

		if err := eg.Wait(); err != nil {
			return err
		}

		if err := scanner.Err(); err != nil {
			return err
		}

		return reg.Sync()
	},
}

func init() {
	recordFlags.register(recordCmd.Flags())
	recordCmd.Flags().Int64Var(&recordFlags.size, "size", 64*1024, "region size in bytes")
	recordCmd.Flags().BoolVar(&recordFlags.unbuffered, "unbuffered", false, "open the backing file with O_SYNC")
	recordCmd.Flags().DurationVar(&recordFlags.syncInterval, "sync-interval", time.Second, "interval between region syncs")
	recordCmd.Flags().StringVar(&recordFlags.archive, "archive", "", "archive the recovered log to this path")

	rootCmd.AddCommand(recordCmd)
}
