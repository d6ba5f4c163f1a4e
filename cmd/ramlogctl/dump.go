// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siderolabs/go-ramlog"
	"github.com/siderolabs/go-ramlog/zstd"
)

var dumpFlags struct {
	eccFlags

	output   string
	compress bool
}

var dumpCmd = &cobra.Command{
	Use:   "dump <region-file>",
	Short: "Recover and print the previous contents of a log region",
	Long: `Recover the previous contents of a log region.

The region file is read into memory and recovery runs over the copy, so the
on-disk region is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}

		opts, err := dumpFlags.storeOptions()
		if err != nil {
			return err
		}

		store, err := ramlog.NewStore(data, append(opts, ramlog.WithLogger(logger))...)
		if err != nil {
			return err
		}

		old := store.Recovered()
		if old.Size() == 0 {
			fmt.Fprintln(os.Stderr, "no valid content recovered")

			return nil
		}

		out := old.Bytes()

		if dumpFlags.output == "" {
			_, err = os.Stdout.Write(out)

			return err
		}

		if dumpFlags.compress {
			compressor, err := zstd.NewCompressor()
			if err != nil {
				return err
			}

			if out, err = compressor.Compress(out, nil); err != nil {
				return err
			}
		}

		return os.WriteFile(dumpFlags.output, out, 0o600)
	},
}

func init() {
	dumpFlags.register(dumpCmd.Flags())
	dumpCmd.Flags().StringVarP(&dumpFlags.output, "output", "o", "", "write recovered log to file instead of stdout")
	dumpCmd.Flags().BoolVar(&dumpFlags.compress, "compress", false, "zstd-compress the output file")

	rootCmd.AddCommand(dumpCmd)
}
