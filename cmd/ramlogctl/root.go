// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/siderolabs/go-ramlog"
	"github.com/siderolabs/go-ramlog/ecc"
)

var rootCmd = &cobra.Command{
	Use:          "ramlogctl",
	Short:        "Inspect and manage persistent RAM log regions",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		// flags not set explicitly pick up RAMLOGCTL_* environment values
		var bindErr error

		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !f.Changed && viper.IsSet(f.Name) {
				if err := cmd.Flags().Set(f.Name, viper.GetString(f.Name)); err != nil && bindErr == nil {
					bindErr = err
				}
			}
		})

		return bindErr
	},
}

var debug bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	viper.SetEnvPrefix("RAMLOGCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// eccFlags is the code geometry shared by info/dump/record.
type eccFlags struct {
	enabled    bool
	blockSize  int
	paritySize int
}

func (f *eccFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.enabled, "ecc", false, "region carries Reed-Solomon parity")
	fs.IntVar(&f.blockSize, "block-size", ecc.DefaultBlockSize, "data bytes per parity segment")
	fs.IntVar(&f.paritySize, "parity-size", ecc.DefaultParitySize, "parity segment width (bytes)")
}

func (f *eccFlags) storeOptions() ([]ramlog.OptionFunc, error) {
	if !f.enabled {
		return nil, nil
	}

	codec, err := ecc.NewCodec(f.blockSize, f.paritySize)
	if err != nil {
		return nil, err
	}

	return []ramlog.OptionFunc{ramlog.WithECC(codec)}, nil
}

// dataCapacity mirrors the store's reservation accounting for display
// purposes.
func (f *eccFlags) dataCapacity(total int) int {
	capacity := total - ramlog.HeaderSize

	if f.enabled {
		blocks := (capacity + f.blockSize - 1) / f.blockSize
		capacity -= (blocks + 1) * f.paritySize
	}

	return capacity
}
