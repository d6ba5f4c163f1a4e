// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/siderolabs/go-ramlog"
)

var infoFlags eccFlags

var infoCmd = &cobra.Command{
	Use:   "info <region-file>",
	Short: "Show the header and geometry of a log region",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		hdr, err := ramlog.ParseHeader(data)
		if err != nil {
			return err
		}

		dataCapacity := infoFlags.dataCapacity(len(data))

		code := "none"
		if infoFlags.enabled {
			code = fmt.Sprintf("rs(%d,%d)", infoFlags.blockSize+infoFlags.paritySize, infoFlags.blockSize)
		}

		table := uitable.New()
		table.AddRow("Region:", args[0])
		table.AddRow("Total size:", len(data))
		table.AddRow("Data capacity:", dataCapacity)
		table.AddRow("ECC:", code)
		table.AddRow("Signature:", fmt.Sprintf("%#010x", hdr.Signature))
		table.AddRow("Start:", hdr.Start)
		table.AddRow("Size:", hdr.Size)

		if hdr.Valid(dataCapacity) {
			table.AddRow("State:", color.GreenString("valid content"))
		} else {
			table.AddRow("State:", color.RedString("no valid content"))
		}

		fmt.Println(table)

		return nil
	},
}

func init() {
	infoFlags.register(infoCmd.Flags())

	rootCmd.AddCommand(infoCmd)
}
