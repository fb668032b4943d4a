/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/mshio/ansys"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <in.msh> <out.msh>",
	Short: "Rewrite an Ansys msh file in the canonical ASCII subset",
	Long: `
Reads an Ansys msh file, ASCII or binary sections alike, and writes it
back out as plain ASCII. Face and mixed zones in the input are folded
into their per-type cell groups; only volume cell types can be written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile).Stop()
		}

		m, err := ansys.ReadMsh(args[0])
		if err != nil {
			return err
		}
		log.Infof("read %d points, %d cells from %s", m.NumPoints(), m.NumCells(), args[0])

		version, _ := cmd.Flags().GetString("version-string")
		if err = ansys.WriteMsh(args[1], m, version); err != nil {
			return err
		}
		log.Infof("wrote %s", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("version-string", "mshio", "text embedded in the output header record")
	convertCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}
