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
	"fmt"

	"github.com/ghodss/yaml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/mshio/ansys"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file.msh>",
	Short: "Print statistics for an Ansys msh file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Debugf("reading mesh file %s", args[0])
		m, err := ansys.ReadMsh(args[0])
		if err != nil {
			return err
		}

		if asYaml, _ := cmd.Flags().GetBool("yaml"); asYaml {
			out, err := yaml.Marshal(m.Summary())
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}

		m.PrintStatistics()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Bool("yaml", false, "emit statistics as YAML")
}
