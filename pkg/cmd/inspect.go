// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/lexgen/go-lexgen/pkg/graph"
	"github.com/lexgen/go-lexgen/pkg/lexical"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] graph_file",
	Short: "run the queries of an environment-graph file.",
	Long: `Load a lexical environment graph from its textual description
	and run the queries it declares, printing every resolved entity in
	lookup order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		scenario := readScenarioFile(args[0])
		defer scenario.Destroy()
		//
		if GetFlag(cmd, "envs") {
			printEnvs(scenario)
		}
		//
		runQueries(scenario)
	},
}

// runQueries runs every query of a scenario, printing resolved entities.
func runQueries(scenario *graph.Scenario) {
	width := maxWidth()
	//
	for _, query := range scenario.Queries() {
		entities, err := scenario.Run(query)
		if err != nil {
			fmt.Printf("%s: %v\n", query, err)
			continue
		}
		//
		fmt.Printf("%s: %d entities\n", query, len(entities))
		//
		for _, entity := range entities {
			printEntity(entity, width)
		}
		//
		lexical.ReleaseEntities(entities)
	}
}

// printEntity prints one resolved entity, including any metadata and
// rebindings decoration.
func printEntity(entity lexical.Entity, width int) {
	line := fmt.Sprintf("  %v", entity.Element)
	//
	if entity.Info.Metadata != nil {
		line = fmt.Sprintf("%s %v", line, entity.Info.Metadata)
	}
	//
	if entity.Info.Rebindings.Size() != 0 {
		line = fmt.Sprintf("%s %s", line, entity.Info.Rebindings.String())
	}
	//
	fmt.Println(truncate(line, width))
}

// printEnvs summarises the environments declared in a scenario.
func printEnvs(scenario *graph.Scenario) {
	for _, name := range scenario.Envs() {
		env, _ := scenario.Env(name)
		fmt.Printf("%s: %s\n", name, env.String())
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("envs", false, "summarise declared environments")
}
