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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] graph_file",
	Short: "run environment-graph queries with lookup tracing enabled.",
	Long: `Behaves as inspect, except that every step taken by the lookup
	algorithm is logged.  Useful for understanding why a query resolves
	(or fails to resolve) the way it does.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Lookup tracing is gated on the trace level
		log.SetLevel(log.TraceLevel)
		//
		scenario := readScenarioFile(args[0])
		defer scenario.Destroy()
		//
		runQueries(scenario)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
}
