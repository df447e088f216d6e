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
	"github.com/lexgen/go-lexgen/pkg/util/source"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or prints the error and exits (status 2) if
// an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag, or prints the error and
// exits (status 2) if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readScenarioFile loads an environment-graph scenario from a given file,
// reporting any syntax error against its enclosing line.
func readScenarioFile(filename string) *graph.Scenario {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	scenario, serr := graph.Load(srcfile)
	if serr != nil {
		printSyntaxError(serr)
		os.Exit(3)
	}
	//
	return scenario
}

// printSyntaxError reports a syntax error along with the line it arose on.
func printSyntaxError(err *source.SyntaxError) {
	line := err.FirstEnclosingLine()
	//
	fmt.Printf("%s:%d: %s\n", err.SourceFile().Filename(), line.Number(), err.Message())
	fmt.Println(line.String())
}

// maxWidth determines how wide output lines can be, based on the enclosing
// terminal (when there is one).
func maxWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return width
	}
	// Not a terminal
	return 80
}

// truncate a line to fit within a given width.
func truncate(line string, width int) string {
	if len(line) > width {
		return line[:width]
	}
	//
	return line
}
