package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codenerd/lftjengine/pkg/value"
)

var demoInserts []string

var demoCmd = &cobra.Command{
	Use:   "demo [s4|s5]",
	Short: "Build one of the example queries and print its materialized result",
	Long: `demo builds one of the spec.md §8 example queries (s4: a binary join,
s5: the triangle self-join), applies the --insert tuples given on the
command line, flushes them through the query graph, and prints the
resulting materialized output.

Each --insert value has the form relation:atom1,atom2,... Atoms that
parse as integers become integer atoms; everything else is a symbol.

Example:
  lftj demo s5 --insert E:a,b --insert E:b,c --insert E:c,a`,
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringArrayVar(&demoInserts, "insert", nil, "relation:atom1,atom2,... (repeatable)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ex, ok := examples[args[0]]
	if !ok {
		return fmt.Errorf("unknown example %q (known: %s)", args[0], strings.Join(knownExampleNames(), ", "))
	}

	e, handle, err := setup(ex)
	if err != nil {
		return fmt.Errorf("failed to set up example %q: %w", args[0], err)
	}

	for _, spec := range demoInserts {
		relation, tuple, err := parseInsertSpec(spec)
		if err != nil {
			return err
		}
		if err := e.Insert(relation, tuple); err != nil {
			return fmt.Errorf("insert into %q failed: %w", relation, err)
		}
	}

	if err := e.FlushAll(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}

	results, ok := handle.GetResults()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "query output does not materialize")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d result(s)\n", ex.name, len(results))
	for _, t := range sortedTuples(results) {
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
	}
	return nil
}

func knownExampleNames() []string {
	names := make([]string, 0, len(examples))
	for k := range examples {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// parseInsertSpec parses "relation:atom1,atom2,..." into a relation name
// and a Tuple, guessing each atom's kind (integer or symbol).
func parseInsertSpec(spec string) (string, value.Tuple, error) {
	relation, rest, found := strings.Cut(spec, ":")
	if !found || relation == "" {
		return "", value.Tuple{}, fmt.Errorf("--insert value %q must look like relation:atom1,atom2,...", spec)
	}
	fields := strings.Split(rest, ",")
	atoms := make([]value.Atom, 0, len(fields))
	for _, f := range fields {
		atoms = append(atoms, parseAtom(strings.TrimSpace(f)))
	}
	return relation, value.NewTuple(atoms...), nil
}

func parseAtom(s string) value.Atom {
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprintf("%d", n) == s {
		return value.Int(n)
	}
	return value.Symbol(s)
}

func sortedTuples(tuples []value.Tuple) []value.Tuple {
	out := append([]value.Tuple(nil), tuples...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
