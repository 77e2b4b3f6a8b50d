package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/snapdiag/internal/checks"
	"github.com/good-yellow-bee/snapdiag/internal/scenario"
)

var scenariosDefs string

// scenariosCmd lists the definitions a defs directory would contribute
// to a run, so authors can confirm their YAML parses before pointing
// analyze at a snapshot.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List check and scenario definitions",
	Long: `List the check and scenario definitions found in a defs directory.

Definitions that fail validation are skipped with a warning, the same
way analyze skips them, so this doubles as a lint pass over a defs
tree.

Examples:
  # List definitions from the default ./defs directory
  snapdiag scenarios

  # List definitions from a custom directory
  snapdiag scenarios --defs ./my-defs`,
	RunE: runScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
	scenariosCmd.Flags().StringVar(&scenariosDefs, "defs", "defs", "definitions directory (checks/ and scenarios/)")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	checkDefs, err := loadDefsDir(filepath.Join(scenariosDefs, "checks"), checks.LoadDir)
	if err != nil {
		return err
	}
	scenarioDefs, err := loadDefsDir(filepath.Join(scenariosDefs, "scenarios"), scenario.LoadDir)
	if err != nil {
		return err
	}

	if GetOutput() == "json" {
		return printDefsJSON(checkDefs, scenarioDefs)
	}

	if len(checkDefs) > 0 {
		fmt.Println("Checks:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  NAME\tTYPE\tSECTION\tORIGIN\n")
		fmt.Fprintf(w, "  ----\t----\t-------\t------\n")
		for _, d := range checkDefs {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Name, d.Type, d.Section, d.Origin())
		}
		w.Flush()
		fmt.Println()
	}

	if len(scenarioDefs) > 0 {
		fmt.Println("Scenarios:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  ID\tORIGIN\tDESCRIPTION\n")
		fmt.Fprintf(w, "  --\t------\t-----------\n")
		for _, d := range scenarioDefs {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", d.ID, d.Origin(), d.Description)
		}
		w.Flush()
		fmt.Println()
	}

	fmt.Printf("Total: %d checks, %d scenarios\n", len(checkDefs), len(scenarioDefs))
	return nil
}

// loadDefsDir treats a missing directory as empty, matching analyze.
func loadDefsDir[T any](dir string, load func(string) ([]T, error)) ([]T, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return load(dir)
}

func printDefsJSON(checkDefs []*checks.Def, scenarioDefs []*scenario.Def) error {
	type defEntry struct {
		Name        string `json:"name"`
		Type        string `json:"type,omitempty"`
		Description string `json:"description,omitempty"`
		Origin      string `json:"origin"`
	}
	out := struct {
		Checks    []defEntry `json:"checks"`
		Scenarios []defEntry `json:"scenarios"`
	}{}
	for _, d := range checkDefs {
		out.Checks = append(out.Checks, defEntry{Name: d.Name, Type: string(d.Type), Origin: d.Origin()})
	}
	for _, d := range scenarioDefs {
		out.Scenarios = append(out.Scenarios, defEntry{Name: d.ID, Description: d.Description, Origin: d.Origin()})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
