package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfdata/subjectwatch/internal/diff"
	"github.com/shelfdata/subjectwatch/internal/snapstore"
)

// newDiffCmd creates the 'diff' subcommand: a structural comparison of two
// snapshot files.
func newDiffCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diff <old-snapshot> <new-snapshot>",
		Short: "Compare two snapshot files and print the change report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiffCommand(cmd, args[0], args[1], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the change report as JSON")
	return cmd
}

func runDiffCommand(cmd *cobra.Command, oldPath, newPath string, asJSON bool) error {
	oldSnap, err := snapstore.LoadFile(oldPath)
	if err != nil {
		return err
	}
	newSnap, err := snapstore.LoadFile(newPath)
	if err != nil {
		return err
	}

	report, err := diff.Diff(oldSnap, newSnap)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if report.Empty() {
		fmt.Fprintln(out, "no changes")
		return nil
	}
	for _, category := range report.AddedCategories {
		fmt.Fprintf(out, "+ category %s (%d entries)\n", category.Heading, len(category.Entries))
	}
	for _, category := range report.RemovedCategories {
		fmt.Fprintf(out, "- category %s (%d entries)\n", category.Heading, len(category.Entries))
	}
	for _, change := range report.AddedEntries {
		fmt.Fprintf(out, "+ %s  %s / %s\n", change.Entry.Code, change.Heading, change.Entry.Label)
	}
	for _, change := range report.RemovedEntries {
		fmt.Fprintf(out, "- %s  %s / %s\n", change.Entry.Code, change.Heading, change.Entry.Label)
	}
	return nil
}
