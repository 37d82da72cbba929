package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/books"
	"github.com/shelfdata/subjectwatch/internal/rank"
	"github.com/shelfdata/subjectwatch/internal/snapstore"
	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

// newMatchCmd creates the 'match' subcommand: suggest the best taxonomy entry
// for one book.
func newMatchCmd() *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "match <volume-id>",
		Short: "Rank taxonomy entries against a book's metadata",
		Long: `Looks up the book's description and coarse categories from the metadata
source, scores every entry of the current snapshot against them, and prints
the best match. This is a best-effort heuristic; when the metadata source has
nothing for the book, the result is "no match", not an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatchCommand(cmd, args[0], snapshotPath)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot file to match against (default: the configured store)")
	return cmd
}

func runMatchCommand(cmd *cobra.Command, volumeID, snapshotPath string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	snap, err := loadSnapshot(cfg.Snapshots.Dir, cfg.Snapshots.Name, snapshotPath)
	if err != nil {
		return err
	}

	client, err := books.NewClient(books.Config{
		BaseURL: cfg.Books.BaseURL,
		Timeout: cfg.BooksTimeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("init books client: %w", err)
	}

	out := cmd.OutOrStdout()
	meta, err := client.Lookup(cmd.Context(), volumeID)
	if err != nil {
		// Metadata problems degrade to "no match" rather than failing.
		if !errors.Is(err, books.ErrNotFound) {
			logger.Warn("book metadata lookup failed", zap.String("volume_id", volumeID), zap.Error(err))
		}
		fmt.Fprintln(out, "no match")
		return nil
	}

	candidates := snapshotCandidates(snap)
	best, ok := rank.Pick(candidates, rank.Signals{
		Description:     meta.Description,
		LooseCategories: meta.LooseCategories,
	})
	if !ok {
		fmt.Fprintln(out, "no match")
		return nil
	}

	fmt.Fprintf(out, "%s  %s\n", best.Entry.Code, best.FullLabel)
	return nil
}

func loadSnapshot(dir, name, override string) (taxonomy.Snapshot, error) {
	if override != "" {
		return snapstore.LoadFile(override)
	}
	store, err := snapstore.New(dir)
	if err != nil {
		return taxonomy.Snapshot{}, fmt.Errorf("init snapshot store: %w", err)
	}
	return store.Load(name)
}

func snapshotCandidates(snap taxonomy.Snapshot) []rank.Candidate {
	var candidates []rank.Candidate
	for _, category := range snap.Categories {
		for _, entry := range category.Entries {
			candidates = append(candidates, rank.NewCandidate(category.Heading, entry))
		}
	}
	return candidates
}
