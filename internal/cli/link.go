package cli

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cvkit-labs/cvkit/internal/linker"
	"github.com/cvkit-labs/cvkit/internal/metadata"
	"github.com/cvkit-labs/cvkit/internal/rename"
)

var (
	linkColumn    string
	linkPolicy    string
	linkClipExt   string
	linkWorkers   int
	linkRecursive bool
)

func init() {
	linkCmd.Flags().StringVar(&linkColumn, "column", "", "Metadata column holding clip filenames (default from config)")
	linkCmd.Flags().StringVar(&linkPolicy, "on-conflict", "", "Existing-link policy: skip, overwrite, fail (default from config)")
	linkCmd.Flags().StringVar(&linkClipExt, "clip-ext", "", "Replace the metadata filename extension, e.g. .wav for converted clips")
	linkCmd.Flags().IntVar(&linkWorkers, "workers", 1, "Link-creation workers")
	linkCmd.Flags().BoolVar(&linkRecursive, "recursive", false, "Treat the first argument as a tree of datasets")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link <metadata.tsv> <clips-dir> <dest-dir>",
	Short: "Create symlinks for the validated subset of a clips directory",
	Long: `Read the clip filename column of a validated.tsv table and create a
symbolic link in the destination directory for every clip present in the
clips directory. Missing clips are reported but do not fail the run.

With --recursive, arguments are <cv-root> <dest-root>: every dataset
under cv-root (identified by its validated.tsv) is linked into
<dest-root>/<dataset-dir-name>.

Example:
  cvkit link cv-corpus-21.0-2025-03-14/ab/validated.tsv cv-corpus-21.0-2025-03-14/ab/clips validated/ab
  cvkit link --recursive --clip-ext .wav /data/common_voice /symlinks/common_voice`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := linkPolicy
		if policy == "" {
			policy = cfg.OnConflict
		}
		if _, ok := linker.ParsePolicy(policy); !ok {
			return fmt.Errorf("unknown conflict policy %q (want skip, overwrite, or fail)", policy)
		}

		column := linkColumn
		if column == "" {
			column = cfg.Column
		}

		if linkRecursive {
			if len(args) != 2 {
				return fmt.Errorf("--recursive takes <cv-root> <dest-root>")
			}
			return linkTree(args[0], args[1], column, linker.Policy(policy))
		}

		if len(args) != 3 {
			return fmt.Errorf("expected <metadata.tsv> <clips-dir> <dest-dir>")
		}

		report, err := linkDataset(args[0], args[1], args[2], column, linker.Policy(policy))
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

// linkDataset links one metadata table against one clips directory.
func linkDataset(metadataPath, clipsDir, destDir, column string, policy linker.Policy) (*linker.Report, error) {
	src, err := metadata.Open(metadataPath, column)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return linker.Build(src, linker.Options{
		ClipsDir: clipsDir,
		DestDir:  destDir,
		Policy:   policy,
		ClipExt:  linkClipExt,
		Workers:  linkWorkers,
	})
}

// linkTree finds every dataset under root and links it into its own
// subdirectory of destRoot. Datasets without a clips directory are
// skipped with a warning.
func linkTree(root, destRoot, column string, policy linker.Policy) error {
	processed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != rename.MetadataFileName {
			return nil
		}

		datasetDir := filepath.Dir(path)
		clipsDir := filepath.Join(datasetDir, "clips")
		if info, err := os.Stat(clipsDir); err != nil || !info.IsDir() {
			slog.Warn("dataset has no clips directory, skipping", "dataset", datasetDir)
			return nil
		}

		destDir := filepath.Join(destRoot, filepath.Base(datasetDir))
		fmt.Printf("Linking %s -> %s\n", datasetDir, destDir)

		report, err := linkDataset(path, clipsDir, destDir, column, policy)
		if err != nil {
			return err
		}
		printReport(report)
		processed++
		return nil
	})
	if err != nil {
		return err
	}

	if processed == 0 {
		return fmt.Errorf("no %s files found under %s", rename.MetadataFileName, root)
	}
	fmt.Printf("Linked %d dataset(s).\n", processed)
	return nil
}

func printReport(r *linker.Report) {
	fmt.Printf("  %d created, %d skipped, %d failed, %d missing\n",
		r.Created, r.Skipped, r.Failed, len(r.Missing))
	for _, name := range r.Missing {
		fmt.Printf("    missing source: %s\n", name)
	}
	for _, msg := range r.Errors {
		fmt.Printf("    error: %s\n", msg)
	}
}
