package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cvkit-labs/cvkit/internal/manifest"
	"github.com/cvkit-labs/cvkit/internal/scraper"
)

var scrapeOut string

func init() {
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "Manifest file to write (default <download-path>/"+manifest.DefaultFileName+")")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <download-path>",
	Short: "Discover dataset download URLs and save them as a manifest",
	Long: `Fetch the Common Voice datasets page, extract the archive download
URL for every language at the configured corpus version, and save the
result as a manifest for the download command.

Example:
  cvkit scrape /data/common_voice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloadPath := args[0]
		if err := os.MkdirAll(downloadPath, 0755); err != nil {
			return fmt.Errorf("creating download path %s: %w", downloadPath, err)
		}

		out := scrapeOut
		if out == "" {
			out = filepath.Join(downloadPath, manifest.DefaultFileName)
		}

		fmt.Printf("Collecting dataset URLs for Common Voice Corpus %s...\n", cfg.CorpusVersion)
		s := scraper.New(
			scraper.WithPageURL(cfg.DatasetsURL),
			scraper.WithVersion(cfg.CorpusVersion),
			scraper.WithEmail(cfg.Email),
		)

		m, totalMB, err := s.Fetch(cmd.Context())
		if err != nil {
			return err
		}

		if err := manifest.Save(out, m); err != nil {
			return err
		}

		fmt.Printf("Found %d language dataset(s), %.2f MB (%.2f GB) advertised.\n",
			len(m), totalMB, totalMB/1024)
		fmt.Printf("Manifest saved to %s.\n", out)
		return nil
	},
}
