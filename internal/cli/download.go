package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cvkit-labs/cvkit/internal/downloader"
	"github.com/cvkit-labs/cvkit/internal/manifest"
)

var (
	downloadManifest    string
	downloadUntar       bool
	downloadWarnSize    bool
	downloadConcurrency int
)

func init() {
	downloadCmd.Flags().StringVar(&downloadManifest, "manifest", "", "Manifest file (default <download-path>/"+manifest.DefaultFileName+")")
	downloadCmd.Flags().BoolVar(&downloadUntar, "untar", false, "Extract downloaded .tar.gz archives")
	downloadCmd.Flags().BoolVar(&downloadWarnSize, "warnsize", false, "Estimate the total uncompressed size of downloaded archives")
	downloadCmd.Flags().IntVar(&downloadConcurrency, "concurrency", 0, "Simultaneous downloads (default from config)")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <download-path>",
	Short: "Download the archives named by a manifest",
	Long: `Download every dataset archive listed in a manifest into per-language
directories under the download path. Complete files are skipped and
partial files are resumed, so the batch can be re-run on another machine
or after an interruption.

Example:
  cvkit download /data/common_voice --untar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloadPath := args[0]

		manifestPath := downloadManifest
		if manifestPath == "" {
			manifestPath = filepath.Join(downloadPath, manifest.DefaultFileName)
		}

		result, err := manifest.ValidateFile(manifestPath)
		if err != nil {
			return err
		}
		if !result.Valid {
			for _, issue := range result.Issues {
				fmt.Printf("  %s: %s\n", issue.Path, issue.Message)
			}
			return fmt.Errorf("manifest %s failed validation", manifestPath)
		}

		m, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		if err := m.ResolvePaths(downloadPath); err != nil {
			return err
		}

		concurrency := downloadConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Concurrency
		}

		d := downloader.New(downloader.WithConcurrency(concurrency))
		batch, err := d.DownloadAll(cmd.Context(), m)
		if err != nil {
			return err
		}

		fmt.Printf("Downloaded %d archive(s), %d already complete.\n", batch.Downloaded, batch.Skipped)
		for _, msg := range batch.Errors {
			fmt.Printf("  error: %s\n", msg)
		}

		if downloadWarnSize {
			total, inspected, err := downloader.UncompressedSize(downloadPath)
			if err != nil {
				return err
			}
			totalMB := float64(total) / (1024 * 1024)
			fmt.Printf("WARNING: %d archive(s) would uncompress to approximately %.2f MB (%.2f GB).\n",
				inspected, totalMB, totalMB/1024)
		}

		if downloadUntar {
			extracted, err := downloader.ExtractAll(downloadPath)
			if err != nil {
				return err
			}
			fmt.Printf("Extracted %d archive(s).\n", extracted)
		}

		return nil
	},
}
