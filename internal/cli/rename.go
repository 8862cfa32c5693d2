package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cvkit-labs/cvkit/internal/rename"
)

func init() {
	rootCmd.AddCommand(renameCmd)
}

var renameCmd = &cobra.Command{
	Use:   "rename <source-dir> <dest-dir>",
	Short: "Collect validated.tsv tables under language-qualified names",
	Long: `Recursively find every validated.tsv under the source directory and
copy it to the destination directory as
<LanguageName>_<code>_validated.tsv. Existing destination files are
left untouched.

Example:
  cvkit rename /data/common_voice /data/renamed_tsvs`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := rename.Run(args[0], args[1])
		if err != nil {
			return err
		}

		if report.Found == 0 {
			fmt.Printf("No %s files found under %s.\n", rename.MetadataFileName, args[0])
			return nil
		}

		fmt.Printf("Found %d table(s): %d copied, %d skipped.\n",
			report.Found, report.Copied, report.Skipped)
		for _, msg := range report.Errors {
			fmt.Printf("  error: %s\n", msg)
		}
		return nil
	},
}
