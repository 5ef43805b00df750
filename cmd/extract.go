package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/ui/render"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text extracted from a PDF, DOCX or TXT file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		preview, _ := cmd.Flags().GetInt("preview")

		text, err := extract.New(log).Extract(extract.Document{Path: path, Ext: filepath.Ext(path)})
		if err != nil {
			return err
		}
		if text == "" {
			return fmt.Errorf("no text could be extracted from %s", path)
		}

		if preview <= 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		}
		return render.Preview(cmd.OutOrStdout(), filepath.Base(path), text, preview)
	},
}

func init() {
	extractCmd.Flags().IntP("preview", "p", 0, fmt.Sprintf("Show at most N characters with a header (e.g. %d)", extract.PreviewLimit))
}
