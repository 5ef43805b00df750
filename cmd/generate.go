package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/docquiz/internal/export"
	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/pipeline"
	"github.com/abhisek/docquiz/internal/questiongen"
	"github.com/abhisek/docquiz/internal/ui/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate questions from a PDF, DOCX or TXT file",
	Example: "  docquiz generate notes.pdf\n" +
		"  docquiz generate chapter.docx --types mcq --count 5 --format xlsx",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("types", "t", "short,long,mcq", "Comma-separated question types: short, long, mcq")
	generateCmd.Flags().IntP("count", "n", 0, "Questions per type, 1-20 (default from config, 3)")
	generateCmd.Flags().StringP("out", "o", "", "Write an export file to this path")
	generateCmd.Flags().StringP("format", "f", "", "Export format: txt, json or xlsx")
	generateCmd.Flags().BoolP("quiet", "q", false, "Do not print the questions")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]
	typesFlag, _ := cmd.Flags().GetString("types")
	count, _ := cmd.Flags().GetInt("count")
	out, _ := cmd.Flags().GetString("out")
	formatFlag, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")

	types, err := questiongen.ParseTypes(typesFlag)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return pipeline.ErrNoTypes
	}
	if !cmd.Flags().Changed("count") {
		count = cfg.Generate.Count
	}
	if err := questiongen.CheckCount(count); err != nil {
		return err
	}

	format, err := exportFormat(out, formatFlag)
	if err != nil {
		return err
	}

	repo, closeLog, err := openRequestLog()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	provider, err := llm.NewProvider(ctx, cfg.ToLLMConfig(), repo, log)
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredential) {
			return fmt.Errorf("%w\nSet GEMINI_API_KEY in your environment or .env file", err)
		}
		return err
	}

	gen := questiongen.New(provider, questiongen.DefaultConfig(), log)
	p := pipeline.New(extract.New(log), gen, log)

	res, err := p.Run(ctx, pipeline.Input{
		Path:  path,
		Ext:   filepath.Ext(path),
		Types: types,
		Count: count,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyContent) {
			return fmt.Errorf("%w: check that %s contains readable text", err, path)
		}
		return err
	}

	stdout := cmd.OutOrStdout()
	if !quiet && len(res.Questions) > 0 {
		if err := render.Questions(stdout, res.Source, res.Questions); err != nil {
			return err
		}
	}
	if err := render.Summary(cmd.ErrOrStderr(), res); err != nil {
		return err
	}

	if format != "" && len(res.Questions) > 0 {
		if out == "" {
			out = export.FileName(res.Source, format)
		}
		if err := writeExport(out, format, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", out)
	}

	if res.Failed() {
		return fmt.Errorf("no questions generated from %s", res.Source)
	}
	return nil
}

// exportFormat picks the export format from --format, else from the --out
// extension. Empty means no export was requested.
func exportFormat(out, flag string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if out == "" {
		return "", nil
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		return export.ParseFormat(ext)
	}
	return export.TXT, nil
}

func writeExport(path string, format export.Format, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.Write(f, format, res.Source, res.Questions); err != nil {
		f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	return f.Close()
}
