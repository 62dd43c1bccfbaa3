package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kdduha/audioflow/internal/export"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/pipeline"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		output   string
		mimeType string
		docx     bool
	)
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert one recording and write the .drawio document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			file := media.FromPath(args[0])
			if mimeType != "" {
				file.MIMEType = mimeType
			}

			result, err := a.pipeline.Run(ctx, file, func(s models.Status) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s...\n", s)
			})
			if err != nil {
				return fmt.Errorf("%s (%w)", pipeline.MessageOf(err), err)
			}

			if output == "" {
				output = filepath.Join(filepath.Dir(args[0]), result.FileName)
			}
			if err := os.WriteFile(output, []byte(result.XML), 0o644); err != nil {
				return fmt.Errorf("write diagram: %w", err)
			}
			if docx {
				summaryPath := export.FileName(output)
				if err := export.SummaryDocx(result.FileName, result.Summary, summaryPath); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "summary written to %s\n", summaryPath)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "diagram written to %s\n", output)
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to <name>.drawio next to the input)")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "Media type of the input when the extension is not enough")
	cmd.Flags().BoolVar(&docx, "docx", false, "Also write the summary as a .docx next to the diagram")
	return cmd
}
