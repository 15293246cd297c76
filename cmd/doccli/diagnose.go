package main

import (
	"github.com/spf13/cobra"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor"
)

func newDiagnoseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose FILE.pdf",
		Short: "Report the structure of a PDF and whether its text can be extracted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args[0], domain.ContentTypePDF)
			if err != nil {
				return err
			}
			ex := extractor.New(extractor.Options{Logger: root.logger(cmd)})
			diag, err := usecase.NewDiagnoseUseCase(ex, ex).Diagnose(cmd.Context(), input.name, input.contentType, input.content)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), diag)
		},
	}
}
