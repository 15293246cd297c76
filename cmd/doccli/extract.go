package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the text extracted from a PDF, DOCX, XLSX or plain-text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args[0], contentType)
			if err != nil {
				return err
			}
			ex := extractor.New(extractor.Options{Logger: root.logger(cmd)})
			extraction := ex.Extract(input.content, input.contentType, input.name)
			if extraction.Text == "" {
				return errors.New(extraction.Error)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), extraction.Text)
			return err
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "override the content type inferred from the extension")
	return cmd
}
