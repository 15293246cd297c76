package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
)

type classifyOutput struct {
	Source             string                      `json:"source"`
	Method             domain.ClassificationMethod `json:"method"`
	Fallback           bool                        `json:"fallback"`
	Reason             string                      `json:"reason,omitempty"`
	CategoryPrediction domain.Distribution         `json:"category_prediction"`
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var (
		method      string
		text        string
		contentType string
	)
	cmd := &cobra.Command{
		Use:   "classify [FILE|-]",
		Short: "Classify a document, stdin or --text into the document categories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := root.pipeline(cmd)
			if err != nil {
				return err
			}

			source := "text"
			switch {
			case text != "":
			case len(args) == 0 || args[0] == "-":
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text, source = string(raw), "stdin"
			default:
				input, err := readInput(args[0], contentType)
				if err != nil {
					return err
				}
				extraction := pipeline.Extractor.Extract(input.content, input.contentType, input.name)
				if extraction.Text == "" {
					return errors.New(extraction.Error)
				}
				text, source = extraction.Text, input.name
			}

			uc := usecase.NewClassifyTextUseCase(pipeline.Classifier, nil)
			result, err := uc.ClassifyText(cmd.Context(), text, domain.ClassificationMethod(method))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), classifyOutput{
				Source:             source,
				Method:             domain.ClassificationMethod(method),
				Fallback:           result.Fallback,
				Reason:             result.Reason,
				CategoryPrediction: result.Scores,
			})
		},
	}
	cmd.Flags().StringVar(&method, "method", string(domain.MethodChunked), "chunked or normalized")
	cmd.Flags().StringVar(&text, "text", "", "classify this text instead of a file")
	cmd.Flags().StringVar(&contentType, "content-type", "", "override the content type inferred from the extension")
	return cmd
}
