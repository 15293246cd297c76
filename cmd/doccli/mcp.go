package main

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/document-classifier/internal/adapters/mcp"
	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	var withStore bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve classification tools over MCP on stdin/stdout",
		Long: `Serve classify_text and diagnose_pdf as MCP tools.
With --with-store the server also connects to Postgres, NATS and the file
store and adds list_documents and get_document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := root.logger(cmd)
			cfg := root.config()

			if withStore {
				app, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Logger: logger})
				if err != nil {
					return err
				}
				defer app.Close()
				return mcpadapter.ServeStdio(mcpadapter.NewServer(version, mcpadapter.Services{
					Classifier: app.TextClassify,
					Documents:  app.Documents,
					Diagnoser:  app.Diagnoser,
				}))
			}

			pipeline, err := bootstrap.NewPipeline(cmd.Context(), cfg, bootstrap.Options{Logger: logger})
			if err != nil {
				return err
			}
			return mcpadapter.ServeStdio(mcpadapter.NewServer(version, mcpadapter.Services{
				Classifier: usecase.NewClassifyTextUseCase(pipeline.Classifier, nil),
				Diagnoser:  usecase.NewDiagnoseUseCase(pipeline.Extractor, pipeline.Extractor),
			}))
		},
	}
	cmd.Flags().BoolVar(&withStore, "with-store", false, "also expose stored documents")
	return cmd
}
