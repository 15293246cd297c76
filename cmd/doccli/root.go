package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

type rootOptions struct {
	provider string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "doccli",
		Short:         "Extract, diagnose and classify documents from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "embedding provider (ollama, tfidf); defaults to EMBEDDING_PROVIDER")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newExtractCmd(opts),
		newDiagnoseCmd(opts),
		newClassifyCmd(opts),
		newMCPCmd(opts),
	)
	return cmd
}

func (o *rootOptions) config() config.Config {
	cfg := config.Load()
	if o.provider != "" {
		cfg.EmbeddingProvider = o.provider
	}
	return cfg
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	logger := logging.New(cmd.ErrOrStderr(), "doccli", o.logLevel, "text")
	slog.SetDefault(logger)
	return logger
}

func (o *rootOptions) pipeline(cmd *cobra.Command) (*bootstrap.Pipeline, error) {
	return bootstrap.NewPipeline(cmd.Context(), o.config(), bootstrap.Options{Logger: o.logger(cmd)})
}

type inputFile struct {
	name        string
	contentType string
	content     []byte
}

func readInput(path, contentType string) (*inputFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if contentType == "" {
		detected, ok := domain.ContentTypeForFilename(path)
		if !ok {
			return nil, fmt.Errorf("cannot infer content type of %s, pass --content-type", path)
		}
		contentType = detected
	}
	return &inputFile{name: path, contentType: contentType, content: content}, nil
}

func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
