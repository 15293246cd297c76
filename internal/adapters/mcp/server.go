// Package mcpadapter exposes classification and document lookups as MCP tools.
package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const serverName = "document-classifier"

// Services are the use cases offered as tools. Nil entries leave their
// tools unregistered.
type Services struct {
	Classifier ports.TextClassifier
	Documents  ports.DocumentReader
	Diagnoser  ports.PDFDiagnoser
}

type handlers struct {
	svc Services
}

func NewServer(version string, svc Services) *server.MCPServer {
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))
	h := &handlers{svc: svc}

	if svc.Classifier != nil {
		s.AddTool(mcp.NewTool("classify_text",
			mcp.WithDescription("Classify text into the document categories and return the confidence distribution."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to classify")),
			mcp.WithString("method",
				mcp.Enum(string(domain.MethodChunked), string(domain.MethodNormalized)),
				mcp.Description("chunked (default) averages per-chunk similarity; normalized compares the whole text once"),
			),
		), h.classifyText)
	}
	if svc.Documents != nil {
		s.AddTool(mcp.NewTool("list_documents",
			mcp.WithDescription("List stored documents newest first."),
			mcp.WithNumber("limit", mcp.Description("Page size, 1..100, default 50")),
			mcp.WithNumber("offset", mcp.Description("Number of documents to skip")),
			mcp.WithString("category", mcp.Description("Only documents whose prediction mentions this category")),
		), h.listDocuments)
		s.AddTool(mcp.NewTool("get_document",
			mcp.WithDescription("Fetch one stored document with its extracted text and prediction."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		), h.getDocument)
	}
	if svc.Diagnoser != nil {
		s.AddTool(mcp.NewTool("diagnose_pdf",
			mcp.WithDescription("Inspect a PDF and report why text extraction may fail."),
			mcp.WithString("filename", mcp.Required(), mcp.Description("Original file name")),
			mcp.WithString("content_base64", mcp.Required(), mcp.Description("PDF bytes, base64 encoded")),
		), h.diagnosePDF)
	}
	return s
}

// ServeStdio blocks serving the tools over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *handlers) classifyText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	method := domain.ClassificationMethod(request.GetString("method", string(domain.MethodChunked)))

	result, err := h.svc.Classifier.ClassifyText(ctx, text, method)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{
		"category_prediction": result.Scores,
		"method":              method,
		"fallback":            result.Fallback,
	})
}

func (h *handlers) listDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := h.svc.Documents.List(ctx, domain.ListOptions{
		Limit:    request.GetInt("limit", 0),
		Offset:   request.GetInt("offset", 0),
		Category: domain.Category(request.GetString("category", "")),
	})
	if err != nil {
		return toolError(err), nil
	}
	// Summaries only; full text is available through get_document.
	items := make([]map[string]any, 0, len(page.Documents))
	for _, doc := range page.Documents {
		items = append(items, map[string]any{
			"id":                  doc.ID,
			"filename":            doc.Filename,
			"content_type":        doc.ContentType,
			"size":                doc.Size,
			"uploaded_at":         doc.UploadedAt,
			"category_prediction": doc.CategoryPrediction,
		})
	}
	return jsonResult(map[string]any{"data": items, "pagination": page.Pagination})
}

func (h *handlers) getDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := h.svc.Documents.GetByID(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(doc)
}

func (h *handlers) diagnosePDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	encoded, err := request.RequireString("content_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError("content_base64 is not valid base64"), nil
	}

	diag, err := h.svc.Diagnoser.Diagnose(ctx, filename, domain.ContentTypePDF, content)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(diag)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if coded, ok := domain.AsCoded(err); ok {
		return mcp.NewToolResultError(coded.Code + ": " + coded.Message)
	}
	return mcp.NewToolResultError(err.Error())
}
