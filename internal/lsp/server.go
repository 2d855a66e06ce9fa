package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/config"
	"github.com/raven-lang/raven/internal/diag"
	"github.com/raven-lang/raven/internal/parser"
	"github.com/raven-lang/raven/internal/types"
)

// Server represents the LSP server.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	out    io.Writer
	outMu  sync.Mutex
	logger *log.Logger

	// Root path for workspace
	rootPath string
}

// Document represents an open document. Program and Checker hold the last
// version that parsed, so editing features keep working while the user is
// mid-edit.
type Document struct {
	URI     string
	Content string
	Version int
	Program *ast.BlockStmt
	Checker *types.Checker
	Err     *diag.Diagnostic
}

// NewServer creates a new LSP server. A nil logger discards warnings.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		Documents: make(map[string]*Document),
		logger:    logger,
	}
}

// Run serves requests read from r, writing responses and notifications to w,
// until the client sends exit, r is exhausted or ctx is done.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = w
	reader := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if body == nil {
			continue
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			s.logger.Printf("Failed to parse JSON-RPC message: %v", err)
			continue
		}
		if msg.Method == "exit" {
			return nil
		}

		response := s.handleMessage(ctx, &msg)
		if response != nil {
			if err := s.send(response); err != nil {
				s.logger.Printf("Failed to send response: %v", err)
			}
		}
	}
}

// readMessage reads one Content-Length framed body. A frame without a usable
// length yields a nil body.
func readMessage(reader *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, nil
		}
		contentLength = n
	}
	if contentLength < 0 {
		return nil, nil
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents a JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func invalidParams(msg *jsonrpcMessage, err error) *jsonrpcMessage {
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error: &jsonrpcError{
			Code:    -32602,
			Message: fmt.Sprintf("Invalid params: %v", err),
		},
	}
}

// handleMessage processes a JSON-RPC message and returns a response.
func (s *Server) handleMessage(ctx context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "shutdown":
		return &jsonrpcMessage{JSONRPC: "2.0", ID: msg.ID}
	default:
		if msg.ID != nil {
			return &jsonrpcMessage{
				JSONRPC: "2.0",
				ID:      msg.ID,
				Error: &jsonrpcError{
					Code:    -32601,
					Message: fmt.Sprintf("Method not found: %s", msg.Method),
				},
			}
		}
		return nil
	}
}

// send writes one framed message.
func (s *Server) send(msg *jsonrpcMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

// InitializeParams represents the initialize request parameters.
type InitializeParams struct {
	ProcessID    int                    `json:"processId,omitempty"`
	RootPath     string                 `json:"rootPath,omitempty"`
	RootURI      string                 `json:"rootUri,omitempty"`
	Capabilities map[string]interface{} `json:"capabilities,omitempty"`
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync   int                    `json:"textDocumentSync"`
	CompletionProvider map[string]interface{} `json:"completionProvider,omitempty"`
	HoverProvider      bool                   `json:"hoverProvider"`
	DefinitionProvider bool                   `json:"definitionProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Version is reported in the initialize response.
var Version = "0.1.0"

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	var params InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return invalidParams(msg, err)
		}
	}

	if params.RootURI != "" {
		s.rootPath = uriToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.rootPath = params.RootPath
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // full document sync
			CompletionProvider: map[string]interface{}{
				"triggerCharacters": []string{".", ":"},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{
			Name:    "raven-lsp",
			Version: Version,
		},
	}

	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result:  result,
	}
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didOpen params: %v", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didChange params: %v", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	s.mu.Lock()
	doc, ok := s.Documents[params.TextDocument.URI]
	if ok {
		// full sync: the last change holds the whole text
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version
		s.updateDocument(doc)
	}
	s.mu.Unlock()

	if ok {
		s.publishDiagnostics(doc)
	}
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("Failed to parse didClose params: %v", err)
		return
	}

	s.mu.Lock()
	delete(s.Documents, params.TextDocument.URI)
	s.mu.Unlock()

	// clear the editor's markers for the closed file
	s.publish(params.TextDocument.URI, []Diagnostic{})
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// updateDocument parses and type checks a document. Imports resolve through
// the raven.yaml governing the file, or else through the workspace root.
func (s *Server) updateDocument(doc *Document) {
	path := uriToPath(doc.URI)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	doc.Err = nil
	prog, err := parser.ParseSource(path, doc.Content)
	if err != nil {
		s.setError(doc, err)
		return
	}

	opts := []types.Option{types.WithFilename(path)}
	m, err := config.FindOrDefault(filepath.Dir(path))
	if err == nil && m.Path == "" && s.rootPath != "" {
		// no manifest above the file: resolve against the workspace
		m, err = config.FindOrDefault(s.rootPath)
	}
	if err == nil {
		opts = append(opts, types.WithResolver(m.Resolver()))
	} else {
		s.logger.Printf("manifest for %s: %v", path, err)
	}
	checker := types.NewChecker(opts...)
	if _, err := checker.Check(prog); err != nil {
		s.setError(doc, err)
	}
	doc.Program = prog
	doc.Checker = checker
}

func (s *Server) setError(doc *Document, err error) {
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		d = diag.New(diag.KindType, err.Error(), diag.Span{})
	}
	doc.Err = &d
}

// publishDiagnostics sends the document's diagnostic, or an empty list.
func (s *Server) publishDiagnostics(doc *Document) {
	out := []Diagnostic{}
	if d := doc.Err; d != nil {
		out = append(out, Diagnostic{
			Range:    spanRange(d.Span),
			Severity: 1, // error
			Source:   "raven",
			Message:  d.Message,
			Code:     d.Kind.String(),
		})
	}
	s.publish(doc.URI, out)
}

func (s *Server) publish(uri string, diagnostics []Diagnostic) {
	params, _ := json.Marshal(map[string]interface{}{
		"uri":         uri,
		"diagnostics": diagnostics,
	})
	notification := &jsonrpcMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  params,
	}
	if err := s.send(notification); err != nil {
		s.logger.Printf("Failed to publish diagnostics: %v", err)
	}
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// spanRange converts a span to an LSP range. Both count lines and columns
// from zero.
func spanRange(span diag.Span) Range {
	width := max(span.Length, 1)
	return Range{
		Start: Position{Line: span.Line, Character: span.Column},
		End:   Position{Line: span.Line, Character: span.Column + width},
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		// Handle Windows paths
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		return path
	}
	return uri
}

// positionToOffset converts a zero-based line and character into a byte
// offset of content. Characters are counted in runes.
func positionToOffset(content string, pos Position) int {
	line, col := 0, 0
	for i, r := range content {
		if line == pos.Line && col == pos.Character {
			return i
		}
		if r == '\n' {
			if line == pos.Line {
				return i
			}
			line++
			col = 0
			continue
		}
		col++
	}
	return len(content)
}
