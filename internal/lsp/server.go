// Package lsp serves the step engine over the Language Server Protocol.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/pkg/core"
	"github.com/oakwood-commons/stepls/pkg/logger"
	"github.com/oakwood-commons/stepls/pkg/settings"
)

// Engine is the part of core.Engine the server drives.
type Engine interface {
	ValidateDocument(text string) []protocol.Diagnostic
	GetDefinition(line string, n int, text string) *protocol.Location
	GetCompletion(line string, pos protocol.Position, text string) []protocol.CompletionItem
	ResolveCompletion(item protocol.CompletionItem) protocol.CompletionItem
	ValidateConfiguration() []protocol.Diagnostic
	SetConfig(cfg *config.Config) error
	Reload() error
	Config() *config.Config
	Root() string
}

var _ Engine = (*core.Engine)(nil)

// Server tracks open documents and answers editor requests.
type Server struct {
	engine Engine
	log    logr.Logger

	conn jsonrpc2.Conn

	mu       sync.Mutex
	docs     map[protocol.DocumentURI]string
	shutdown bool
	onExit   func()
	exitOnce sync.Once
}

// NewServer creates a server over engine.
func NewServer(engine Engine, lgr logr.Logger) *Server {
	return &Server{
		engine: engine,
		log:    lgr,
		docs:   make(map[protocol.DocumentURI]string),
	}
}

func isFeature(u protocol.DocumentURI) bool {
	return strings.HasSuffix(string(u), ".feature")
}

// Serve runs the server on rwc until the client exits or ctx ends.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.mu.Lock()
	s.conn = conn
	s.onExit = func() { _ = conn.Close() }
	s.mu.Unlock()

	conn.Go(ctx, s.Handler())
	select {
	case <-ctx.Done():
		_ = conn.Close()
		<-conn.Done()
		return ctx.Err()
	case <-conn.Done():
	}
	if err := conn.Err(); err != nil && !isClosed(err) {
		return fmt.Errorf("lsp connection: %w", err)
	}
	return nil
}

func isClosed(err error) bool {
	return err == io.EOF || strings.Contains(err.Error(), "closed")
}

// Document returns the last known text of an open document.
func (s *Server) Document(u protocol.DocumentURI) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[u]
	return text, ok
}

// Initialize applies client settings and announces capabilities.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	if len(raw(params.InitializationOptions)) > 0 {
		if err := s.applySettings(raw(params.InitializationOptions)); err != nil {
			s.log.Error(err, "ignoring initialization options")
		}
	}
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider:   true,
				TriggerCharacters: []string{" "},
			},
			DefinitionProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    settings.CliBinaryName,
			Version: settings.VersionInformation.BuildVersion,
		},
	}, nil
}

// raw re-encodes an arbitrary decoded JSON value.
func raw(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	if m, ok := v.(json.RawMessage); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (s *Server) applySettings(data json.RawMessage) error {
	var wrapper struct {
		Stepls json.RawMessage `json:"stepls"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Stepls) > 0 {
		data = wrapper.Stepls
	}
	cfg, err := config.ParseJSON(data)
	if err != nil {
		return err
	}
	path := filepath.Join(s.engine.Root(), filepath.FromSlash(config.EditorSettingsFile))
	if text, ok := s.Document(protocol.DocumentURI(uri.File(path))); ok {
		cfg.AttachSource(path, []byte(text))
	} else if text, err := os.ReadFile(path); err == nil {
		cfg.AttachSource(path, text)
	}
	return s.engine.SetConfig(cfg)
}


// DidOpen stores the document and publishes its diagnostics.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.store(params.TextDocument.URI, params.TextDocument.Text)
	return s.publish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// DidChange replaces the document with the last full-text change and
// republishes its diagnostics.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.store(params.TextDocument.URI, text)
	return s.publish(ctx, params.TextDocument.URI, text)
}

// DidClose forgets the document and clears its diagnostics.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
	return s.notify(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
}

// DidChangeConfiguration applies new client settings.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	if err := s.applySettings(raw(params.Settings)); err != nil {
		s.log.Error(err, "ignoring configuration change")
		return nil
	}
	if err := s.republishAll(ctx); err != nil {
		return err
	}
	return s.publishConfig(ctx)
}

// publishConfig sends the configuration diagnostics for the config file
// when the editor does not have it open.
func (s *Server) publishConfig(ctx context.Context) error {
	path := s.engine.Config().Path
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	u := protocol.DocumentURI(uri.File(abs))
	if _, open := s.Document(u); open {
		return nil
	}
	return s.notify(ctx, u, s.engine.ValidateConfiguration())
}

// StepsChanged reloads the engine and republishes every open document.
func (s *Server) StepsChanged(ctx context.Context) error {
	if err := s.engine.Reload(); err != nil {
		s.log.Error(err, "reloading steps")
	}
	return s.republishAll(ctx)
}

// Completion answers textDocument/completion.
func (s *Server) Completion(_ context.Context, params *protocol.CompletionParams) ([]protocol.CompletionItem, error) {
	text, line, ok := s.lineAt(params.TextDocument.URI, params.Position.Line)
	if !ok {
		return nil, nil
	}
	return s.engine.GetCompletion(line, params.Position, text), nil
}

// CompletionResolve answers completionItem/resolve.
func (s *Server) CompletionResolve(_ context.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	out := s.engine.ResolveCompletion(*item)
	return &out, nil
}

// Definition answers textDocument/definition.
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	text, line, ok := s.lineAt(params.TextDocument.URI, params.Position.Line)
	if !ok {
		return nil, nil
	}
	loc := s.engine.GetDefinition(line, int(params.Position.Line), text)
	if loc == nil {
		return nil, nil
	}
	return []protocol.Location{*loc}, nil
}

func (s *Server) store(u protocol.DocumentURI, text string) {
	s.mu.Lock()
	s.docs[u] = text
	s.mu.Unlock()
}

func (s *Server) lineAt(u protocol.DocumentURI, n uint32) (string, string, bool) {
	text, ok := s.Document(u)
	if !ok {
		return "", "", false
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if int(n) >= len(lines) {
		return text, "", true
	}
	return text, lines[n], true
}

// diagnostics returns what should be published for a document.
func (s *Server) diagnostics(u protocol.DocumentURI, text string) ([]protocol.Diagnostic, bool) {
	if isFeature(u) {
		return s.engine.ValidateDocument(text), true
	}
	if s.isConfig(u) {
		return s.engine.ValidateConfiguration(), true
	}
	return nil, false
}

func (s *Server) isConfig(u protocol.DocumentURI) bool {
	path := s.engine.Config().Path
	if path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && uri.URI(u).Filename() == abs
}

func (s *Server) publish(ctx context.Context, u protocol.DocumentURI, text string) error {
	diags, ok := s.diagnostics(u, text)
	if !ok {
		return nil
	}
	return s.notify(ctx, u, diags)
}

func (s *Server) republishAll(ctx context.Context) error {
	s.mu.Lock()
	docs := make(map[protocol.DocumentURI]string, len(s.docs))
	for u, t := range s.docs {
		docs[u] = t
	}
	s.mu.Unlock()
	for u, t := range docs {
		if err := s.publish(ctx, u, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) notify(ctx context.Context, u protocol.DocumentURI, diags []protocol.Diagnostic) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         u,
		Diagnostics: diags,
	})
}

// Handler routes JSON-RPC requests to the server methods.
func (s *Server) Handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.log.V(logger.TraceLevel).Info("request", "method", req.Method())
		s.mu.Lock()
		closing := s.shutdown
		s.mu.Unlock()
		if closing && req.Method() != protocol.MethodExit {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server is shutting down"))
		}
		switch req.Method() {
		case protocol.MethodInitialize:
			var params protocol.InitializeParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.Initialize(ctx, &params)
			return reply(ctx, result, err)

		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)

		case protocol.MethodShutdown:
			s.mu.Lock()
			s.shutdown = true
			s.mu.Unlock()
			return reply(ctx, nil, nil)

		case protocol.MethodExit:
			s.exitOnce.Do(func() {
				s.mu.Lock()
				exit := s.onExit
				s.mu.Unlock()
				if exit != nil {
					exit()
				}
			})
			return nil

		case protocol.MethodTextDocumentDidOpen:
			var params protocol.DidOpenTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidOpen(ctx, &params))

		case protocol.MethodTextDocumentDidChange:
			var params protocol.DidChangeTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidChange(ctx, &params))

		case protocol.MethodTextDocumentDidClose:
			var params protocol.DidCloseTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidClose(ctx, &params))

		case protocol.MethodWorkspaceDidChangeConfiguration:
			var params protocol.DidChangeConfigurationParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidChangeConfiguration(ctx, &params))

		case protocol.MethodTextDocumentCompletion:
			var params protocol.CompletionParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			items, err := s.Completion(ctx, &params)
			return reply(ctx, items, err)

		case protocol.MethodCompletionItemResolve:
			var item protocol.CompletionItem
			if err := json.Unmarshal(req.Params(), &item); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.CompletionResolve(ctx, &item)
			return reply(ctx, result, err)

		case protocol.MethodTextDocumentDefinition:
			var params protocol.DefinitionParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			locs, err := s.Definition(ctx, &params)
			return reply(ctx, locs, err)

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}
