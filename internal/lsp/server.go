// Package lsp is a diagnostics-only language server for ripple sources.
package lsp

import (
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lsName = "ripple-lsp"

var log = commonlog.GetLogger("ripple.lsp")

type Server struct {
	store   *Store
	ws      *Workspace
	version string

	handler protocol.Handler
	server  *glspserver.Server
}

func NewServer(version string) *Server {
	s := &Server{store: NewStore(), version: version}
	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}
	s.server = glspserver.NewServer(&s.handler, lsName, false)
	return s
}

// RunStdio serves on stdin/stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := "."
	if params.RootURI != nil {
		root = URIToPath(*params.RootURI)
	} else if params.RootPath != nil {
		root = *params.RootPath
	}
	if root == "" {
		root = "."
	}
	s.ws = NewWorkspace(root)
	log.Info("initialized", "root", s.ws.Root)

	full := protocol.TextDocumentSyncKindFull
	caps := s.handler.CreateServerCapabilities()
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &full,
		Save:      protocol.SaveOptions{IncludeText: &protocol.False},
	}
	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: ptrString(s.version),
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.store.Set(uri, params.TextDocument.Text)
	s.publish(ctx.Notify, uri, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}
	uri := params.TextDocument.URI
	s.store.Set(uri, text)
	s.publish(ctx.Notify, uri, text)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if text, ok := s.store.Get(uri); ok {
		s.publish(ctx.Notify, uri, text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.store.Delete(uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publish sends the diagnostics of one document. Non-ripple documents get
// an empty list.
func (s *Server) publish(notify glsp.NotifyFunc, uri, text string) {
	params := &protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: []protocol.Diagnostic{}}
	path := URIToPath(uri)
	if path != "" && strings.HasSuffix(strings.ToLower(path), ".rpl") {
		ws := s.ws
		if ws == nil {
			ws = NewWorkspace(".")
		}
		ds := ws.Analyze(path, text, s.store.Overlays())
		params.Diagnostics = ToLspDiagnostics(text, ds)
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}
