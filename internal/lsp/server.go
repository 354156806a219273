package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"nulint/internal/diagfmt"
	"nulint/internal/lint"
	"nulint/internal/rules"
	"nulint/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures the language server.
type ServerOptions struct {
	Rules  []lint.Rule // defaults to the built-in registry
	Config *lint.Config
}

// Server handles stdio JSON-RPC for the nu-lint language server. One lint
// state is shared by all documents; each relint clones its own working set,
// so documents never contend on parser state.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu       sync.Mutex
	docs     map[string]*document
	disabled map[string]struct{}

	linter *lint.State
	rank   map[string]int

	shutdownRequested bool
}

// NewServer constructs a server reading requests from in and writing
// responses and notifications to out.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	ruleSet := opts.Rules
	if ruleSet == nil {
		ruleSet = rules.All()
	}
	rank := make(map[string]int, len(ruleSet))
	for i, r := range ruleSet {
		rank[r.Meta().ID] = i
	}
	return &Server{
		in:       bufio.NewReader(in),
		out:      bufio.NewWriter(out),
		docs:     make(map[string]*document),
		disabled: make(map[string]struct{}),
		linter:   lint.NewState(ruleSet, opts.Config),
		rank:     rank,
	}
}

// ruleRank orders rules by registry position; unregistered ids sort last.
func (s *Server) ruleRank(id string) int {
	if i, ok := s.rank[id]; ok {
		return i
	}
	return len(s.rank)
}

// Run serves requests until exit or EOF.
func (s *Server) Run() error {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			if errors.Is(err, ErrExit) || errors.Is(err, ErrExitWithoutShutdown) {
				return err
			}
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{kindQuickFix, kindSourceFixAll},
			},
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{DisableRuleCommand},
			},
		},
		ServerInfo: &serverInfo{
			Name:    "nu-lint",
			Version: version.Version,
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.docs = make(map[string]*document)
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil); err != nil {
			return err
		}
	}
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc := &document{
		uri:     uri,
		path:    uriToPath(uri),
		version: params.TextDocument.Version,
		text:    params.TextDocument.Text,
	}
	s.docs[uri] = doc
	s.relint(doc)
	list := s.diagnosticsFor(doc)
	s.mu.Unlock()
	return s.sendPublish(uri, list)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	if params.TextDocument.Version < doc.version {
		// Stale change from an older document version.
		s.mu.Unlock()
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	s.relint(doc)
	list := s.diagnosticsFor(doc)
	s.mu.Unlock()
	return s.sendPublish(uri, list)
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	if params.Text != nil {
		doc.text = *params.Text
	}
	s.relint(doc)
	list := s.diagnosticsFor(doc)
	s.mu.Unlock()
	return s.sendPublish(uri, list)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	_, open := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if !open {
		return nil
	}
	// Clear stale diagnostics for the closed document.
	return s.sendPublish(uri, nil)
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	if params.Command != DisableRuleCommand {
		return s.sendError(msg.ID, -32602, fmt.Sprintf("unknown command %q", params.Command))
	}
	var ruleID string
	if len(params.Arguments) == 0 || json.Unmarshal(params.Arguments[0], &ruleID) != nil || ruleID == "" {
		return s.sendError(msg.ID, -32602, "disable-rule requires a rule id argument")
	}

	s.mu.Lock()
	s.disabled[ruleID] = struct{}{}
	type republish struct {
		uri  string
		list []diagfmt.Diagnostic
	}
	var pending []republish
	for _, doc := range s.docs {
		s.relint(doc)
		pending = append(pending, republish{uri: doc.uri, list: s.diagnosticsFor(doc)})
	}
	s.mu.Unlock()

	for _, p := range pending {
		if err := s.sendPublish(p.uri, p.list); err != nil {
			return err
		}
	}
	return s.sendResponse(msg.ID, nil)
}

// diagnosticsFor converts the document's violations to wire diagnostics.
// Callers hold s.mu.
func (s *Server) diagnosticsFor(doc *document) []diagfmt.Diagnostic {
	if doc.file == nil {
		return nil
	}
	list := make([]diagfmt.Diagnostic, 0, len(doc.violations))
	for i := range doc.violations {
		list = append(list, diagfmt.ToDiagnostic(&doc.violations[i], doc.file))
	}
	return list
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

// sendPublish publishes diagnostics. An empty list is sent as [] rather
// than omitted so the client drops stale diagnostics.
func (s *Server) sendPublish(uri string, list []diagfmt.Diagnostic) error {
	if list == nil {
		list = []diagfmt.Diagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
