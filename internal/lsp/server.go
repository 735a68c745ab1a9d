package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uvs-community/uvs-dev-tools/internal/diag"
	"github.com/uvs-community/uvs-dev-tools/internal/refset"
	"github.com/uvs-community/uvs-dev-tools/internal/units"
	"github.com/uvs-community/uvs-dev-tools/internal/validator"
)

type JsonRpcMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
}

type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type PublishDiagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []LspDiagnostic `json:"diagnostics"`
}

type LspDiagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Code     string `json:"code"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

type Hover struct {
	Contents any `json:"contents"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Server validates open C# documents against a fixed reference set and
// answers unit hovers from the port registry. Documents live in memory only;
// nothing is persisted between sessions.
type Server struct {
	set      *refset.Set
	registry *units.Registry

	docs map[string]string // uri -> current text
	out  io.Writer
}

func NewServer(set *refset.Set, registry *units.Registry) *Server {
	return &Server{
		set:      set,
		registry: registry,
		docs:     make(map[string]string),
		out:      os.Stdout,
	}
}

func (s *Server) Run() {
	reader := bufio.NewReader(os.Stdin)
	for {
		msg, err := readMessage(reader)
		if err != nil {
			if err == io.EOF {
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading message: %v\n", err)
			continue
		}

		s.handleMessage(msg)
	}
}

func readMessage(reader *bufio.Reader) (*JsonRpcMessage, error) {
	var contentLength int
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}

	body := make([]byte, contentLength)
	_, err := io.ReadFull(reader, body)
	if err != nil {
		return nil, err
	}

	var msg JsonRpcMessage
	err = json.Unmarshal(body, &msg)
	return &msg, err
}

func (s *Server) handleMessage(msg *JsonRpcMessage) {
	switch msg.Method {
	case "initialize":
		s.respond(msg.ID, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync": 1, // Full sync
				"hoverProvider":    true,
			},
		})
	case "initialized":
		// Do nothing
	case "shutdown":
		s.respond(msg.ID, nil)
	case "exit":
		os.Exit(0)
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.docs[params.TextDocument.URI] = params.TextDocument.Text
			s.publishDiagnostics(params.TextDocument.URI)
		}
	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil && len(params.ContentChanges) > 0 {
			s.docs[params.TextDocument.URI] = params.ContentChanges[0].Text
			s.publishDiagnostics(params.TextDocument.URI)
		}
	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			delete(s.docs, params.TextDocument.URI)
			s.send(JsonRpcMessage{
				Jsonrpc: "2.0",
				Method:  "textDocument/publishDiagnostics",
				Params:  mustMarshal(PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []LspDiagnostic{}}),
			})
		}
	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.respond(msg.ID, s.handleHover(params))
		} else {
			s.respond(msg.ID, nil)
		}
	}
}

func (s *Server) publishDiagnostics(uri string) {
	text, ok := s.docs[uri]
	if !ok {
		return
	}

	diags, err := validator.ValidateSource(context.Background(), text, s.set, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error validating %s: %v\n", uri, err)
		return
	}

	out := make([]LspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, LspDiagnostic{
			Range: Range{
				Start: Position{Line: d.Line - 1, Character: d.Column - 1},
				End:   Position{Line: d.Line - 1, Character: d.Column},
			},
			Severity: lspSeverity(d.Severity),
			Code:     d.Code,
			Source:   "uvst",
			Message:  d.Message,
		})
	}

	s.send(JsonRpcMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  mustMarshal(PublishDiagnosticsParams{URI: uri, Diagnostics: out}),
	})
}

func lspSeverity(sev diag.Severity) int {
	if sev == diag.SeverityError {
		return 1
	}
	return 2
}

func (s *Server) handleHover(params HoverParams) *Hover {
	text, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return nil
	}

	word := wordAt(text, params.Position.Line, params.Position.Character)
	if word == "" {
		return nil
	}

	unit, ok := s.registry.Unit(word)
	if !ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Unit**: `%s`\n\n", word)
	fmt.Fprintf(&b, "| Port | Kind | Key |\n|------|------|-----|\n")
	for _, p := range unit.Ports {
		fmt.Fprintf(&b, "| %s | %s | `.%s` |\n", p.Key, p.Kind, p.Key)
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: b.String(),
		},
	}
}

// wordAt extracts the identifier under a 0-based line/character position.
func wordAt(text string, line, char int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	l := lines[line]
	if char < 0 || char >= len(l) {
		return ""
	}

	isWord := func(c byte) bool {
		return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	if !isWord(l[char]) {
		return ""
	}

	start, end := char, char+1
	for start > 0 && isWord(l[start-1]) {
		start--
	}
	for end < len(l) && isWord(l[end]) {
		end++
	}
	return l[start:end]
}

func (s *Server) respond(id any, result any) {
	s.send(JsonRpcMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) send(msg JsonRpcMessage) {
	body, _ := json.Marshal(msg)
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func mustMarshal(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
