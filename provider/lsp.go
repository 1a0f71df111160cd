package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/protosync/prototype"
)

// ServerConfig defines the language server process to spin up.
type ServerConfig struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string
}

type lspProvider struct {
	cfg    ServerConfig
	cmd    *exec.Cmd
	conn   *jsonrpc2.Conn
	cancel context.CancelFunc

	mu          sync.Mutex
	openedFiles map[protocol.DocumentURI]bool
}

// NewLSPProvider launches the configured language server and performs the
// LSP handshake.
func NewLSPProvider(cfg ServerConfig) (SymbolProvider, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for LSP provider")
	}
	if cfg.LanguageID == "" {
		return nil, errors.New("language id is required for LSP provider")
	}
	root := cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, err
	}

	rwc := &stdioReadWriteCloser{reader: stdout, writer: stdin}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})

	p := &lspProvider{
		cfg:         cfg,
		cmd:         cmd,
		cancel:      cancel,
		openedFiles: make(map[protocol.DocumentURI]bool),
	}

	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if !req.Notif {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
		// Server notifications (diagnostics, progress) are irrelevant to
		// symbol queries.
		return nil, nil
	})

	p.conn = jsonrpc2.NewConn(ctx, stream, handler)

	go io.Copy(io.Discard, stderr)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	if err := p.initialize(ctx, absRoot); err != nil {
		cancel()
		_ = cmd.Process.Kill()
		return nil, err
	}

	return p, nil
}

// NewClangdProvider wires up the default C language server.
func NewClangdProvider(root string) (SymbolProvider, error) {
	return NewLSPProvider(ServerConfig{
		Command:    "clangd",
		RootDir:    root,
		LanguageID: "c",
	})
}

func (p *lspProvider) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   protocol.DocumentURI(pathToURI(root)),
		ClientInfo: &protocol.ClientInfo{
			Name:    "protosync",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{},
			},
		},
	}
	var result protocol.InitializeResult
	if err := p.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	return p.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// Close terminates the language server process and JSON-RPC connection.
func (p *lspProvider) Close() error {
	if p == nil {
		return nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_, _ = p.cmd.Process.Wait()
	}
	return nil
}

func (p *lspProvider) ensureOpen(ctx context.Context, file string) error {
	uri := protocol.DocumentURI(pathToURI(file))
	p.mu.Lock()
	if p.openedFiles[uri] {
		p.mu.Unlock()
		return nil
	}
	p.openedFiles[uri] = true
	p.mu.Unlock()

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: protocol.LanguageIdentifier(p.cfg.LanguageID),
			Version:    1,
			Text:       string(data),
		},
	}
	return p.conn.Notify(ctx, "textDocument/didOpen", params)
}

// DocumentSymbols requests textDocument/documentSymbol and accepts both
// response shapes the protocol allows.
func (p *lspProvider) DocumentSymbols(ctx context.Context, file string) ([]prototype.RawSymbol, error) {
	if err := p.ensureOpen(ctx, file); err != nil {
		return nil, err
	}
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(pathToURI(file))},
	}
	var raw json.RawMessage
	if err := p.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var docSymbols []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &docSymbols); err == nil {
		var out []prototype.RawSymbol
		collectDocumentSymbols(&out, docSymbols)
		return out, nil
	}
	var infoSymbols []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &infoSymbols); err == nil {
		out := make([]prototype.RawSymbol, 0, len(infoSymbols))
		for _, sym := range infoSymbols {
			out = append(out, prototype.RawSymbol{
				Name:      sym.Name,
				Kind:      kindOf(sym.Kind),
				StartLine: int(sym.Location.Range.Start.Line),
				EndLine:   int(sym.Location.Range.End.Line) + 1,
			})
		}
		return out, nil
	}
	return nil, errors.New("document symbol response not understood")
}

func collectDocumentSymbols(dst *[]prototype.RawSymbol, symbols []protocol.DocumentSymbol) {
	for _, sym := range symbols {
		*dst = append(*dst, prototype.RawSymbol{
			Name:      sym.Name,
			Kind:      kindOf(sym.Kind),
			Detail:    sym.Detail,
			StartLine: int(sym.Range.Start.Line),
			EndLine:   int(sym.Range.End.Line) + 1,
		})
		if len(sym.Children) > 0 {
			collectDocumentSymbols(dst, sym.Children)
		}
	}
}

func kindOf(kind protocol.SymbolKind) prototype.Kind {
	if kind == protocol.SymbolKindFunction {
		return prototype.KindFunction
	}
	return prototype.KindUnknown
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

func pathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
