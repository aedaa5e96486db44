package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	gosync "sync"

	"go.lsp.dev/jsonrpc2"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/store"
)

// Server is a sync hub: it owns a document replica, hands joining clients
// the ops they are missing, folds in their updates and fans the batches out
// to everyone else.
type Server struct {
	doc *denicek.Document
	cfg *Config

	mu    gosync.Mutex
	conns map[jsonrpc2.Conn]bool
}

func NewServer(doc *denicek.Document, cfg *Config) *Server {
	return &Server{doc: doc, cfg: cfg, conns: map[jsonrpc2.Conn]bool{}}
}

// Serve accepts connections until the context is canceled or the listener
// fails. When the config names a persistence path, the snapshot is loaded
// before accepting and saved on the config's interval.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.Persist != "" {
		ops, err := LoadSnapshot(s.cfg.Persist)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if len(ops) > 0 {
			n := s.doc.Merge(ops)
			log.Printf("restored %d ops from %s", n, s.cfg.Persist)
		}
		saver := NewSaver(s.doc, s.cfg.Persist, s.cfg.SaveInterval())
		go func() {
			if err := saver.Run(ctx); err != nil {
				log.Printf("saver: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Printf("listening on %s", ln.Addr())

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.serveConn(ctx, nc)
	}
}

func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(nc))
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()
	conn.Go(ctx, s.handle(conn))
	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
}

func (s *Server) handle(from jsonrpc2.Conn) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case MethodInit:
			var p initParams
			if err := json.Unmarshal(req.Params(), &p); err != nil {
				return reply(ctx, nil, fmt.Errorf("%w: %v", jsonrpc2.ErrParse, err))
			}
			return reply(ctx, initResult{Ops: s.doc.Delta(p.Clock)}, nil)
		case MethodUpdate:
			var p updateParams
			if err := json.Unmarshal(req.Params(), &p); err != nil {
				return reply(ctx, nil, fmt.Errorf("%w: %v", jsonrpc2.ErrParse, err))
			}
			n := s.doc.Merge(p.Ops)
			if debug.Sync() {
				debug.Logf("sync: merged %d/%d ops\n", n, len(p.Ops))
			}
			if n > 0 {
				s.broadcast(ctx, from, p.Ops)
			}
			return reply(ctx, updateResult{Merged: n}, nil)
		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

func (s *Server) broadcast(ctx context.Context, from jsonrpc2.Conn, ops []store.Op) {
	s.mu.Lock()
	conns := make([]jsonrpc2.Conn, 0, len(s.conns))
	for c := range s.conns {
		if c != from {
			conns = append(conns, c)
		}
	}
	s.mu.Unlock()
	for _, c := range conns {
		if err := c.Notify(ctx, MethodChange, changeParams{Ops: ops}); err != nil {
			log.Printf("broadcast: %v", err)
		}
	}
}
