package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	gosync "sync"

	"go.lsp.dev/jsonrpc2"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/debug"
)

// Client mirrors a local document replica through a sync server: local
// changes push as update batches, server change notifications merge in.
type Client struct {
	doc  *denicek.Document
	conn jsonrpc2.Conn

	mu   gosync.Mutex
	sent causal.Clock // everything the server is known to have
}

// Dial connects a document to a sync server, performs the initial exchange
// in both directions and starts mirroring. The connection closes when the
// context is canceled.
func Dial(ctx context.Context, addr string, doc *denicek.Document) (*Client, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{doc: doc, conn: jsonrpc2.NewConn(jsonrpc2.NewStream(nc))}
	c.conn.Go(ctx, c.handle)

	var res initResult
	if _, err := c.conn.Call(ctx, MethodInit, initParams{Clock: doc.Clock()}, &res); err != nil {
		c.conn.Close()
		return nil, fmt.Errorf("init: %w", err)
	}
	doc.Merge(res.Ops)
	if err := c.push(ctx); err != nil {
		c.conn.Close()
		return nil, err
	}

	doc.OnChange(func(remote bool) {
		if remote {
			return
		}
		if err := c.push(ctx); err != nil && debug.Sync() {
			debug.Logf("sync: push failed: %v\n", err)
		}
	})
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()
	return c, nil
}

// Done resolves when the connection has closed.
func (c *Client) Done() <-chan struct{} { return c.conn.Done() }

func (c *Client) push(ctx context.Context) error {
	c.mu.Lock()
	ops := c.doc.Delta(c.sent)
	after := c.doc.Clock()
	c.mu.Unlock()
	if len(ops) == 0 {
		return nil
	}

	var res updateResult
	if _, err := c.conn.Call(ctx, MethodUpdate, updateParams{Ops: ops}, &res); err != nil {
		// the ops stay in the next delta
		return err
	}
	c.mu.Lock()
	if c.sent == nil {
		c.sent = causal.Clock{}
	}
	c.sent.Merge(after)
	c.mu.Unlock()
	return nil
}

func (c *Client) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodChange:
		var p changeParams
		if err := json.Unmarshal(req.Params(), &p); err != nil {
			return reply(ctx, nil, fmt.Errorf("%w: %v", jsonrpc2.ErrParse, err))
		}
		n := c.doc.Merge(p.Ops)
		if debug.Sync() {
			debug.Logf("sync: change merged %d/%d ops\n", n, len(p.Ops))
		}
		// the server already has these
		c.mu.Lock()
		c.sent = c.doc.Clock()
		c.mu.Unlock()
		return reply(ctx, nil, nil)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}
