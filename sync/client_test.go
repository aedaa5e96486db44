package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	gosync "sync"
	"testing"

	"go.lsp.dev/jsonrpc2"

	"github.com/krsion/MyDenicek-sub001/store"
)

func TestPushRetriesAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doc := newSyncDoc(t, "a")
	cliEnd, srvEnd := net.Pipe()

	var mu gosync.Mutex
	var delivered []store.Op
	failNext := true
	srv := jsonrpc2.NewConn(jsonrpc2.NewStream(srvEnd))
	srv.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() != MethodUpdate {
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
		var p updateParams
		if err := json.Unmarshal(req.Params(), &p); err != nil {
			return reply(ctx, nil, err)
		}
		mu.Lock()
		fail := failNext
		failNext = false
		if !fail {
			delivered = append(delivered, p.Ops...)
		}
		mu.Unlock()
		if fail {
			return reply(ctx, nil, fmt.Errorf("unavailable"))
		}
		return reply(ctx, updateResult{Merged: len(p.Ops)}, nil)
	})

	c := &Client{doc: doc, conn: jsonrpc2.NewConn(jsonrpc2.NewStream(cliEnd))}
	c.conn.Go(ctx, c.handle)

	if err := c.push(ctx); err == nil {
		t.Fatal("push succeeded against a failing server")
	}
	// the failed batch must stay in the delta and go out on the retry
	if err := c.push(ctx); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != len(doc.Ops()) {
		t.Errorf("retry delivered %d ops, want %d", len(delivered), len(doc.Ops()))
	}
}
