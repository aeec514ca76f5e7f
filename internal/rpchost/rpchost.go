// Package rpchost wraps a net/rpc server lifecycle around a single TCP
// listener so a role object can be force-unexported (stop accepting and
// drop every in-flight connection) and later rebound at the same address
// with a fresh receiver, without disturbing any other role's listener.
package rpchost

import (
	"fmt"
	"net"
	"net/rpc"
	"sync"
)

// Host serves one net/rpc receiver on one TCP listener.
type Host struct {
	addr string

	mu     sync.Mutex
	ln     net.Listener
	server *rpc.Server
	conns  map[net.Conn]struct{}
	closed bool
}

// Listen registers receiver on a fresh net/rpc server and starts accepting
// connections at addr.
func Listen(addr string, receiver interface{}) (*Host, error) {
	server := rpc.NewServer()
	if err := server.Register(receiver); err != nil {
		return nil, fmt.Errorf("register rpc receiver at %s: %w", addr, err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	h := &Host{
		addr:   ln.Addr().String(),
		ln:     ln,
		server: server,
		conns:  make(map[net.Conn]struct{}),
	}
	go h.acceptLoop()
	return h, nil
}

func (h *Host) acceptLoop() {
	for {
		conn, err := h.ln.Accept()
		if err != nil {
			return
		}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			conn.Close()
			continue
		}
		h.conns[conn] = struct{}{}
		h.mu.Unlock()

		go func(c net.Conn) {
			h.server.ServeConn(c)
			h.mu.Lock()
			delete(h.conns, c)
			h.mu.Unlock()
		}(conn)
	}
}

// Close force-unexports the host: it stops accepting new connections and
// closes every connection currently in flight, so any call blocked on this
// host fails immediately rather than hanging.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conns := make([]net.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[net.Conn]struct{})
	h.mu.Unlock()

	err := h.ln.Close()
	for _, c := range conns {
		c.Close()
	}
	return err
}

// Addr returns the address this host is bound at.
func (h *Host) Addr() string { return h.addr }
