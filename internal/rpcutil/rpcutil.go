// Package rpcutil provides the single dial-call-close helper every role
// uses to reach a peer. It never caches a client across calls: every
// invocation dials fresh, so a restarted, freshly-bound acceptor is
// reached correctly on the very next call.
package rpcutil

import (
	"fmt"
	"net/rpc"
)

// Call dials addr, invokes serviceMethod ("Acceptor.Prepare" and so on)
// with args, and populates reply. Any failure to reach the peer (refused
// connection, timeout, mid-call disconnect) is surfaced as an error so
// callers can treat it as a REJECT vote.
func Call(addr, serviceMethod string, args, reply interface{}) error {
	client, err := rpc.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Call(serviceMethod, args, reply); err != nil {
		return fmt.Errorf("call %s %s: %w", serviceMethod, addr, err)
	}
	return nil
}
