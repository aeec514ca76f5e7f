// Command peer is the cluster launcher: it parses a host and five ports
// from argv, builds five co-located peers sharing one cluster.Context, and
// runs them until terminated.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rverma-dev/paxkv/internal/activitylog"
	"github.com/rverma-dev/paxkv/internal/cluster"
	"github.com/rverma-dev/paxkv/internal/peer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 7 {
		return fmt.Errorf("usage: %s <host> <port1> <port2> <port3> <port4> <port5>", os.Args[0])
	}
	host := os.Args[1]

	addrs := make([]cluster.PeerAddr, 0, 5)
	for _, arg := range os.Args[2:7] {
		port, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", arg, err)
		}
		addrs = append(addrs, cluster.PeerAddr{Host: host, Port: port})
	}

	log := activitylog.New("serverLog.txt")

	c, err := peer.Build(addrs, log)
	if err != nil {
		return fmt.Errorf("build cluster: %w", err)
	}
	c.Start()
	log.WithField("peers", len(addrs)).Info("cluster started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	c.Stop()
	return nil
}
