// Command client is a thin REPL: it connects to one peer's KV service,
// submits a fixed pre-population sequence, then relays stdin lines
// verbatim until "exit".
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/rverma-dev/paxkv/internal/activitylog"
	"github.com/rverma-dev/paxkv/internal/kvstore"
	"github.com/rverma-dev/paxkv/internal/rpcutil"
)

// prepopulate is the fixed fixture sequence.
var prepopulate = []string{
	"PUT player Kohli",
	"PUT position batting",
	"PUT strength placement",
	"PUT weakness leg spin",
	"PUT favorite aggression",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 3 {
		return fmt.Errorf("usage: %s <serverAddress> <serverPort>", os.Args[0])
	}
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", os.Args[2], err)
	}
	addr := fmt.Sprintf("%s:%d", os.Args[1], port)
	clientID := "client-" + os.Args[2]

	log := activitylog.New("clientLog.txt")

	for _, cmd := range prepopulate {
		result, err := execute(addr, clientID, cmd)
		if err != nil {
			log.WithError(err).Error("prepopulate command failed")
			continue
		}
		log.WithField("command", cmd).WithField("result", result).Info("prepopulate command executed")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "exit" {
			return nil
		}
		result, err := execute(addr, clientID, line)
		if err != nil {
			log.WithError(err).Error("command failed")
			fmt.Println("ERROR")
			continue
		}
		log.WithField("command", line).WithField("result", result).Info("command executed")
		fmt.Println(result)
	}
	return scanner.Err()
}

func execute(addr, clientID, command string) (string, error) {
	var reply kvstore.ExecuteReply
	args := &kvstore.ExecuteArgs{ClientID: clientID, Command: command}
	if err := rpcutil.Call(addr, "Service.Execute", args, &reply); err != nil {
		return "", err
	}
	return reply.Result, nil
}
