// Command stun-client sends a single Binding request to a STUN server
// and prints the reflexive transport address it reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pion/logging"

	"github.com/ashgrove-labs/stun"
	"github.com/ashgrove-labs/stun/stunagent"
)

var errNoMappedAddress = errors.New("stun-client: response carried no XOR-MAPPED-ADDRESS")

func main() {
	var (
		addrStrPtr = flag.String("server", "stun.l.google.com:19302", "STUN server address")
		network    = flag.String("net", "udp4", "network to dial (udp4, udp6)")
		timeoutPtr = flag.Duration("timeout", 3*time.Second, "how long to wait for a response")
		verbose    = flag.Int("verbose", 1, "verbosity level: 0=warn 1=info 2=debug")
	)
	flag.Parse()

	var level logging.LogLevel
	switch *verbose {
	case 0:
		level = logging.LogLevelWarn
	case 2:
		level = logging.LogLevelDebug
	default:
		level = logging.LogLevelInfo
	}
	log := logging.NewDefaultLeveledLoggerForScope("", level, os.Stdout)

	if err := run(*addrStrPtr, *network, *timeoutPtr, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(addr, network string, timeout time.Duration, log logging.LeveledLogger) error {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := stunagent.NewClient(stunagent.ClientOptions{Conn: conn})
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := stun.OutgoingMessage{
		Class:       stun.ClassRequest,
		Method:      stun.MethodBinding,
		Software:    "stun-client",
		Fingerprint: true,
	}

	log.Infof("sending Binding request to %s", addr)
	resp, err := client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("binding request: %w", err)
	}

	var xor stun.XORMappedAddress
	if err := xor.GetFrom(resp.Message()); err != nil {
		return errNoMappedAddress
	}

	fmt.Println(xor.String())

	return nil
}
