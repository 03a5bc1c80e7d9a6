// Command stund is a STUN Binding-request server (RFC 8489 Section
// 13.1): it answers each request with a success response carrying the
// requester's XOR-MAPPED-ADDRESS, or a 420 error response for a request
// carrying unknown comprehension-required attributes. Datagrams that
// fail to decode are logged and dropped without a response.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/pion/logging"
	"gopkg.in/yaml.v3"

	"github.com/ashgrove-labs/stun"
	"github.com/ashgrove-labs/stun/stunnet"
)

// config is the server's configuration, loadable from YAML and
// overridable by flags: whatever flags the caller sets wins over the
// config file.
type config struct {
	Network string `yaml:"network"`
	Addr    string `yaml:"addr"`
	Verbose bool   `yaml:"verbose"`
}

func defaultConfig() config {
	return config{
		Network: "udp4",
		Addr:    fmt.Sprintf(":%d", stun.DefaultPort),
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("stund: parsing config: %w", err)
	}

	return cfg, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		network    = flag.String("net", "", "listen network (udp4, udp6); overrides config")
		addr       = flag.String("addr", "", "listen address; overrides config")
		verbose    = flag.Bool("v", false, "debug logging; overrides config")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *network != "" {
		cfg.Network = *network
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *verbose {
		cfg.Verbose = true
	}

	level := logging.LogLevelInfo
	if cfg.Verbose {
		level = logging.LogLevelDebug
	}
	factory := logging.NewDefaultLeveledLoggerForScope("stund", level, os.Stdout)

	conn, err := net.ListenPacket(cfg.Network, cfg.Addr)
	if err != nil {
		factory.Errorf("listen: %v", err)
		os.Exit(1)
	}
	factory.Infof("listening on %s %s", cfg.Network, conn.LocalAddr())

	srv := &Server{Conn: conn, Log: factory}
	if err := srv.Serve(); err != nil {
		factory.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

// Server answers Binding requests read off Conn.
type Server struct {
	Conn net.PacketConn
	Log  logging.LeveledLogger
}

// Serve loops reading datagrams and responding until ReadUDP fails.
func (s *Server) Serve() error {
	for {
		raw, addr, err := stunnet.ReadUDP(s.Conn)
		if err != nil {
			return err
		}
		resp, respondErr := s.handle(raw, addr)
		if respondErr != nil {
			s.Log.Debugf("dropping request from %s: %v", addr, respondErr)

			continue
		}
		if resp == nil {
			continue
		}
		if _, err := s.Conn.WriteTo(resp, addr); err != nil {
			s.Log.Errorf("write to %s: %v", addr, err)
		}
	}
}

func (s *Server) handle(raw []byte, addr net.Addr) ([]byte, error) {
	in, err := stun.Decode(raw)
	if err != nil {
		return nil, err
	}
	if in.Class != stun.ClassRequest {
		// Indications and responses addressed to us are not this
		// server's concern.
		return nil, nil
	}

	if unknown := in.Unknown(); len(unknown) > 0 {
		return s.errorResponse(in, stun.CodeUnknownAttribute, unknown)
	}

	// Decode already rejected any method other than Binding with
	// UnknownMethod, so by this point in.Method is always MethodBinding.

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, err
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return nil, err
	}

	out := stun.OutgoingMessage{
		Class:         stun.ClassSuccessResponse,
		Method:        stun.MethodBinding,
		TransactionID: in.TransactionID,
		Attributes:    []stun.Setter{stun.XORMappedAddress{IP: net.ParseIP(host), Port: port}},
		Software:      "stund",
		Fingerprint:   true,
	}

	return out.Encode()
}

func (s *Server) errorResponse(in *stun.IncomingMessage, code stun.ErrorCode, unknown stun.UnknownAttributes) ([]byte, error) {
	attrs := []stun.Setter{stun.ErrorCodeAttribute{Code: code, Reason: []byte(code.Reason())}}
	if len(unknown) > 0 {
		attrs = append(attrs, unknown)
	}
	out := stun.OutgoingMessage{
		Class:         stun.ClassErrorResponse,
		Method:        in.Method,
		TransactionID: in.TransactionID,
		Attributes:    attrs,
		Software:      "stund",
		Fingerprint:   true,
	}

	return out.Encode()
}
