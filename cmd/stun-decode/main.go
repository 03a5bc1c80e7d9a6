// Package main implements a CLI tool that decodes a base64-encoded STUN
// message and prints its structure.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ashgrove-labs/stun"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", "stun-decode")
		fmt.Fprintln(os.Stderr, "stun-decode AAEAHCESpEJML0JTQWsyVXkwcmGALwAWaHR0cDovL2xvY2FsaG9zdDozMDAwLwAA")
		fmt.Fprintln(os.Stderr, "First argument must be a base64.StdEncoding-encoded message")
		flag.PrintDefaults()
	}
	flag.Parse()

	data, err := base64.StdEncoding.DecodeString(flag.Arg(0))
	if err != nil {
		log.Fatalln("unable to decode base64 value:", err)
	}

	in, err := stun.Decode(data)
	if err != nil {
		log.Fatalln("unable to decode message:", err)
	}

	m := in.Message()
	fmt.Println(m)
	for _, a := range m.Attributes {
		fmt.Printf("  %s: % x\n", a.Type, a.Value)
	}

	if unknown := in.Unknown(); len(unknown) > 0 {
		fmt.Println("unknown comprehension-required attributes:", unknown)
	}
}
