// Command oserun hosts an OSE VM instance: it assembles/dumps bundle
// files and runs a VM instance fed over a SLIP-framed UDP socket,
// grounded on kryptco-kr/kr/kr.go's urfave/cli command surface.
package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"time"

	"github.com/0Z3/libose/builtin"
	"github.com/0Z3/libose/config"
	"github.com/0Z3/libose/oselog"
	"github.com/0Z3/libose/printer"
	"github.com/0Z3/libose/vm"
	"github.com/op/go-logging"
	"github.com/urfave/cli"
)

func printFatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runCommand(c *cli.Context) error {
	cfg := config.Load()
	oselog.Setup(logging.NOTICE)
	vm.Trace = oselog.Trace
	vm.OnException = oselog.Exception

	addr := c.String("listen")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		printFatal("failed to listen on %s: %v", addr, err)
	}
	defer conn.Close()

	arena := make([]byte, cfg.ArenaSize)

	v, err := vm.Init(arena, cfg.Sizes)
	if err != nil {
		printFatal("failed to initialise VM: %v", err)
	}

	v.Builtins = builtin.New().Resolve

	host := newUDPHost(conn, bufSizeLarge)

	for {
		err := host.Read(5*time.Second, func(peer net.Addr, frame []byte) error {
			if err := vm.InputMessages(v, frame); err != nil {
				return err
			}

			return vm.Run(v)
		})

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}

			oselog.Fatal("udp read failed: %v", err)
		}
	}
}

func asmCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("usage: oserun asm <source-file>", 1)
	}

	src, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	out, err := assemble(string(src))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	fmt.Println(hex.EncodeToString(out))

	return nil
}

func dumpCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("usage: oserun dump <bundle-file>", 1)
	}

	raw, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if decoded, decErr := hex.DecodeString(string(raw)); decErr == nil {
		raw = decoded
	}

	if err := printer.Dump(os.Stdout, raw); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "oserun"
	app.Usage = "assemble, inspect and run OSE VM bundles"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "start a VM instance listening for SLIP-framed OSC over UDP",
			Action: runCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen",
					Usage: "UDP address to listen on, overriding OSE_LISTEN_ADDR",
				},
			},
		},
		{
			Name:   "asm",
			Usage:  "oserun asm <file> -- assemble a textual program into a bundle and print its hex",
			Action: asmCommand,
		},
		{
			Name:   "dump",
			Usage:  "oserun dump <file> -- pretty-print a bundle file (hex or raw)",
			Action: dumpCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		printFatal("%v", err)
	}
}
