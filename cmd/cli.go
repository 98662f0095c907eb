package cmd

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/setwise/setkv/resp"
)

const (
	cliHistFileEnv     = "SETKV_CLI_HISTFILE"
	cliHistFileDefault = ".setkv_history"
)

// RunCLI connects to the server and runs a read-eval-print loop. When stdin
// is not a terminal the commands are read line by line and replies printed
// raw, so the client is usable in pipes.
func RunCLI(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s", addr)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return pipeLoop(conn, r)
	}
	return interactiveLoop(addr, conn, r)
}

func pipeLoop(conn net.Conn, r *bufio.Reader) error {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		argv := strings.Fields(in.Text())
		if len(argv) == 0 {
			continue
		}
		reply, err := roundTrip(conn, r, argv)
		if err != nil {
			return err
		}
		printReply(reply, true, "")
	}
	return in.Err()
}

func interactiveLoop(addr string, conn net.Conn, r *bufio.Reader) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histFile := dotfilePath(cliHistFileEnv, cliHistFileDefault)
	if histFile != "" {
		if f, err := os.Open(histFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histFile == "" {
			return
		}
		if f, err := os.Create(histFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	prompt := addr + "> "
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			return nil // EOF or interrupt ends the session
		}
		argv := strings.Fields(input)
		if len(argv) == 0 {
			continue
		}
		line.AppendHistory(input)

		if strings.EqualFold(argv[0], "quit") || strings.EqualFold(argv[0], "exit") {
			return nil
		}

		reply, err := roundTrip(conn, r, argv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "I/O error: %s\n", err)
			return err
		}
		printReply(reply, false, "")
	}
}

// roundTrip sends argv as a RESP array and reads one reply.
func roundTrip(conn net.Conn, r *bufio.Reader, argv []string) (resp.Node, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%c%d%s", resp.TypeArray, len(argv), resp.CRLF)
	for _, arg := range argv {
		fmt.Fprintf(&b, "%c%d%s%s%s", resp.TypeBlob, len(arg), resp.CRLF, arg, resp.CRLF)
	}
	if _, err := conn.Write([]byte(b.String())); err != nil {
		return nil, err
	}
	return resp.ReadReply(r)
}

func printReply(node resp.Node, raw bool, indent string) {
	switch n := node.(type) {
	case resp.SimpleString:
		fmt.Println(indent + n.Value)
	case resp.Error:
		fmt.Println(indent + "(error) " + n.Message)
	case resp.Integer:
		if raw {
			fmt.Printf("%s%d\n", indent, n.Value)
		} else {
			fmt.Printf("%s(integer) %d\n", indent, n.Value)
		}
	case resp.BlobString:
		if raw {
			fmt.Println(indent + n.Value)
		} else {
			fmt.Printf("%s%q\n", indent, n.Value)
		}
	case resp.Null:
		fmt.Println(indent + "(nil)")
	case resp.Array:
		if len(n.Elements) == 0 {
			fmt.Println(indent + "(empty array)")
			return
		}
		for i, el := range n.Elements {
			fmt.Printf("%s%d) ", indent, i+1)
			printReply(el, raw, "")
		}
	}
}

func dotfilePath(envOverride, dotFilename string) string {
	path := os.Getenv(envOverride)
	if path != "" {
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	if home := os.Getenv("HOME"); home != "" {
		return home + "/" + dotFilename
	}
	return ""
}
