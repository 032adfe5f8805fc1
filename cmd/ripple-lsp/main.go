// Command ripple-lsp is a language server that reports load, syntax and
// compile errors of ripple sources.
package main

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"ripple/internal/lsp"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1"

func main() {
	// stdout carries the protocol; logs go to stderr
	commonlog.Configure(1, nil)
	if err := lsp.NewServer(version).RunStdio(); err != nil {
		fmt.Fprintln(os.Stderr, "ripple-lsp:", err)
		os.Exit(1)
	}
}
