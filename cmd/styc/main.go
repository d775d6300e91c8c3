// Command styc is the reference CLI for the stylesheet compiler: it
// wires the lexer, statement parser, evaluator, and serializer together
// end to end.
package main

import (
	"fmt"
	"os"

	"github.com/styc-lang/styc/cmd/styc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
