package cmd

import (
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/styc-lang/styc"
)

var (
	serveAddr   string
	serveRoot   string
	servePrefix string
)

var serveCmd = &cobra.Command{
	Use:   "serve <dir>",
	Short: "Serve a directory, compiling stylesheets to CSS on request",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&servePrefix, "prefix", "/", "URL path prefix to serve stylesheets under")
}

func runServe(_ *cobra.Command, args []string) error {
	serveRoot = "."
	if len(args) == 1 {
		serveRoot = args[0]
	}

	fileSystem := os.DirFS(serveRoot)
	handler := styc.NewHandler(fileSystem, servePrefix)

	mux := http.NewServeMux()
	mux.Handle(servePrefix, handler)

	log.Printf("styc: serving %s on %s (prefix %s)", serveRoot, serveAddr, servePrefix)
	return http.ListenAndServe(serveAddr, mux)
}
