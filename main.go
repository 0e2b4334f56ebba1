package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ductsize/calculator"
	"ductsize/input"
	"ductsize/report"
	"ductsize/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	var cfg calculator.Config

	rootCmd := &cobra.Command{
		Use:   "ductsize",
		Short: "Size the ducts of an air-distribution network",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg = calculator.LoadConfig(cfgFile)
			cfg.ApplyLogLevel()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", calculator.DefaultConfigPath, "ini config file")

	rootCmd.AddCommand(newRunCmd(&cfg))
	rootCmd.AddCommand(newServeCmd(&cfg))
	return rootCmd
}

func newRunCmd(cfg *calculator.Config) *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Size a network read from a keyword or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := input.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := calculator.NewSizer(*cfg).Run(n); err != nil {
				return err
			}
			if format == "" {
				format = "text"
				if term.IsTerminal(int(os.Stdout.Fd())) {
					format = "table"
				}
			}
			if err := report.Write(cmd.OutOrStdout(), n, format); err != nil {
				return err
			}
			if out != "" {
				return report.WriteFile(out, n, format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "also write the results to this file")
	cmd.Flags().StringVar(&format, "format", "", "output format (table|text|json), text when stdout is not a terminal")
	return cmd
}

func newServeCmd(cfg *calculator.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = cfg.ServerAddr
			}
			upgrader.CheckOrigin = func(r *http.Request) bool {
				return true
			}
			s := server.NewServer(addr, upgrader, *cfg)
			log.WithField("addr", addr).Info("ductsize server")
			return s.Serve()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
