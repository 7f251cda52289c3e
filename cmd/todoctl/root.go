package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/todo-tracker/client"
	"github.com/example/todo-tracker/client/view"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultServer = "http://localhost:8000"

// cli holds the resolved global flags and the logger shared by every command.
type cli struct {
	v       *viper.Viper
	logFile string
	floor   time.Duration
	verbose bool
	width   int
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "Manage todos on a todo tracker server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = newLogger(c.logFile, c.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", defaultServer, "Server base URL (env TODO_SERVER)")
	flags.StringVar(&c.logFile, "log-file", "", "Also write JSON logs to this file")
	flags.DurationVar(&c.floor, "floor", client.DefaultFloor, "Minimum busy-indicator duration (negative disables)")
	flags.BoolVar(&c.verbose, "verbose", false, "Log debug output to stderr")
	flags.IntVar(&c.width, "width", view.DefaultWidth, "Title column width")

	c.v.SetEnvPrefix("TODO")
	c.v.AutomaticEnv()
	_ = c.v.BindPFlag("server", flags.Lookup("server"))

	rootCmd.AddCommand(c.listCmd())
	rootCmd.AddCommand(c.addCmd())
	rootCmd.AddCommand(c.toggleCmd())
	rootCmd.AddCommand(c.rmCmd())
	rootCmd.AddCommand(c.clearCompletedCmd())
	rootCmd.AddCommand(c.clearAllCmd())
	rootCmd.AddCommand(c.healthCmd())
	rootCmd.AddCommand(c.watchCmd())

	return rootCmd
}

func (c *cli) server() string {
	return c.v.GetString("server")
}

func (c *cli) controller(opts client.Options) *client.Controller {
	opts.Floor = c.floor
	opts.Logger = newZapLogger(c.logger)
	return client.NewController(client.NewAPI(c.server(), nil), opts)
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
