package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/example/todo-tracker/client"
	"github.com/example/todo-tracker/client/view"
	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller(client.Options{})
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}

			st := ctrl.Store().Snapshot()
			st.Filter = domain.ParseStatus(filter)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view.FilterBar(st))
			fmt.Fprintln(out, view.List(st, time.Now(), c.width))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter: all, active or completed")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller(client.Options{})
			created, err := ctrl.CreateTodo(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return reportFailure(ctrl, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n",
				view.Toast(&client.Notification{Kind: client.NotificationSuccess, Message: client.MsgCreated}),
				view.Row(*created, time.Now(), c.width))
			return nil
		},
	}
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a todo between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl := c.controller(client.Options{})
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}
			if err := ctrl.ToggleTodo(cmd.Context(), id); err != nil {
				return reportFailure(ctrl, err)
			}
			printToast(cmd.OutOrStdout(), ctrl)
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete todo #%d?", id)) {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			ctrl := c.controller(client.Options{})
			if err := ctrl.DeleteTodo(cmd.Context(), id); err != nil {
				return reportFailure(ctrl, err)
			}
			printToast(out, ctrl)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func (c *cli) clearCompletedCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller(client.Options{})
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}

			n := ctrl.Store().Snapshot().Counts().Completed
			out := cmd.OutOrStdout()
			if n == 0 {
				fmt.Fprintln(out, "No completed todos")
				return nil
			}
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %d completed todos?", n)) {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			if err := ctrl.ClearCompleted(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}
			printToast(out, ctrl)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func (c *cli) clearAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete every todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller(client.Options{})
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}

			n := ctrl.Store().Snapshot().Counts().Total
			out := cmd.OutOrStdout()
			if n == 0 {
				fmt.Fprintln(out, "No todos")
				return nil
			}
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete all %d todos? This cannot be undone.", n)) {
				fmt.Fprintln(out, "Aborted")
				return nil
			}

			if err := ctrl.ClearAll(cmd.Context()); err != nil {
				return reportFailure(ctrl, err)
			}
			printToast(out, ctrl)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := c.controller(client.Options{})
			status := ctrl.CheckHealth(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", view.Connection(status), c.server())
			if status != client.ConnectionConnected {
				return errors.New("server unreachable")
			}
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration
	var filter string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show todos and connection status until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctrl := c.controller(client.Options{HealthInterval: interval})
			changed := make(chan struct{}, 1)
			unsubscribe := ctrl.Store().Subscribe(func(client.State, client.Priority) {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			defer unsubscribe()

			if err := ctrl.Start(ctx); err != nil {
				c.logger.Sugar().Warnw("Initial load failed", "error", err)
			}
			defer ctrl.Stop()
			if filter != "" {
				_ = ctrl.SetFilter(ctx, domain.ParseStatus(filter))
			}

			out := cmd.OutOrStdout()
			clearScreen := isTerminal(out)
			render := func() {
				if clearScreen {
					fmt.Fprint(out, "\033[H\033[2J")
				}
				fmt.Fprintln(out, view.Render(ctrl.Store().Snapshot(), time.Now(), c.width))
			}

			render()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changed:
					render()
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultHealthInterval, "Health probe interval")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Initial filter: all, active or completed")
	return cmd
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", raw)
	}
	return uint(id), nil
}

// reportFailure prefers the message the controller surfaced for the user.
func reportFailure(ctrl *client.Controller, err error) error {
	msg := ctrl.Store().Snapshot().Error
	if msg == "" || msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func printToast(out io.Writer, ctrl *client.Controller) {
	if line := view.Toast(ctrl.Store().Snapshot().Notification); line != "" {
		fmt.Fprintln(out, line)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
