package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/services/item/client"
	domainsvcs "github.com/ghuser/itemtracker/services/item/domain/services"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server     string
	MinAgeDays int
	Timeout    time.Duration

	newAPI func(server string) client.API
}

// NewRootCommand creates the root command for itemctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(func(server string) client.API { return client.New(server, nil) })
}

func newRootCommand(newAPI func(server string) client.API) *cobra.Command {
	opts := &RootOptions{newAPI: newAPI}

	cmd := &cobra.Command{
		Use:   "itemctl",
		Short: "Manage items on an itemtracker server",
		Long: `Manage items on an itemtracker server.

Items can only be deleted once they reach the server's minimum age.
The DELETABLE column is the client's own estimate; the server decides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", "http://localhost:8080/api", "item API base URL")
	cmd.PersistentFlags().IntVar(&opts.MinAgeDays, "min-age-days", domainsvcs.DefaultMinAgeDays, "deletion age shown in the DELETABLE column")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))

	return cmd
}

func (o *RootOptions) state() *client.State {
	return client.NewState(o.newAPI(o.Server), clock.System{}, domainsvcs.NewDeletionPolicy(o.MinAgeDays))
}

func (o *RootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.Timeout)
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			st := opts.state()
			if err := st.Load(ctx); err != nil {
				return errors.New(st.Error())
			}
			printItems(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>...",
		Short: "Create an item",
		Long:  "Create an item. Multiple arguments are joined with spaces.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			st := opts.state()
			st.SetInput(strings.Join(args, " "))
			if err := st.Submit(ctx); err != nil {
				return errors.New(st.Error())
			}

			items := st.Items()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to add: name is blank")
				return nil
			}
			it := items[len(items)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Created item %d: %s\n", it.ID, it.Name)
			return nil
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item old enough to be deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			st := opts.state()
			if err := st.Delete(ctx, id); err != nil {
				return errors.New(st.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %d\n", id)
			return nil
		},
	}
}

func printItems(w io.Writer, st *client.State) {
	items := st.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tAGE\tDELETABLE")
	for _, it := range items {
		aff := st.Affordance(it)
		deletable := "yes"
		if !aff.Eligible {
			deletable = fmt.Sprintf("no (needs %dd)", aff.RequiredAge)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%dd\t%s\n",
			it.ID, it.Name, it.CreatedAt.Format(time.RFC3339), aff.AgeDays, deletable)
	}
	_ = tw.Flush()
}
