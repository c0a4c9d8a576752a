package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/auth"
	"github.com/trezcool/masomo-client/core/notification"
	"github.com/trezcool/masomo-client/core/purchase"
	"github.com/trezcool/masomo-client/core/receipt"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/gateway"
)

var (
	readCodeFunc = term.ReadPassword // mockable
	stdinFd      = func() int { return int(os.Stdin.Fd()) }

	errInvalidID = errors.New("id must be a positive number")
)

type commandLine struct {
	build  gatewayBuilder
	gw     *gateway.Gateway
	out    io.Writer
	apiURL string
}

func (cli *commandLine) print(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = fmt.Fprintln(cli.out, string(b))
	return err
}

func (cli *commandLine) rootCommand(conf *core.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "masomo",
		Short:         "Masomo API command line client",
		Version:       conf.Build,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.gw != nil {
				return nil
			}
			gw, err := cli.build(cli.apiURL)
			if err != nil {
				return err
			}
			cli.gw = gw
			return nil
		},
	}
	root.SetOut(cli.out)
	root.PersistentFlags().StringVar(&cli.apiURL, "api-url", "", "API base URL (defaults to API_BASE_URL)")

	root.AddCommand(
		cli.loginCommand(),
		cli.logoutCommand(),
		cli.whoamiCommand(),
		cli.dashboardCommand(),
		cli.balanceCommand(),
		cli.plansCommand(),
		cli.buyCommand(),
		cli.tasksCommand(),
		cli.receiptsCommand(),
		cli.notificationsCommand(),
	)
	return root
}

func (cli *commandLine) loginCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a code sent by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sent, err := cli.gw.Auth.RequestEmailCode(ctx, auth.RequestCode{Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), sent.Message)
			fmt.Fprint(cmd.ErrOrStderr(), "Verification code: ")
			code, err := readCodeFunc(stdinFd())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return errors.Wrap(err, "reading code")
			}

			sess, err := cli.gw.Auth.VerifyEmailCode(ctx, auth.VerifyCode{Email: email, Code: strings.TrimSpace(string(code))})
			if err != nil {
				return err
			}
			return cli.print(sess.User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (cli *commandLine) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.gw.Auth.Logout(cmd.Context())
		},
	}
}

func (cli *commandLine) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cli.gw.User.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(p)
		},
	}
}

func (cli *commandLine) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show profile, balance, pending tasks and unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := cli.gw.LoadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(dash)
		},
	}
}

func (cli *commandLine) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the student hour balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cli.gw.Balance.GetBalance(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(b)
		},
	}
}

func (cli *commandLine) plansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the pricing plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := cli.gw.Payment.GetPricingPlans(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(plans)
		},
	}
}

func (cli *commandLine) buyCommand() *cobra.Command {
	var planID int
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Purchase a pricing plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := cli.gw.Purchase.InitiatePurchase(cmd.Context(), purchase.Initiate{PlanID: planID})
			if err != nil {
				return err
			}
			if err := cli.print(res); err != nil {
				return err
			}
			if !res.Success {
				return errors.Errorf("purchase failed: %s", res.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&planID, "plan", 0, "pricing plan id")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func (cli *commandLine) tasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	var filter task.QueryFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := cli.gw.Tasks.ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return cli.print(tasks)
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "pending, in_progress, completed or cancelled")
	list.Flags().StringVar(&filter.Priority, "priority", "", "low, medium or high")

	var (
		nt  task.NewTask
		due string
	)
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nt.Title = args[0]
			if due != "" {
				t, err := parseDate(due)
				if err != nil {
					return err
				}
				nt.DueDate = &t
			}
			t, err := cli.gw.Tasks.CreateTask(cmd.Context(), nt)
			if err != nil {
				return err
			}
			return cli.print(t)
		},
	}
	add.Flags().StringVar(&nt.Description, "description", "", "task description")
	add.Flags().StringVar(&nt.Priority, "priority", "", "low, medium or high")
	add.Flags().BoolVar(&nt.IsUrgent, "urgent", false, "mark as urgent")
	add.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")

	done := &cobra.Command{
		Use:   "done ID",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, id int) error {
			t, err := cli.gw.Tasks.CompleteTask(ctx, id)
			if err != nil {
				return err
			}
			return cli.print(t)
		}),
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, id int) error {
			return cli.gw.Tasks.DeleteTask(ctx, id)
		}),
	}

	cmd.AddCommand(list, add, done, rm)
	return cmd
}

func (cli *commandLine) receiptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List, issue and download receipts",
	}

	var filter receipt.QueryFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List receipts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := cli.gw.Receipts.ListReceipts(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return cli.print(rs)
		},
	}
	list.Flags().IntVar(&filter.Year, "year", 0, "only receipts issued that year")

	generate := &cobra.Command{
		Use:   "generate TRANSACTION_ID",
		Short: "Issue the receipt of a purchase transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, id int) error {
			r, err := cli.gw.Receipts.GenerateReceipt(ctx, id)
			if err != nil {
				return err
			}
			return cli.print(r)
		}),
	}

	var out string
	download := &cobra.Command{
		Use:   "download ID",
		Short: "Download a receipt PDF",
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, id int) error {
			d, err := cli.gw.Receipts.DownloadReceipt(ctx, id)
			if err != nil {
				return err
			}
			if d.IsURL() {
				return cli.print(map[string]string{"url": d.URL})
			}
			path := out
			if path == "" {
				path = d.Filename
			}
			if path == "" {
				path = fmt.Sprintf("receipt-%d.pdf", id)
			}
			if err := os.WriteFile(path, d.Data, 0o644); err != nil {
				return errors.Wrap(err, "writing receipt")
			}
			abs, _ := filepath.Abs(path)
			return cli.print(map[string]interface{}{"file": abs, "bytes": len(d.Data)})
		}),
	}
	download.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the server file name)")

	cmd.AddCommand(list, generate, download)
	return cmd
}

func (cli *commandLine) notificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List and acknowledge notifications",
	}

	var unread bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter notification.QueryFilter
			if unread {
				isRead := false
				filter.IsRead = &isRead
			}
			ns, err := cli.gw.Notifications.ListNotifications(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return cli.print(ns)
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")

	var all bool
	read := &cobra.Command{
		Use:   "read [ID]",
		Short: "Mark a notification (or all with --all) as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				n, err := cli.gw.Notifications.MarkAllAsRead(cmd.Context())
				if err != nil {
					return err
				}
				return cli.print(map[string]int{"marked": n})
			}
			if len(args) == 0 {
				return errors.New("pass a notification id or --all")
			}
			return withID(func(ctx context.Context, id int) error {
				return cli.gw.Notifications.MarkAsRead(ctx, id)
			})(cmd, args)
		},
	}
	read.Flags().BoolVar(&all, "all", false, "mark every notification as read")

	cmd.AddCommand(list, read)
	return cmd
}

// withID parses the first argument as a resource id.
func withID(fn func(ctx context.Context, id int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return errInvalidID
		}
		return fn(cmd.Context(), id)
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
