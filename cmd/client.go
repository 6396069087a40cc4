package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/apiclient"
	"github.com/frahmantamala/shifts-logger/internal/auth"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/frahmantamala/shifts-logger/pkg/logger"
	"github.com/spf13/cobra"
)

const clientRetries = 2

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Console client for the HTTP API",
	Long:  `Drive a running shifts-logger server. The access token is kept in client.token_file between calls.`,
}

var (
	clientBaseURL string

	regFirstName  string
	regLastName   string
	regEmail      string
	regDepartment string
	regPassword   string

	shiftStartFlag string
	shiftEndFlag   string
	listPage       int
	listPageSize   int
	adminScope     bool
)

// clientSession is a configured client plus where its token lives.
type clientSession struct {
	client    *apiclient.Client
	tokenFile string
}

func newClientSession() (*clientSession, error) {
	cfg, err := readConfig(configDir)
	if err != nil {
		return nil, err
	}
	lg := logger.Setup(logger.Options{
		Env:    cfg.Observability.Logging.Env,
		Level:  "warn",
		Format: cfg.Observability.Logging.Format,
		Output: os.Stderr,
	})

	baseURL := cfg.Client.BaseURL
	if clientBaseURL != "" {
		baseURL = clientBaseURL
	}
	c := apiclient.New(apiclient.Config{
		BaseURL:    baseURL,
		Timeout:    cfg.Client.Timeout,
		MaxRetries: clientRetries,
	}, lg)

	token, err := apiclient.LoadToken(cfg.Client.TokenFile)
	if err != nil {
		return nil, err
	}
	c.SetToken(token)
	return &clientSession{client: c, tokenFile: cfg.Client.TokenFile}, nil
}

// runClient wraps a client action with session setup.
func runClient(fn func(ctx context.Context, s *clientSession, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newClientSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return describeError(fn(ctx, s, cmd, args))
	}
}

// describeError flattens field-level validation messages for the console.
func describeError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return fmt.Errorf("%s", appErr.GetDetailedMessage())
	}
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("--%s must be an RFC 3339 timestamp such as 2026-01-10T07:30:00Z", name)
	}
	return &t, nil
}

func parseShiftID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid shift id %q", arg)
	}
	return id, nil
}

func shiftWindow() (*time.Time, *time.Time, error) {
	start, err := parseTimeFlag("start", shiftStartFlag)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTimeFlag("end", shiftEndFlag)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

var registerClientCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an employee account",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		err := s.client.Register(ctx, user.RegisterDTO{
			FirstName:  regFirstName,
			LastName:   regLastName,
			Email:      regEmail,
			Department: regDepartment,
			Password:   regPassword,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registration successful")
		return nil
	}),
}

var loginClientCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the access token",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		tokens, err := s.client.Login(ctx, auth.LoginDTO{Email: regEmail, Password: regPassword})
		if err != nil {
			return err
		}
		if err := apiclient.SaveToken(s.tokenFile, tokens.AccessToken); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Login successful")
		return nil
	}),
}

var logoutClientCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the current session and forget the token",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		logoutErr := s.client.Logout(ctx)
		if err := apiclient.ClearToken(s.tokenFile); err != nil {
			return err
		}
		if logoutErr != nil {
			return logoutErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logout successful")
		return nil
	}),
}

var meClientCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged-in user's profile",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		profile, err := s.client.Me(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, profile)
	}),
}

var shiftsClientCmd = &cobra.Command{
	Use:   "shifts",
	Short: "Manage your shifts",
}

var addShiftClientCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a shift",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		start, end, err := shiftWindow()
		if err != nil {
			return err
		}
		created, err := s.client.AddShift(ctx, shift.CreateShiftDTO{ShiftStart: start, ShiftEnd: end})
		if err != nil {
			return err
		}
		return printJSON(cmd, created)
	}),
}

var updateShiftClientCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a shift's start and end",
	Args:  cobra.ExactArgs(1),
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, args []string) error {
		id, err := parseShiftID(args[0])
		if err != nil {
			return err
		}
		start, end, err := shiftWindow()
		if err != nil {
			return err
		}
		updated, err := s.client.UpdateShift(ctx, id, shift.UpdateShiftDTO{ShiftStart: start, ShiftEnd: end})
		if err != nil {
			return err
		}
		return printJSON(cmd, updated)
	}),
}

var deleteShiftClientCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a shift",
	Args:  cobra.ExactArgs(1),
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, args []string) error {
		id, err := parseShiftID(args[0])
		if err != nil {
			return err
		}
		if err := s.client.DeleteShift(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Shift %d deleted successfully\n", id)
		return nil
	}),
}

var getShiftClientCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one shift",
	Args:  cobra.ExactArgs(1),
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, args []string) error {
		id, err := parseShiftID(args[0])
		if err != nil {
			return err
		}
		sh, err := s.client.GetShift(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, sh)
	}),
}

var listShiftsClientCmd = &cobra.Command{
	Use:   "list",
	Short: "List shifts one page at a time",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		req := pagination.PageRequest{PageNumber: listPage, PageSize: listPageSize}
		list := s.client.ListShifts
		if adminScope {
			list = s.client.ListAllShifts
		}
		page, err := list(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	}),
}

var countShiftsClientCmd = &cobra.Command{
	Use:   "count",
	Short: "Count shifts",
	RunE: runClient(func(ctx context.Context, s *clientSession, cmd *cobra.Command, _ []string) error {
		count := s.client.CountShifts
		if adminScope {
			count = s.client.CountAllShifts
		}
		n, err := count(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, shift.CountResponse{Count: n})
	}),
}

func init() {
	clientCmd.PersistentFlags().StringVar(&clientBaseURL, "url", "", "server base URL (overrides client.base_url)")

	registerClientCmd.Flags().StringVar(&regFirstName, "first-name", "", "first name")
	registerClientCmd.Flags().StringVar(&regLastName, "last-name", "", "last name")
	registerClientCmd.Flags().StringVar(&regDepartment, "department", "", "one of "+fmt.Sprint(user.DepartmentNames()))
	for _, c := range []*cobra.Command{registerClientCmd, loginClientCmd} {
		c.Flags().StringVar(&regEmail, "email", "", "email address")
		c.Flags().StringVar(&regPassword, "password", "", "password")
	}

	for _, c := range []*cobra.Command{addShiftClientCmd, updateShiftClientCmd} {
		c.Flags().StringVar(&shiftStartFlag, "start", "", "shift start, RFC 3339")
		c.Flags().StringVar(&shiftEndFlag, "end", "", "shift end, RFC 3339 (optional)")
	}
	listShiftsClientCmd.Flags().IntVar(&listPage, "page", pagination.DefaultPageNumber, "page number")
	listShiftsClientCmd.Flags().IntVar(&listPageSize, "page-size", pagination.DefaultPageSize, "page size")
	for _, c := range []*cobra.Command{listShiftsClientCmd, countShiftsClientCmd} {
		c.Flags().BoolVar(&adminScope, "all", false, "every user's shifts (admin only)")
	}

	shiftsClientCmd.AddCommand(addShiftClientCmd, updateShiftClientCmd, deleteShiftClientCmd,
		getShiftClientCmd, listShiftsClientCmd, countShiftsClientCmd)
	clientCmd.AddCommand(registerClientCmd, loginClientCmd, logoutClientCmd, meClientCmd, shiftsClientCmd)

	rootCmd.AddCommand(clientCmd)
}
