package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mytutor/internal/apiclient"
	"mytutor/internal/config"
	"mytutor/internal/tui"
	"mytutor/internal/viewstate"
	"mytutor/pkg/logger"
	"mytutor/pkg/tracing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// cli holds what every subcommand shares once the root has run.
type cli struct {
	server    string
	configDir string

	readPassword func(fd int) ([]byte, error)
	stdinFd      int

	cfg      *config.Config
	log      *zap.Logger
	api      *apiclient.Client
	shutdown func(context.Context) error
}

func newCLI() *cli {
	return &cli{
		readPassword: term.ReadPassword,
		stdinFd:      int(os.Stdin.Fd()),
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mytutor",
		Short:         "Log in, get a tutor and take quizzes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: c.runTUI,
	}
	root.PersistentFlags().StringVar(&c.server, "server", "", "API base URL (default from config client.base_url)")
	root.PersistentFlags().StringVar(&c.configDir, "config", "configs", "directory holding config.yaml")

	root.AddCommand(
		&cobra.Command{Use: "tui", Short: "Run the terminal UI", Args: cobra.NoArgs, RunE: c.runTUI},
		c.registerCmd(),
		c.loginCmd(),
		c.tutorCmd(),
		c.quizCmd(),
		c.tutorStatusCmd(),
		c.summarizeCmd(),
		c.askCmd(),
	)
	return root
}

// execute runs the command line in args and releases the logger and tracer
// whether or not the command succeeded.
func (c *cli) execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	defer c.teardown(context.Background())
	return root.ExecuteContext(ctx)
}

func (c *cli) setup() error {
	cfg, err := config.LoadConfig(c.configDir)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// The terminal belongs to the UI, so the client only logs to a file.
	logCfg := *cfg
	logCfg.Log.Console = false
	if logCfg.Log.File != "" {
		logCfg.Log.File = filepath.Join(filepath.Dir(logCfg.Log.File), "mytutor.log")
	}
	c.log = logger.New(&logCfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("mytutor", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			c.log.Warn("tracing disabled", zap.Error(err))
		} else {
			c.shutdown = tp.Shutdown
		}
	}

	server := c.server
	if server == "" {
		server = cfg.Client.BaseURL
	}
	c.api = apiclient.New(server,
		apiclient.WithLogger(c.log),
		apiclient.WithTimeout(cfg.Client.Timeout),
	)
	c.log.Debug("client ready", zap.String("server", c.api.BaseURL()), zap.String("config", cfg.File))
	return nil
}

func (c *cli) teardown(ctx context.Context) {
	if c.shutdown != nil {
		if err := c.shutdown(ctx); err != nil {
			c.log.Warn("tracer shutdown", zap.Error(err))
		}
	}
	if c.log != nil {
		c.log.Sync()
	}
}

func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(cmd.Context(), c.api, c.log)
}

type account struct {
	username string
	password string
}

func (a *account) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&a.password, "password", "p", "", "password (prompted when empty)")
	cmd.MarkFlagRequired("username")
}

func (c *cli) password(cmd *cobra.Command, a *account) (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pwd, err := c.readPassword(c.stdinFd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pwd), nil
}

// failure turns a rejected action into the error the user sees: the
// message slot when it holds one.
func failure(ctrl *viewstate.Controller, err error) error {
	if msg := ctrl.State().Message; !msg.IsZero() {
		return errors.New(msg.Text)
	}
	return err
}

// login runs the login flow on a fresh controller.
func (c *cli) login(cmd *cobra.Command, a *account) (*viewstate.Controller, error) {
	pwd, err := c.password(cmd, a)
	if err != nil {
		return nil, err
	}
	ctrl := viewstate.NewController(c.api, c.log)
	if err := ctrl.SubmitCredentials(cmd.Context(), a.username, pwd); err != nil {
		return nil, failure(ctrl, err)
	}
	return ctrl, nil
}

func printProfile(w io.Writer, s viewstate.State) {
	if !s.HasTutor() {
		fmt.Fprintln(w, "No tutor assigned yet.")
		return
	}
	fmt.Fprintf(w, "Grade:   %s\nSubject: %s\nTutor:   %s\n", s.Profile.Grade, s.Profile.Subject, s.Profile.TutorName)
}

func (c *cli) registerCmd() *cobra.Command {
	var a account
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := c.password(cmd, &a)
			if err != nil {
				return err
			}
			ctrl := viewstate.NewController(c.api, c.log)
			if err := ctrl.ToggleAuthMode(); err != nil {
				return err
			}
			if err := ctrl.SubmitCredentials(cmd.Context(), a.username, pwd); err != nil {
				return failure(ctrl, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctrl.State().Message.Text)
			return nil
		},
	}
	a.bind(cmd)
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var a account
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and show the account's tutor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.login(cmd, &a)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.username)
			printProfile(cmd.OutOrStdout(), ctrl.State())
			return nil
		},
	}
	a.bind(cmd)
	return cmd
}

func (c *cli) tutorCmd() *cobra.Command {
	var (
		a       account
		grade   string
		subject string
	)
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Pick a grade and subject and get a tutor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.login(cmd, &a)
			if err != nil {
				return err
			}
			if ctrl.State().HasTutor() {
				return fmt.Errorf("%s already has a tutor: %s", a.username, ctrl.State().Profile.TutorName)
			}
			if err := ctrl.SubmitProfile(cmd.Context(), grade, subject); err != nil {
				return failure(ctrl, err)
			}
			printProfile(cmd.OutOrStdout(), ctrl.State())
			return nil
		},
	}
	a.bind(cmd)
	cmd.Flags().StringVar(&grade, "grade", "", `grade label, e.g. "Grade 10"`)
	cmd.Flags().StringVar(&subject, "subject", "", `subject label, e.g. "Science"`)
	cmd.MarkFlagRequired("grade")
	cmd.MarkFlagRequired("subject")
	return cmd
}

func (c *cli) quizCmd() *cobra.Command {
	var a account
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a quiz for the account's subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.login(cmd, &a)
			if err != nil {
				return err
			}
			if !ctrl.State().HasTutor() {
				return fmt.Errorf("%s has no tutor yet; run mytutor tutor first", a.username)
			}
			if err := ctrl.RequestQuiz(cmd.Context()); err != nil {
				return failure(ctrl, err)
			}
			q := ctrl.State().Screen.(viewstate.QuizScreen).Quiz
			fmt.Fprintf(cmd.OutOrStdout(), "Quiz: %s (%s)\n\n%s\n", q.Topic, q.Difficulty, q.Content)
			return nil
		},
	}
	a.bind(cmd)
	return cmd
}

func (c *cli) tutorStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tutor-status USERNAME",
		Short: "Show the tutor assigned to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.api.TutorResponse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", resp.Message, resp.Grade, resp.Subject)
			return nil
		},
	}
}

func (c *cli) summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [TEXT...]",
		Short: "Summarize text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to summarize")
			}
			resp, err := c.api.Summarize(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			return nil
		},
	}
}

func (c *cli) askCmd() *cobra.Command {
	var background string
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a question, optionally against some background text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.api.AnswerQuestion(cmd.Context(), strings.Join(args, " "), background)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&background, "context", "", "background text the answer should draw on")
	return cmd
}
