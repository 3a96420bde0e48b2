// Command shelfctl drives a GameShelf account from the terminal. Every mutation
// goes through the optimistic client, so the output shows the settled state.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gameshelf/backend/internal/logging"
	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/jwt"
	"gameshelf/backend/pkg/optimistic"
	"gameshelf/backend/pkg/shelf"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// errReported marks a failure whose user message was already printed.
var errReported = errors.New("reported")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

type settings struct {
	APIURL  string        `mapstructure:"api_url"`
	Token   string        `mapstructure:"token"`
	User    string        `mapstructure:"user"`
	UserID  uint          `mapstructure:"user_id"`
	Timeout time.Duration `mapstructure:"timeout"`
	Verbose bool          `mapstructure:"verbose"`
}

// app is built once per invocation from settings.
type app struct {
	out     io.Writer
	errOut  io.Writer
	logger  *zap.Logger
	client  *apiclient.Client
	session *shelf.Session
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Manage a GameShelf account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			var s settings
			if err := v.Unmarshal(&s); err != nil {
				return fmt.Errorf("read settings: %w", err)
			}
			return a.init(s)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8080/api/v1", "API base URL (SHELF_API_URL)")
	flags.String("token", "", "bearer token (SHELF_TOKEN)")
	flags.String("user", "", "account name, taken from the token when empty (SHELF_USER)")
	flags.Uint("user-id", 0, "account id, taken from the token when zero (SHELF_USER_ID)")
	flags.Duration("timeout", apiclient.DefaultTimeout, "request timeout (SHELF_TIMEOUT)")
	flags.Bool("verbose", false, "log requests to stderr (SHELF_VERBOSE)")
	for _, name := range []string{"api-url", "token", "user", "user-id", "timeout", "verbose"} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newStatusCmd(a, shelf.Favorite),
		newStatusCmd(a, shelf.Wishlist),
		newStatusCmd(a, shelf.Completed),
		newLikeCmd(a),
		newListCmd(a),
		newHallOfFameCmd(a),
	)
	return root
}

func (a *app) init(s settings) error {
	a.logger = zap.NewNop()
	if s.Verbose {
		logger, err := logging.New("debug", true)
		if err != nil {
			return err
		}
		a.logger = logger
	}

	a.client = apiclient.New(s.APIURL,
		apiclient.WithToken(s.Token),
		apiclient.WithTimeout(s.Timeout),
		apiclient.WithLogger(a.logger.Named("api")))
	a.session = shelf.NewSession(a.client,
		shelf.WithLogger(a.logger),
		shelf.WithNotifier(optimistic.NotifierFunc(a.report)))

	if s.Token == "" {
		return nil
	}
	user := shelf.User{ID: s.UserID, Name: s.User}
	if user.ID == 0 || user.Name == "" {
		claims, err := jwt.PeekClaims(s.Token)
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		if user.ID == 0 {
			if user.ID, err = claims.UserID(); err != nil {
				return fmt.Errorf("decode token: %w", err)
			}
		}
		if user.Name == "" {
			user.Name = claims.Name
		}
	}
	a.session.SignIn(user)
	return nil
}

// report prints the user-facing message of an operation that did not go through.
func (a *app) report(n optimistic.Notice) {
	if n.Status == optimistic.Confirmed {
		return
	}
	fmt.Fprintf(a.errOut, "%s: %s\n", n.Status, n.Message)
}
