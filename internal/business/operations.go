package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/pkg/callback"
)

// ErrOperationFailed is returned when an operation reported a failed Result.
var ErrOperationFailed = errors.New("operation failed")

// ErrMissingCredentials is returned when neither flags nor config provide an email and password.
var ErrMissingCredentials = errors.New("missing account email or password")

// Operation starts one or more repository operations.
type Operation func(repo *profile.Repository) error

// RunOperation runs op against a repository built from cfg, prints every
// event to out and returns once all started operations are done.
func RunOperation(ctx context.Context, cfg *config.Config, out io.Writer, op Operation) error {
	sess, err := initSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.close()

	printer := NewEventPrinter(out)
	if err := printer.Attach(sess.repo); err != nil {
		return err
	}

	if err := op(sess.repo); err != nil {
		return err
	}
	sess.scope.Wait()

	if err := printer.Err(); err != nil {
		return err
	}
	if printer.Failed() {
		return ErrOperationFailed
	}

	return nil
}

type SignupInput struct {
	Email           string
	Name            string
	Password        string
	ConfirmPassword string
}

func SignupMain(in SignupInput) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		slogctx.Info(ctx, "Creating account", "email", in.Email)
		return RunOperation(ctx, cfg, os.Stdout, func(repo *profile.Repository) error {
			repo.Signup(in.Email, in.Name, in.Password, in.ConfirmPassword)
			return nil
		})
	}
}

// LoginMain authenticates; with refresh set the profile is fetched right after.
func LoginMain(email, password string, refresh bool) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		email, password, err := accountCredentials(cfg, email, password)
		if err != nil {
			return err
		}

		slogctx.Info(ctx, "Authenticating", "email", email)
		return RunOperation(ctx, cfg, os.Stdout, func(repo *profile.Repository) error {
			if !refresh {
				repo.Login(email, password)
				return nil
			}
			return LoginThenRefresh(repo, email, password)
		})
	}
}

// accountCredentials fills the email and password not given on the command
// line from the account section of the config.
func accountCredentials(cfg *config.Config, email, password string) (string, string, error) {
	if email == "" {
		email = cfg.Account.Email
	}
	if password == "" && cfg.Account.Password.Source != "" {
		value, err := commoncfg.LoadValueFromSourceRef(cfg.Account.Password)
		if err != nil {
			return "", "", fmt.Errorf("failed to load account password: %w", err)
		}
		password = string(value)
	}
	if email == "" || password == "" {
		return "", "", ErrMissingCredentials
	}

	return email, password, nil
}

func UpdateMain(u profile.ProfileUpdate) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		return RunOperation(ctx, cfg, os.Stdout, func(repo *profile.Repository) error {
			repo.UpdateProfile(u)
			return nil
		})
	}
}

func RefreshMain(ctx context.Context, cfg *config.Config) error {
	return RunOperation(ctx, cfg, os.Stdout, func(repo *profile.Repository) error {
		repo.RefreshProfile()
		return nil
	})
}

// LoginThenRefresh chains a refresh to a successful login. The handle is
// subscribed before the login starts so its result cannot be missed.
func LoginThenRefresh(repo *profile.Repository, email, password string) error {
	var h *callback.Handle[profile.Result]
	h = callback.NewHandle("login-then-refresh", func(_ context.Context, res profile.Result) {
		_ = repo.UnsubscribeResult(profile.LoginResult, h)
		if res.Success {
			repo.RefreshProfile()
		}
	})
	if err := repo.SubscribeResult(profile.LoginResult, h); err != nil {
		return fmt.Errorf("subscribing to the login result: %w", err)
	}
	repo.Login(email, password)

	return nil
}
