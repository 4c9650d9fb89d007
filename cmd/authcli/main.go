// Command authcli is a small interactive client for the Auth Service: log in
// (including the two-factor step-up), inspect the account, and manage active
// sessions from a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-client/account"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/jrsteele09/go-auth-client/authflow"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/jrsteele09/go-auth-client/twofactor"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg := config.New()

	tokens, err := tokenstore.NewManager(
		tokenstore.WithRepo(tokenstore.NewFileRepo(cfg.GetCredentialsFile())),
	)
	if err != nil {
		return err
	}

	client, err := authclient.New(cfg.GetBaseURL(), tokens,
		authclient.WithLogger(log),
		authclient.WithHTTPClient(&http.Client{Timeout: cfg.GetRequestTimeout()}),
	)
	if err != nil {
		return err
	}
	flow, err := authflow.NewFlow(client, authflow.WithLogger(log))
	if err != nil {
		return err
	}

	if len(args) == 0 {
		usage()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		return login(ctx, flow, args[1:])
	case "logout":
		return flow.Logout(ctx)
	case "whoami":
		return whoami(ctx, client)
	case "status":
		fmt.Println(flow.Status())
		if tokens.HasValidSession() {
			fmt.Println("access token: valid")
		} else {
			fmt.Println("access token: absent or expired")
		}
		return nil
	case "sessions":
		return listSessions(ctx, client)
	case "revoke":
		return revokeSession(ctx, client, args[1:])
	case "revoke-all":
		return revokeAll(ctx, client)
	case "2fa-enable":
		return enableTwoFactor(ctx, client)
	case "login-url":
		return googleLoginURL(ctx, cfg)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func login(ctx context.Context, flow *authflow.Flow, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: authcli login <email> <password>")
	}

	displayBanner()
	status, err := flow.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if status != authflow.StatusPendingTwoFactor {
		fmt.Println("Logged in.")
		return nil
	}

	// Step-up: a second factor is required. A configured TOTP secret
	// generates the code, otherwise prompt for it.
	code := ""
	if secret := os.Getenv("AUTH_TOTP_SECRET"); secret != "" {
		code, err = totp.GenerateCode(secret, time.Now())
		if err != nil {
			return err
		}
	} else {
		code, err = prompt("Two-factor code: ")
		if err != nil {
			return err
		}
	}

	if _, err := flow.VerifyTOTP(ctx, code); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func whoami(ctx context.Context, client *authclient.Client) error {
	svc, err := account.NewService(client)
	if err != nil {
		return err
	}
	user, err := svc.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s 2fa=%v verified=%v\n",
		user.DisplayName, user.Email, user.Role, user.TwoFactorEnabled, user.Verified)
	return nil
}

func listSessions(ctx context.Context, client *authclient.Client) error {
	registry, err := sessions.NewRegistry(client)
	if err != nil {
		return err
	}
	list, err := registry.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range list {
		marker := " "
		if s.Current {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s  last active %s\n",
			marker, s.ID, s.Device, s.IPAddress, s.LastActivityAt.Format(time.RFC3339))
	}
	return nil
}

func revokeSession(ctx context.Context, client *authclient.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: authcli revoke <session-id>")
	}
	registry, err := sessions.NewRegistry(client)
	if err != nil {
		return err
	}
	if _, err := registry.List(ctx); err != nil {
		return err
	}
	return registry.Revoke(ctx, args[0])
}

func revokeAll(ctx context.Context, client *authclient.Client) error {
	registry, err := sessions.NewRegistry(client)
	if err != nil {
		return err
	}
	revoked, err := registry.RevokeAll(ctx, false)
	if err != nil {
		return err
	}
	fmt.Printf("Revoked %d session(s).\n", revoked)
	return nil
}

func enableTwoFactor(ctx context.Context, client *authclient.Client) error {
	lifecycle, err := twofactor.NewLifecycle(client)
	if err != nil {
		return err
	}
	setup, err := lifecycle.Enable(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Secret: %s\nQR: %s\n", setup.Secret, setup.OTPAuthURL)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		return err
	}
	backupCodes, err := lifecycle.VerifyEnable(ctx, code)
	if err != nil {
		return err
	}

	fmt.Println("Two-factor enabled. Backup codes (shown once, store them safely):")
	for _, c := range backupCodes {
		fmt.Printf("  %s\n", c)
	}
	return nil
}

func googleLoginURL(ctx context.Context, cfg config.Config) error {
	ga, err := authflow.NewGoogleAuth(ctx, cfg.GetGoogleClientID(), cfg.GetOAuthCallbackURL())
	if err != nil {
		return err
	}
	fmt.Println(ga.AuthCodeURL("cli"))
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func displayBanner() {
	myFigure := figure.NewFigure("authcli", "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Println(`Usage: authcli <command>

Commands:
  login <email> <password>   log in (prompts for a 2FA code when required)
  logout                     revoke the current session and clear credentials
  whoami                     show the authenticated user
  status                     show the local session state
  sessions                   list active sessions
  revoke <session-id>        revoke one session
  revoke-all                 revoke all other sessions
  2fa-enable                 enable two-factor authentication
  login-url                  print the Google authorization URL`)
}
