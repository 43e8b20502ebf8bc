// Command linkcut is a CLI client for the LinkCut session core.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/config"
	"github.com/linkcut/linkcut-client/internal/gateway"
	"github.com/linkcut/linkcut-client/internal/service"
	"github.com/linkcut/linkcut-client/internal/session"
	"github.com/linkcut/linkcut-client/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `linkcut CLI
Usage:
  linkcut [-api URL] [-v] <cmd> [args]

Commands:
  version
  login          -email <email> -password <pw>
  register       -email <email> -name <name> -password <pw> -confirm <pw>
  logout
  whoami
  perms
  can            -cap <capability> [-auth] [-loc <location>]
  passwd         -current <pw> -new <pw> -confirm <pw>
  delete-account -password <pw> -confirm-text <phrase>
`)
	os.Exit(2)
}

// app bundles the wired session core for one CLI invocation.
type app struct {
	svc   *service.Auth
	store *session.Store
	sched *session.Scheduler
	log   *zap.Logger
}

func buildApp(apiURL string, verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewProduction()
		if err != nil {
			return nil, err
		}
	}

	adapter := storage.NewFile(cfg.StatePath)
	store := session.New(adapter, log)
	gw := gateway.NewClient(cfg.BaseURL, cfg.RequestTimeout, func() string {
		if snap := store.Snapshot(); snap.Tokens != nil {
			return snap.Tokens.AccessToken
		}
		return ""
	}, log)
	sched := session.NewScheduler(store, gw.Refresh, cfg.AccessTTL, cfg.RefreshMargin, log)
	return &app{
		svc:   service.New(store, gw, adapter, log),
		store: store,
		sched: sched,
		log:   log,
	}, nil
}

func (a *app) close() {
	a.sched.Close()
	_ = a.log.Sync()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// main dispatches subcommands against the wired session core.
func main() {
	apiURL := flag.String("api", "", "gateway base URL (overrides LINKCUT_API_URL)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("linkcut %s (%s)\n", version, buildDate)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := buildApp(*apiURL, *verbose)
	if err != nil {
		fail(err)
	}
	defer a.close()

	if err := a.svc.Initialize(ctx); err != nil {
		fail(err)
	}

	switch cmd {

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if err := a.svc.Login(ctx, *email, *password); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "email")
		name := fs.String("name", "", "display name")
		password := fs.String("password", "", "password")
		confirm := fs.String("confirm", "", "password confirmation")
		_ = fs.Parse(flag.Args()[1:])
		err := a.svc.Register(ctx, service.RegisterInput{
			Email:           *email,
			Name:            *name,
			Password:        *password,
			ConfirmPassword: *confirm,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		if err := a.svc.Logout(ctx); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "whoami":
		snap := a.store.Snapshot()
		out := map[string]any{
			"mode":        snap.Mode.String(),
			"initialized": snap.Initialized,
		}
		if snap.User != nil {
			out["user"] = snap.User
		}
		if snap.Err != "" {
			out["error"] = snap.Err
		}
		printJSON(out)

	case "perms":
		snap := a.store.Snapshot()
		printJSON(snap.Permissions)

	case "can":
		fs := flag.NewFlagSet("can", flag.ExitOnError)
		capName := fs.String("cap", "", "capability name")
		auth := fs.Bool("auth", false, "require authentication")
		loc := fs.String("loc", "", "attempted location")
		_ = fs.Parse(flag.Args()[1:])
		d := a.svc.Decide(session.Requirement{
			RequireAuth: *auth,
			Capability:  *capName,
			Location:    *loc,
		})
		out := map[string]any{"verdict": d.Verdict.String()}
		if d.Verdict == session.DenyWithUpsell {
			out["upsell"] = d.Upsell.String()
		}
		if d.RedirectAfterLogin != "" {
			out["redirect_after_login"] = d.RedirectAfterLogin
		}
		printJSON(out)

	case "passwd":
		fs := flag.NewFlagSet("passwd", flag.ExitOnError)
		current := fs.String("current", "", "current password")
		next := fs.String("new", "", "new password")
		confirm := fs.String("confirm", "", "new password confirmation")
		_ = fs.Parse(flag.Args()[1:])
		if err := a.svc.ChangePassword(ctx, *current, *next, *confirm); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "delete-account":
		fs := flag.NewFlagSet("delete-account", flag.ExitOnError)
		password := fs.String("password", "", "password")
		confirmText := fs.String("confirm-text", "", "confirmation phrase")
		_ = fs.Parse(flag.Args()[1:])
		if err := a.svc.DeleteAccount(ctx, *password, *confirmText); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		usage()
	}
}
