package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/simmr/internal/auth"
	"github.com/hammamikhairi/simmr/internal/domain"
)

// profileTimeout bounds how long login and whoami wait for the account.
const profileTimeout = 10 * time.Second

var (
	loginEmail    string
	loginPassword string
	loginRegister bool
	loginName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	f := loginCmd.Flags()
	f.StringVar(&loginEmail, "email", "", "account email (prompted when empty)")
	f.StringVar(&loginPassword, "password", "", "account password (read from stdin when empty)")
	f.BoolVar(&loginRegister, "register", false, "create the account first")
	f.StringVar(&loginName, "name", "", "display name for --register")
}

// authWatch prints auth-state changes from a holder subscription.
type authWatch struct {
	settled chan struct{} // closed once a signed-in state finished loading
	done    chan struct{}
	stop    func()
}

func watchAuth(holder *auth.Holder, out io.Writer) *authWatch {
	states, unsubscribe := holder.Subscribe()
	w := &authWatch{
		settled: make(chan struct{}),
		done:    make(chan struct{}),
		stop:    unsubscribe,
	}
	go func() {
		defer close(w.done)
		var once sync.Once
		for st := range states {
			switch {
			case st.Loading:
				fmt.Fprintln(out, "  loading profile...")
				continue
			case st.LoggedIn && st.Profile != nil:
				fmt.Fprintf(out, "  signed in as %s <%s>\n", st.Profile.DisplayName, st.Profile.Email)
			case st.LoggedIn:
				fmt.Fprintf(out, "  signed in as %s\n", st.Session.Email)
			default:
				continue
			}
			once.Do(func() { close(w.settled) })
		}
	}()
	return w
}

// wait blocks until the profile has loaded or the timeout passes.
func (w *authWatch) wait(timeout time.Duration) {
	select {
	case <-w.settled:
	case <-time.After(timeout):
	}
}

// close unsubscribes and waits for pending output.
func (w *authWatch) close() {
	w.stop()
	<-w.done
}

// profileLoader resolves a session to its account through the backend.
func profileLoader(svc *auth.Service) auth.ProfileLoader {
	return func(ctx context.Context, s *domain.AuthSession) (*domain.User, error) {
		return svc.Profile(ctx, s.Token)
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	email, err := promptIfEmpty(in, out, loginEmail, "email: ")
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(in, out, loginPassword, "password: ")
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer be.Close()
	if !be.durable {
		log.Warn("no database configured; the account only lives for this run")
	}

	svc, err := be.authService()
	if err != nil {
		return err
	}

	if loginRegister {
		if _, err := svc.Register(ctx, email, password, loginName); err != nil {
			return fmt.Errorf("registering: %w", err)
		}
	}
	session, err := svc.Login(ctx, email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return errors.New("wrong email or password")
	}
	if err != nil {
		return err
	}

	holder := auth.NewHolder(log, auth.WithProfileLoader(profileLoader(svc)))
	watch := watchAuth(holder, out)
	holder.Set(session)
	watch.wait(profileTimeout)
	holder.Close()
	watch.close()

	return auth.SaveSession(sessionPath(), session)
}

func runLogout(cmd *cobra.Command, args []string) error {
	who := "nobody"
	if s, err := auth.LoadSession(sessionPath()); err == nil {
		who = s.Email
	}
	if err := auth.RemoveSession(sessionPath()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed out %s\n", who)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := auth.LoadSession(sessionPath())
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintf(out, "not signed in (pantry and cooking use the %q profile)\n", localUserID)
		return nil
	}
	if err != nil {
		return err
	}

	var opts []auth.HolderOption
	if cfg.Auth.JWTSecret != "" && cfg.Database.URL != "" {
		be, err := openBackend(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer be.Close()
		svc, err := be.authService()
		if err != nil {
			return err
		}
		opts = append(opts, auth.WithProfileLoader(profileLoader(svc)))
	}

	holder := auth.NewHolder(log, opts...)
	watch := watchAuth(holder, out)
	restored := holder.Restore(s)
	if restored {
		watch.wait(profileTimeout)
	}
	holder.Close()
	watch.close()

	if !restored {
		fmt.Fprintln(out, "saved session expired, run `simmr login`")
	}
	return nil
}

func promptIfEmpty(in *bufio.Reader, out io.Writer, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return strings.TrimSpace(line), nil
}
