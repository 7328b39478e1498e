package cli

import (
	"fmt"
	"time"

	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Sign in, create an account or sign out of the TodoIsland service.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with username (or email) and password",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var googleCmd = &cobra.Command{
	Use:   "google",
	Short: "Sign in with a Google ID token",
	RunE:  runGoogle,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE:  runStatus,
}

var (
	loginUsername string
	googleIDToken string
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(googleCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email (prompted when empty)")
	googleCmd.Flags().StringVar(&googleIDToken, "id-token", "", "Google ID token")
	_ = googleCmd.MarkFlagRequired("id-token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	username := loginUsername
	if username == "" {
		if username, err = p.line("Username or email: "); err != nil {
			return err
		}
	}
	password, err := p.secret("Password: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Signing in...")
	sess, err := a.store.Login(cmd.Context(), model.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Welcome, %s!\n", sess.User.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	var reg model.Registration
	if reg.Username, err = p.line("Username: "); err != nil {
		return err
	}
	if reg.Email, err = p.line("Email: "); err != nil {
		return err
	}
	if reg.Password, err = p.secret("Password: "); err != nil {
		return err
	}
	if reg.Confirm, err = p.secret("Confirm Password: "); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "🔄 Creating account...")
	sess, err := a.store.Register(cmd.Context(), reg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Account created. Welcome, %s!\n", sess.User.DisplayName())
	return nil
}

func runGoogle(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.store.GoogleLogin(cmd.Context(), googleIDToken)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Signed in with Google as %s\n", sess.User.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, nil, resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.store.IsAuthenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}

	a.store.Logout()
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Signed out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, nil, resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !a.store.IsAuthenticated() {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	user := a.store.CurrentUser()
	fmt.Fprintf(out, "Signed in as: %s\n", user.DisplayName())
	if user != nil {
		fmt.Fprintf(out, "Username:     %s\n", user.Username)
		fmt.Fprintf(out, "Email:        %s\n", user.Email)
	}
	fmt.Fprintf(out, "Server:       %s\n", a.client.BaseURL())
	fmt.Fprintf(out, "Stored in:    %s\n", cfg.CredentialStore)

	claims, _ := a.store.TokenClaims()
	switch {
	case claims.Opaque:
		fmt.Fprintln(out, "Token:        opaque")
	case claims.ExpiresAt.IsZero():
		fmt.Fprintln(out, "Token:        no expiry")
	case claims.Expired(time.Now()):
		fmt.Fprintf(out, "Token:        expired %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	default:
		fmt.Fprintf(out, "Token:        expires %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
