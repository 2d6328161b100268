package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mediasync/pkg/auth"
)

// authCmd groups the credential management subcommands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram credentials",
	Long: `Manage stored Instagram credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Instagram credentials securely",
	Long: `Store Instagram credentials in the system keychain or encrypted file.

You will be prompted for:
  - Instagram username (if not provided)
  - Session ID (from the sessionid cookie)
  - CSRF Token (from the csrftoken cookie)
  - User Agent (optional, press Enter for default)

To get these values:
1. Log into Instagram in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies
4. Copy the sessionid and csrftoken values`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored accounts",
	Run:   runStatus,
}

var removeCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	Run:   runRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(removeCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential stores:", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username = promptLine(reader, "Instagram username: ")
	}
	if username == "" {
		fmt.Fprintln(os.Stderr, "username is required")
		os.Exit(1)
	}

	sessionID := promptSecret("Session ID: ")
	if sessionID == "" {
		fmt.Fprintln(os.Stderr, "session ID is required")
		os.Exit(1)
	}
	csrfToken := promptSecret("CSRF Token: ")
	if csrfToken == "" {
		fmt.Fprintln(os.Stderr, "CSRF token is required")
		os.Exit(1)
	}
	userAgent := promptLine(reader, "User Agent (optional): ")

	account := &auth.Account{
		Username:     username,
		SessionID:    sessionID,
		CSRFToken:    csrfToken,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		fmt.Fprintln(os.Stderr, "failed to store credentials:", err)
		os.Exit(1)
	}

	fmt.Printf("Credentials for %q stored.\n", username)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential stores:", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to list accounts:", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts.")
		return
	}

	for _, a := range accounts {
		fmt.Printf("%s  session %s  updated %s\n",
			a.Username, maskSecret(a.SessionID), a.LastModified.Format("2006-01-02 15:04"))
	}
}

func runRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential stores:", err)
		os.Exit(1)
	}

	username := args[0]
	if err := manager.Delete(username); err != nil {
		fmt.Fprintln(os.Stderr, "failed to remove credentials:", err)
		os.Exit(1)
	}
	fmt.Printf("Credentials for %q removed.\n", username)
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptSecret reads a value without echoing it to the terminal.
func promptSecret(prompt string) string {
	fmt.Print(prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(value))
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}
