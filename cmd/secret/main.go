// Command secret manages the cookie signing key: it generates a SECRET_KEY
// for .env and signs values with it for debugging cookies by hand.
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/session"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

var (
	envFile string
	force   bool

	rootCmd = &cobra.Command{
		Use:          "secret",
		Short:        "Manage the cookie signing key",
		SilenceUsage: true,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a SECRET_KEY and store it in the env file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := generateKey()
			if err != nil {
				return err
			}
			if err := writeKey(envFile, key, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outputStyle.Render("Wrote "+config.SecretKeyEnv+" to "+envFile))
			return nil
		},
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Sign values read from stdin with the SECRET_KEY from the env file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := godotenv.Read(envFile)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", envFile, err)
			}
			key := env[config.SecretKeyEnv]
			if key == "" {
				return fmt.Errorf("%s is not set in %s", config.SecretKeyEnv, envFile)
			}
			return signLoop(cmd.InOrStdin(), cmd.OutOrStdout(), session.NewSigner([]byte(key)))
		},
	}
)

var ErrKeyExists = errors.New("secret key already set, use --force to replace it")

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file holding the secret key")
	generateCmd.Flags().BoolVar(&force, "force", false, "replace an existing key")
	rootCmd.AddCommand(generateCmd, signCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}

// writeKey merges the key into path, keeping every other variable.
func writeKey(path, key string, force bool) error {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		env = map[string]string{}
	} else if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	if env[config.SecretKeyEnv] != "" && !force {
		return ErrKeyExists
	}
	env[config.SecretKeyEnv] = key

	return godotenv.Write(env, path)
}

func signLoop(in io.Reader, out io.Writer, signer *session.Signer) error {
	fmt.Fprintln(out, "Enter values one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("Value: "))

		if !scanner.Scan() {
			break
		}

		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			continue
		}
		if value == "quit" {
			break
		}

		fmt.Fprintln(out, outputStyle.Render("Signed: "+signer.Sign(value)))
	}

	return scanner.Err()
}
