package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lawvn/lawfetch/internal/config"
)

// promptCredentials fills in whichever credential fields the
// environment did not supply. The password is read without echo when
// stdin is a real terminal.
func promptCredentials(cmd *cobra.Command, creds config.Credentials) (config.Credentials, error) {
	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(in)

	if creds.Username == "" {
		fmt.Fprint(out, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = strings.TrimSpace(line)
	}

	if creds.Password == "" {
		fmt.Fprint(out, "Password: ")
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			secret, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return creds, fmt.Errorf("read password: %w", err)
			}
			creds.Password = strings.TrimSpace(string(secret))
		} else {
			line, err := reader.ReadString('\n')
			if err != nil {
				return creds, fmt.Errorf("read password: %w", err)
			}
			creds.Password = strings.TrimSpace(line)
		}
	}

	if !creds.Complete() {
		return creds, fmt.Errorf("credentials incomplete: set %s and %s or enter both when prompted", config.EnvUsername, config.EnvPassword)
	}
	return creds, nil
}
