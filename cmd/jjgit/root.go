// Command jjgit drives gitbridge's import/export/remote engines against
// the Git repository in the current directory, standing in for the
// porcelain a real jj-style CLI would wire this core into.
package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jjgit",
	Short: "Git interoperability core for a jj-style VCS",
	Long: `jjgit synchronizes a native operation-log view model with a Git
repository's real refs: fetch and push against a remote, import Git-side
changes into the native view, export native branch state back onto Git
refs, and manage the GC-pin namespace that keeps imported commits alive.`,
}

var repoPathFlag string
var settingsPathFlag string

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "maint", Title: "Maintenance Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&repoPathFlag, "repo", ".", "path to the Git repository")
	rootCmd.PersistentFlags().StringVar(&settingsPathFlag, "config", "", "path to a jjgit.toml settings file (defaults to <repo>/.jjgit.toml)")
}

// Settings is the subset of gitbridge's behavior a user can configure via
// TOML, decoded with BurntSushi/toml the way the teacher decodes its own
// settings files.
type Settings struct {
	AutoLocalBranch bool                `toml:"auto_local_branch"`
	Remote          map[string]RemoteCreds `toml:"remote"`
}

// RemoteCreds configures credentials for one named remote.
type RemoteCreds struct {
	SSHKeyPath     string `toml:"ssh_key_path"`
	SSHKeyPassword string `toml:"ssh_key_password"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
}

func loadSettings(repoPath, explicitPath string) (Settings, error) {
	settings := Settings{AutoLocalBranch: true}

	path := explicitPath
	if path == "" {
		path = repoPath + "/.jjgit.toml"
	}

	if _, err := os.Stat(path); err != nil {
		return settings, nil
	}

	if _, err := toml.DecodeFile(path, &settings); err != nil {
		return settings, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return settings, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "jjgit: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
