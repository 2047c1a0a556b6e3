package gitrepo

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// CredentialSettings configures how AuthMethod resolves credentials for a
// single remote, per spec.md §4.6: try an SSH agent first, then an
// explicit key file, then a configured username/password, before giving
// up and letting go-git fall back to its own defaults (which for SSH
// means reading ~/.ssh/config and known_hosts directly).
type CredentialSettings struct {
	SSHKeyPath     string
	SSHKeyPassword string
	Username       string
	Password       string
}

// AuthMethod picks a transport.AuthMethod for url given settings. A nil
// return means "let go-git use its protocol default" (e.g. anonymous
// HTTP, or an SSH agent go-git discovers on its own).
func AuthMethod(url string, settings CredentialSettings) (transport.AuthMethod, error) {
	isSSH := transportIsSSH(url)

	if isSSH {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			auth, err := ssh.NewSSHAgentAuth(sshUser(url))
			if err == nil {
				return auth, nil
			}
			// Agent present but unusable (e.g. no identities loaded);
			// fall through to an explicit key if one is configured.
		}

		if settings.SSHKeyPath != "" {
			auth, err := ssh.NewPublicKeysFromFile(sshUser(url), settings.SSHKeyPath, settings.SSHKeyPassword)
			if err != nil {
				return nil, fmt.Errorf("load ssh key %s: %w", settings.SSHKeyPath, err)
			}
			return auth, nil
		}

		return nil, nil
	}

	if settings.Username != "" || settings.Password != "" {
		return &http.BasicAuth{Username: settings.Username, Password: settings.Password}, nil
	}

	return nil, nil
}

// transportIsSSH recognizes both "ssh://" URLs and the scp-like shorthand
// ("git@host:owner/repo.git") go-git's transport package treats as SSH.
func transportIsSSH(url string) bool {
	if strings.HasPrefix(url, "ssh://") {
		return true
	}
	if strings.Contains(url, "://") {
		return false
	}
	at := strings.IndexByte(url, '@')
	colon := strings.IndexByte(url, ':')
	return at >= 0 && colon > at
}

func sshUser(url string) string {
	if at := strings.IndexByte(url, '@'); at >= 0 {
		return url[:at]
	}
	return "git"
}
