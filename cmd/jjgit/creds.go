package main

import "github.com/jjvcs/gitbridge/internal/gitrepo"

// credsForRemote looks up the TOML-configured credentials for a remote by
// name, returning the zero value (anonymous / agent-default) if none are
// configured.
func credsForRemote(settings Settings, remoteName string) gitrepo.CredentialSettings {
	c, ok := settings.Remote[remoteName]
	if !ok {
		return gitrepo.CredentialSettings{}
	}
	return gitrepo.CredentialSettings{
		SSHKeyPath:     c.SSHKeyPath,
		SSHKeyPassword: c.SSHKeyPassword,
		Username:       c.Username,
		Password:       c.Password,
	}
}
