package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshSchemePrefixConstant        = "ssh://"
	httpsSchemePrefixConstant      = "https://"
	scpUserPrefixConstant          = "git@"
	scpHostPathDelimiterConstant   = ":"
	remotePathSeparatorConstant    = "/"
	gitDirectorySuffixConstant     = ".git"
	sshRemoteTemplateConstant      = "git@%s:%s/%s.git"
	httpsRemoteTemplateConstant    = "https://%s/%s/%s.git"
	remoteErrorTemplateConstant    = "%s: %s"
	malformedRemoteMessageConstant = "invalid remote url"
	unknownProtocolMessageConstant = "unsupported remote protocol"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL converts a textual remote into its structured form. SSH
// remotes are accepted in both the scp-like "git@host:owner/repo.git" and the
// "ssh://git@host/owner/repo.git" spellings.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	protocol := RemoteProtocolSSH
	hostAndPath := ""
	switch {
	case strings.HasPrefix(trimmedRemote, httpsSchemePrefixConstant):
		protocol = RemoteProtocolHTTPS
		hostAndPath = strings.TrimPrefix(trimmedRemote, httpsSchemePrefixConstant)
	case strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant), strings.HasPrefix(trimmedRemote, scpUserPrefixConstant):
		withoutScheme := strings.TrimPrefix(trimmedRemote, sshSchemePrefixConstant)
		userSuffixIndex := strings.Index(withoutScheme, "@")
		if userSuffixIndex == -1 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: malformedRemoteMessageConstant}
		}
		// scp-like remotes separate host and path with a colon.
		hostAndPath = strings.Replace(withoutScheme[userSuffixIndex+1:], scpHostPathDelimiterConstant, remotePathSeparatorConstant, 1)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: malformedRemoteMessageConstant}
	}

	pathSegments := strings.Split(hostAndPath, remotePathSeparatorConstant)
	if len(pathSegments) < 3 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: malformedRemoteMessageConstant}
	}

	repositoryName := strings.TrimSuffix(strings.Join(pathSegments[2:], remotePathSeparatorConstant), gitDirectorySuffixConstant)
	if len(pathSegments[0]) == 0 || len(pathSegments[1]) == 0 || len(repositoryName) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: malformedRemoteMessageConstant}
	}

	return RemoteURL{
		Protocol:   protocol,
		Host:       pathSegments[0],
		Owner:      pathSegments[1],
		Repository: repositoryName,
	}, nil
}

// FormatRemoteURL creates a textual remote URL from its structured form.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	for _, requiredField := range []string{remote.Host, remote.Owner, remote.Repository} {
		if len(strings.TrimSpace(requiredField)) == 0 {
			return "", RemoteURLParseError{Input: requiredField, Message: requiredValueMessageConstant}
		}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRemoteTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRemoteTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
