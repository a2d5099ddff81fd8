package environ

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"golang.org/x/crypto/ssh"
)

// SSHConfig describes one configured SSH connection.
type SSHConfig struct {
	Name           string `yaml:"name"`
	Host           string `yaml:"host"`
	Port           string `yaml:"port,omitempty"`
	User           string `yaml:"user"`
	PrivateKeyPath string `yaml:"private_key,omitempty"`
}

// SSHClient is an Environment backed by a single persistent SSH connection.
// File operations run shell commands on the remote; there is no SFTP
// dependency. Not safe for concurrent use.
type SSHClient struct {
	cfg    SSHConfig
	sshCfg *ssh.ClientConfig
	client *ssh.Client
}

// NewSSHClient builds a client from the connection config. Connect must be
// called before any file operation.
func NewSSHClient(cfg SSHConfig) (*SSHClient, error) {
	keyPath := cfg.PrivateKeyPath
	if keyPath == "" {
		home, _ := os.UserHomeDir()
		keyPath = path.Join(home, ".ssh", "id_rsa")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return &SSHClient{
		cfg: cfg,
		sshCfg: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		},
	}, nil
}

func (c *SSHClient) Descriptor() Descriptor {
	return Descriptor{Kind: KindSSH, Identity: c.cfg.Name}
}

// Connect dials the remote host.
func (c *SSHClient) Connect() error {
	port := c.cfg.Port
	if port == "" {
		port = "22"
	}
	client, err := ssh.Dial("tcp", c.cfg.Host+":"+port, c.sshCfg)
	if err != nil {
		return &UnavailableError{Env: c.Descriptor(), Reason: err.Error()}
	}
	c.client = client
	return nil
}

// Close tears down the connection.
func (c *SSHClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *SSHClient) CheckAvailability(ctx context.Context) error {
	if c.client == nil {
		if err := c.Connect(); err != nil {
			return err
		}
	}
	if _, err := c.run(ctx, "true", nil); err != nil {
		return &UnavailableError{Env: c.Descriptor(), Reason: err.Error()}
	}
	return nil
}

// run executes a command in a fresh session. ssh sessions have no context
// support, so cancellation closes the session from a watcher goroutine.
func (c *SSHClient) run(ctx context.Context, command string, stdin []byte) ([]byte, error) {
	if c.client == nil {
		return nil, &UnavailableError{Env: c.Descriptor(), Reason: "not connected"}
	}
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		session.Close()
		<-done
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return nil, fmt.Errorf("%s", msg)
		}
		return stdout.Bytes(), nil
	}
}

func (c *SSHClient) ReadFile(ctx context.Context, p string) ([]byte, error) {
	q := Quote(p)
	out, err := c.run(ctx, fmt.Sprintf("if [ -f %s ]; then cat %s; else echo __AGENTSYNC_NOENT__ >&2; exit 3; fi", q, q), nil)
	if err != nil {
		if strings.Contains(err.Error(), "__AGENTSYNC_NOENT__") {
			return nil, ErrNotFound
		}
		return nil, &TransferError{Op: "read", Path: p, Err: err}
	}
	return out, nil
}

func (c *SSHClient) WriteFile(ctx context.Context, p string, data []byte) error {
	dir := path.Dir(p)
	_, err := c.run(ctx, fmt.Sprintf("mkdir -p %s && cat > %s", Quote(dir), Quote(p)), data)
	if err != nil {
		return &TransferError{Op: "write", Path: p, Err: err}
	}
	return nil
}

func (c *SSHClient) ListDirectory(ctx context.Context, p string) ([]Entry, error) {
	q := Quote(p)
	out, err := c.run(ctx, fmt.Sprintf("if [ -d %s ]; then ls -1Ap %s; else echo __AGENTSYNC_NOENT__ >&2; exit 3; fi", q, q), nil)
	if err != nil {
		if strings.Contains(err.Error(), "__AGENTSYNC_NOENT__") {
			return nil, ErrNotFound
		}
		return nil, &TransferError{Op: "list", Path: p, Err: err}
	}
	return parseListing(string(out)), nil
}

func (c *SSHClient) RunCommand(ctx context.Context, command string) (string, error) {
	out, err := c.run(ctx, command, nil)
	return string(out), err
}
