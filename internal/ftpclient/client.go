// Package ftpclient opens FTP sessions with github.com/jlaffaye/ftp.
package ftpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"github.com/jlaffaye/ftp"

	"iolib/internal/domain"
	ftpsvc "iolib/internal/service/ftp"
)

// DefaultPort is used when the host carries no port.
const DefaultPort = "21"

var (
	_ domain.FileTransfer = (*Conn)(nil)
	_ ftpsvc.Dialer       = Dial
)

// Conn is an open session.
type Conn struct {
	sc *ftp.ServerConn
}

// Dial connects to opts.Host and logs in. Login is skipped when no user is
// given, leaving an anonymous control connection.
func Dial(ctx context.Context, opts ftpsvc.ConnectOptions) (domain.FileTransfer, error) {
	dialOpts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(opts.Timeout))
	}
	if opts.TLS {
		conf := opts.TLSConfig
		if conf == nil {
			host, _, _ := net.SplitHostPort(Address(opts.Host))
			conf = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(conf))
	}

	sc, err := ftp.Dial(Address(opts.Host), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.Host, err)
	}
	if opts.User != "" {
		if err := sc.Login(opts.User, opts.Password); err != nil {
			_ = sc.Quit()
			return nil, fmt.Errorf("login as %s: %w", opts.User, err)
		}
	}
	return &Conn{sc: sc}, nil
}

// Address appends DefaultPort to a bare host.
func Address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, DefaultPort)
}

// NameList issues NLST.
func (c *Conn) NameList(path string) ([]string, error) {
	return c.sc.NameList(path)
}

// Retrieve issues RETR and copies the file into w.
func (c *Conn) Retrieve(path string, w io.Writer) error {
	resp, err := c.sc.Retr(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, resp); err != nil {
		_ = resp.Close()
		return err
	}
	return resp.Close()
}

// Store issues STOR.
func (c *Conn) Store(path string, r io.Reader) error {
	return c.sc.Stor(path, r)
}

// Quit closes the session.
func (c *Conn) Quit() error {
	return c.sc.Quit()
}
