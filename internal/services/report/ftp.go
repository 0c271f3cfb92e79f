// Package report publishes the finished analysis/prediction report as a
// JSON document to remote hosting over FTP.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"CoinPulse/pkg/config"
	applogger "CoinPulse/pkg/logger"
)

const DefaultReportName = "prediction.json"

// Uploader stores JSON reports on an FTP server. Each upload opens a
// fresh connection; report publication is a once-per-run operation.
type Uploader struct {
	host    string
	port    int
	user    string
	pass    string
	dir     string
	timeout time.Duration
	l       *applogger.Logger
}

func NewUploader(cfg *config.Config, l *applogger.Logger) *Uploader {
	port := cfg.FTP.Port
	if port == 0 {
		port = 21
	}
	timeout := cfg.FTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Uploader{
		host:    cfg.FTP.Host,
		port:    port,
		user:    cfg.FTP.User,
		pass:    cfg.FTP.Password,
		dir:     strings.Trim(cfg.FTP.Dir, "/"),
		timeout: timeout,
		l:       l,
	}
}

// IsConfigured reports whether a target host is set.
func (u *Uploader) IsConfigured() bool { return u.host != "" }

// UploadJSON marshals data (indented, for hand inspection on the remote
// side) and stores it under filename, creating missing directories along
// the remote path.
func (u *Uploader) UploadJSON(ctx context.Context, data interface{}, filename string) error {
	if !u.IsConfigured() {
		return fmt.Errorf("ftp: not configured")
	}
	if filename == "" {
		filename = DefaultReportName
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("ftp: marshal report: %w", err)
	}

	conn, err := ftp.Dial(
		fmt.Sprintf("%s:%d", u.host, u.port),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(u.timeout),
	)
	if err != nil {
		return fmt.Errorf("ftp: dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(u.user, u.pass); err != nil {
		return fmt.Errorf("ftp: login: %w", err)
	}

	remotePath := filename
	if u.dir != "" {
		remotePath = u.dir + "/" + filename
	}
	if err := u.ensureRemoteDir(conn, remotePath); err != nil {
		return fmt.Errorf("ftp: ensure dir: %w", err)
	}

	if err := conn.Stor(remotePath, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("ftp: store %s: %w", remotePath, err)
	}

	u.l.Info("uploaded report",
		applogger.String("path", remotePath),
		applogger.Int("bytes", len(b)))
	return nil
}

// ensureRemoteDir creates each directory along the remote file path.
// MakeDir on an existing directory fails, which is fine.
func (u *Uploader) ensureRemoteDir(conn *ftp.ServerConn, remotePath string) error {
	idx := strings.LastIndex(remotePath, "/")
	if idx < 0 {
		return nil
	}
	parts := strings.Split(remotePath[:idx], "/")
	current := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if current == "" {
			current = p
		} else {
			current = current + "/" + p
		}
		_ = conn.MakeDir(current)
	}
	return nil
}
