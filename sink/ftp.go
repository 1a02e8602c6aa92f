package sink

import (
	"io"
	"net"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"golang.org/x/xerrors"

	"github.com/hanamura/go-xdvdfs/log"
)

var _ Sink = &FTP{}

// Xbox consoles running an FTP server generally accept these.
const (
	defaultFTPUser = "xbox"
	defaultFTPPass = "xbox"
	defaultFTPPort = "21"
)

const dialTimeout = 10 * time.Second

// FTP uploads into a directory on a remote FTP server. Files already
// present with the expected size are skipped, which makes re-running
// an interrupted extraction cheap.
type FTP struct {
	conn *ftp.ServerConn
	base string
}

type ftpTarget struct {
	addr string
	user string
	pass string
	base string
}

func parseTarget(rawURL string) (*ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "ftp" {
		return nil, xerrors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, xerrors.Errorf("missing host in %q", rawURL)
	}

	t := &ftpTarget{
		user: defaultFTPUser,
		pass: defaultFTPPass,
		base: path.Clean("/" + u.Path),
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			t.user = name
		}
		if pass, ok := u.User.Password(); ok {
			t.pass = pass
		}
	}
	port := u.Port()
	if port == "" {
		port = defaultFTPPort
	}
	t.addr = net.JoinHostPort(u.Hostname(), port)
	return t, nil
}

// DialFTP connects to ftp://[user[:pass]@]host[:port]/dir and returns
// a sink rooted at dir, creating it if needed.
func DialFTP(rawURL string) (*FTP, error) {
	t, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := ftp.Dial(t.addr, ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return nil, xerrors.Errorf("failed to connect to %s: %w", t.addr, err)
	}
	if err := conn.Login(t.user, t.pass); err != nil {
		conn.Quit()
		return nil, xerrors.Errorf("failed to log in as %s: %w", t.user, err)
	}

	s := &FTP{conn: conn, base: t.base}
	if err := s.mkdirAll(t.base); err != nil {
		conn.Quit()
		return nil, err
	}
	return s, nil
}

func (s *FTP) CreateDir(name string) error {
	cleaned, err := cleanPath(name)
	if err != nil {
		return &Error{Op: "mkdir", Path: name, Err: err}
	}
	if err := s.mkdir(path.Join(s.base, cleaned)); err != nil {
		return &Error{Op: "mkdir", Path: name, Err: err}
	}
	return nil
}

func (s *FTP) Create(name string, size int64) (io.WriteCloser, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return nil, &Error{Op: "create", Path: name, Err: err}
	}
	full := path.Join(s.base, cleaned)

	if size >= 0 {
		if n, ok := s.remoteSize(full); ok {
			if n == size {
				return nil, ErrSkipExists
			}
			log.Logger.Warnf("remote file %s has %d bytes, want %d, replacing", full, n, size)
		}
	}

	pr, pw := io.Pipe()
	f := &ftpFile{
		sink: s,
		full: full,
		name: name,
		size: size,
		pw:   pw,
		done: make(chan error, 1),
	}
	go func() {
		err := s.conn.Stor(full, pr)
		pr.CloseWithError(err)
		f.done <- err
	}()
	return f, nil
}

func (s *FTP) Close() error {
	if err := s.conn.Quit(); err != nil {
		return xerrors.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

// mkdir tolerates directories that already exist. MakeDir has no
// portable "already exists" reply, so existence is probed instead.
func (s *FTP) mkdir(full string) error {
	if err := s.conn.MakeDir(full); err != nil {
		if cdErr := s.conn.ChangeDir(full); cdErr == nil {
			return nil
		}
		return err
	}
	return nil
}

func (s *FTP) mkdirAll(full string) error {
	full = path.Clean(full)
	if full == "/" || full == "." {
		return nil
	}
	var prefix string
	for _, seg := range strings.Split(strings.TrimPrefix(full, "/"), "/") {
		prefix += "/" + seg
		if err := s.mkdir(prefix); err != nil {
			return &Error{Op: "mkdir", Path: prefix, Err: err}
		}
	}
	return nil
}

// remoteSize asks SIZE first and falls back to listing the parent for
// servers that reject SIZE.
func (s *FTP) remoteSize(full string) (int64, bool) {
	if n, err := s.conn.FileSize(full); err == nil {
		return n, true
	}
	entries, err := s.conn.List(path.Dir(full))
	if err != nil {
		return 0, false
	}
	name := path.Base(full)
	for _, e := range entries {
		if e.Type == ftp.EntryTypeFile && e.Name == name {
			return int64(e.Size), true
		}
	}
	return 0, false
}

// ftpFile bridges the engine's chunk writes onto a blocking Stor call
// through a pipe. Close waits for the transfer and then verifies the
// uploaded size.
type ftpFile struct {
	sink *FTP
	full string
	name string
	size int64
	pw   *io.PipeWriter
	done chan error
}

func (f *ftpFile) Write(p []byte) (int, error) {
	n, err := f.pw.Write(p)
	if err != nil {
		return n, &Error{Op: "write", Path: f.name, Err: err}
	}
	return n, nil
}

func (f *ftpFile) Close() error {
	f.pw.Close()
	if err := <-f.done; err != nil {
		return &Error{Op: "close", Path: f.name, Err: err}
	}
	if f.size >= 0 {
		if n, ok := f.sink.remoteSize(f.full); ok && n != f.size {
			err := xerrors.Errorf("uploaded %d bytes, want %d", n, f.size)
			return &Error{Op: "close", Path: f.name, Err: err}
		}
	}
	return nil
}
