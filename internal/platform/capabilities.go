package platform

import (
	"io/fs"
	"os"

	"emberline/internal/errs"
)

// FileSystem is the file-access capability. Paths are UTF-8 throughout;
// hosts needing a different native encoding convert behind this
// interface.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (osFileSystem) Remove(path string) error            { return os.Remove(path) }
func (osFileSystem) Rename(o, n string) error            { return os.Rename(o, n) }
func (osFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }
func (osFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Clipboard is the text-clipboard capability. Hosts without one report
// unsupported; the other methods then fail with a typed error rather
// than pretending to work.
type Clipboard interface {
	IsSupported() bool
	SetText(s string) error
	GetText() (string, error)
	HasText() (bool, error)
}

type unsupportedClipboard struct{}

func (unsupportedClipboard) IsSupported() bool { return false }
func (unsupportedClipboard) SetText(string) error {
	return errs.New(errs.KindUnsupported, "clipboard not supported on this host")
}
func (unsupportedClipboard) GetText() (string, error) {
	return "", errs.New(errs.KindUnsupported, "clipboard not supported on this host")
}
func (unsupportedClipboard) HasText() (bool, error) {
	return false, errs.New(errs.KindUnsupported, "clipboard not supported on this host")
}

// MemoryClipboard is an in-process clipboard for hosts and tests that
// have no system one but still want the capability live.
type MemoryClipboard struct {
	text string
	set  bool
}

func (c *MemoryClipboard) IsSupported() bool { return true }
func (c *MemoryClipboard) SetText(s string) error {
	c.text, c.set = s, true
	return nil
}
func (c *MemoryClipboard) GetText() (string, error) {
	if !c.set {
		return "", errs.New(errs.KindNotFound, "clipboard is empty")
	}
	return c.text, nil
}
func (c *MemoryClipboard) HasText() (bool, error) { return c.set, nil }

// MusicPlayer is the background-music capability.
type MusicPlayer interface {
	Play(path string) error
	Stop()
	SetVolume(v float64)
	Shutdown()
}

// Permission is a host permission the engine may need at runtime.
type Permission int

const (
	PermissionStorage Permission = iota
	PermissionMicrophone
)

func (p Permission) String() string {
	switch p {
	case PermissionStorage:
		return "storage"
	case PermissionMicrophone:
		return "microphone"
	}
	return "unknown"
}

// Permissions is the runtime-permission capability. Desktop hosts grant
// everything implicitly.
type Permissions interface {
	Request(p Permission)
	Have(p Permission) bool
}

type grantedPermissions struct{}

func (grantedPermissions) Request(Permission)   {}
func (grantedPermissions) Have(Permission) bool { return true }
