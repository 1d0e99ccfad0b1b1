// Package platform is the capability facade between the engine and the
// host OS. Callers get narrow interfaces for each capability and never
// see platform conditionals; unsupported capabilities fail with typed
// errors instead of silently no-opping.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"emberline/internal/errs"
	"emberline/internal/logging"
)

// Platform aggregates the host capabilities. Built once at app
// construction; capability pointers never change afterwards.
type Platform struct {
	fs        FileSystem
	clipboard Clipboard
	analytics Analytics
	music     MusicPlayer
	perms     Permissions
	device    Device

	appName string

	// Low-level boot values: readable before env finalization so early
	// boot code can configure itself without the full environment.
	bootValues map[string]string

	envFinalized bool
	envMu        sync.Mutex

	configDir   cachedDir
	dataDir     cachedDir
	volatileDir cachedDir
	replaysDir  cachedDir
}

// cachedDir resolves a directory path exactly once. Concurrent callers
// all see the single resolved value.
type cachedDir struct {
	once sync.Once
	path string
	err  error
}

func (c *cachedDir) get(resolve func() (string, error)) (string, error) {
	c.once.Do(func() { c.path, c.err = resolve() })
	return c.path, c.err
}

// Option customizes a Platform during construction.
type Option func(*Platform)

// WithClipboard replaces the default (unsupported) clipboard.
func WithClipboard(cb Clipboard) Option {
	return func(p *Platform) { p.clipboard = cb }
}

// WithMusicPlayer replaces the default music player.
func WithMusicPlayer(mp MusicPlayer) Option {
	return func(p *Platform) { p.music = mp }
}

// WithAnalytics replaces the default analytics sink.
func WithAnalytics(a Analytics) Option {
	return func(p *Platform) { p.analytics = a }
}

// New builds the platform for this host. Boot values come from an
// optional `.env` file next to the binary plus the process environment.
func New(appName string, opts ...Option) *Platform {
	p := &Platform{
		fs:         osFileSystem{},
		clipboard:  unsupportedClipboard{},
		analytics:  newPromAnalytics(),
		music:      newBeepMusicPlayer(),
		perms:      grantedPermissions{},
		device:     newStockDevice(),
		appName:    appName,
		bootValues: make(map[string]string),
	}
	if vals, err := godotenv.Read(); err == nil {
		for k, v := range vals {
			p.bootValues[k] = v
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FS returns the filesystem capability.
func (p *Platform) FS() FileSystem { return p.fs }

// Clipboard returns the clipboard capability.
func (p *Platform) Clipboard() Clipboard { return p.clipboard }

// Analytics returns the analytics capability.
func (p *Platform) Analytics() Analytics { return p.analytics }

// Music returns the music-player capability.
func (p *Platform) Music() MusicPlayer { return p.music }

// Permissions returns the permissions capability.
func (p *Platform) Permissions() Permissions { return p.perms }

// Device returns the device-identity capability.
func (p *Platform) Device() Device { return p.device }

// LowLevelConfigValue reads a boot-time config value. Unlike the full
// environment this is available from the very start of the process, so
// early boot code can use it before env finalization. Process env wins
// over the `.env` file.
func (p *Platform) LowLevelConfigValue(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	if v, ok := p.bootValues[key]; ok {
		return v
	}
	return def
}

// FinalizeEnv marks the environment complete. Called once the app
// config has been read and applied; full env queries before this point
// are a fatal ordering bug.
func (p *Platform) FinalizeEnv() {
	p.envMu.Lock()
	defer p.envMu.Unlock()
	p.envFinalized = true
}

func (p *Platform) requireFinalizedEnv(what string) {
	p.envMu.Lock()
	finalized := p.envFinalized
	p.envMu.Unlock()
	if !finalized {
		errs.Fatalf("%s queried before env finalization", what)
	}
}

// Locale returns the host locale. Full-env only.
func (p *Platform) Locale() string {
	p.requireFinalizedEnv("locale")
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			if i := strings.IndexByte(v, '.'); i > 0 {
				v = v[:i]
			}
			return v
		}
	}
	return "en_US"
}

// OSVersion returns a best-effort host OS description. Full-env only.
func (p *Platform) OSVersion() string {
	p.requireFinalizedEnv("os version")
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Getenv reads a process environment variable. Full-env only; early
// boot code uses LowLevelConfigValue instead.
func (p *Platform) Getenv(key string) string {
	p.requireFinalizedEnv("env var")
	return os.Getenv(key)
}

// Setenv sets a process environment variable for child processes and
// later Getenv calls.
func (p *Platform) Setenv(key, value string) error {
	p.requireFinalizedEnv("env var")
	if err := os.Setenv(key, value); err != nil {
		return errs.Wrap(errs.KindIO, err, "setting env var")
	}
	return nil
}

// ConfigDirectory returns the directory holding the committed app
// config. Resolved once and cached.
func (p *Platform) ConfigDirectory() (string, error) {
	return p.configDir.get(func() (string, error) {
		if v := p.LowLevelConfigValue("EMBERLINE_CONFIG_DIR", ""); v != "" {
			return p.ensureDir(v)
		}
		base, err := os.UserConfigDir()
		if err != nil {
			return "", errs.Wrap(errs.KindIO, err, "resolving config dir")
		}
		return p.ensureDir(filepath.Join(base, p.appName))
	})
}

// DataDirectory returns the read-only bundled-data directory.
func (p *Platform) DataDirectory() (string, error) {
	return p.dataDir.get(func() (string, error) {
		if v := p.LowLevelConfigValue("EMBERLINE_DATA_DIR", ""); v != "" {
			return v, nil
		}
		exe, err := os.Executable()
		if err != nil {
			return "", errs.Wrap(errs.KindIO, err, "resolving data dir")
		}
		return filepath.Join(filepath.Dir(exe), "data"), nil
	})
}

// VolatileDataDirectory returns scratch space the host may clear
// between runs.
func (p *Platform) VolatileDataDirectory() (string, error) {
	return p.volatileDir.get(func() (string, error) {
		return p.ensureDir(filepath.Join(os.TempDir(), p.appName))
	})
}

// ReplaysDirectory returns where session replays are written.
func (p *Platform) ReplaysDirectory() (string, error) {
	return p.replaysDir.get(func() (string, error) {
		cfg, err := p.ConfigDirectory()
		if err != nil {
			return "", err
		}
		return p.ensureDir(filepath.Join(cfg, "replays"))
	})
}

func (p *Platform) ensureDir(path string) (string, error) {
	if err := p.fs.MkdirAll(path, 0o755); err != nil {
		return "", errs.Wrap(errs.KindIO, err, "creating directory")
	}
	return path, nil
}

// OnMainThreadStartApp is the pre-start hook: runs on the main thread
// before any subsystem starts, so platform-side setup (permission
// priming, device warm-up) happens while the engine is still quiet.
func (p *Platform) OnMainThreadStartApp() {
	logging.For("platform").Debug("main-thread start hook",
		"device", p.device.Name())
}
