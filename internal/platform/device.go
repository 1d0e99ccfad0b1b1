package platform

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"sort"

	"emberline/internal/logging"
)

// Device is the device-identity capability.
type Device interface {
	// Name is a human-readable device name.
	Name() string
	// UUIDInputs returns the host-specific strings hashed into the
	// public device id. Stable across runs on the same device.
	UUIDInputs() []string
	// LegacyUUID returns the pre-hashing device id where one exists,
	// for installs that predate the current scheme.
	LegacyUUID() (string, bool)
}

type stockDevice struct {
	name string
}

func newStockDevice() *stockDevice {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "unknown-device"
	}
	return &stockDevice{name: name}
}

func (d *stockDevice) Name() string { return d.name }

func (d *stockDevice) UUIDInputs() []string {
	return []string{d.name, runtime.GOOS, runtime.GOARCH}
}

func (d *stockDevice) LegacyUUID() (string, bool) { return "", false }

// DeviceUUID derives the stable public device id from the device's
// UUID inputs. Input order does not matter.
func DeviceUUID(d Device) string {
	inputs := append([]string(nil), d.UUIDInputs()...)
	sort.Strings(inputs)
	h := sha256.New()
	for _, in := range inputs {
		h.Write([]byte(in))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// RandomUUID returns a fresh random identifier. Used as the app
// instance id and as the device-id fallback when a host cannot supply
// stable inputs; the fallback case is logged since it breaks identity
// continuity across runs.
func RandomUUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		logging.For("platform").Warn(
			"secure random unavailable; using weak fallback id", "err", err)
		return fmt.Sprintf("fallback-%x", os.Getpid())
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
