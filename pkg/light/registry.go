package light

import (
	"fmt"
	"sort"
	"sync"

	"github.com/busylight-go/busylight/internal/hid"
)

// Driver identifies and opens lights for one vendor family. Driver packages
// register themselves in init, so binaries pull them in with blank imports.
type Driver struct {
	// Name is the human-readable vendor/family name.
	Name string

	// VendorIDs lists every USB vendor ID the driver may claim. Used to
	// generate udev rules; Supports makes the actual claim decision.
	VendorIDs []uint16

	// Supports reports whether the driver claims the descriptor.
	Supports func(info hid.Info) bool

	// Open adapts an opened HID device into a Light.
	Open func(dev hid.Device, info hid.Info) (Light, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available to the Manager. It panics when called
// twice with the same name, mirroring database/sql.
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d.Name == "" || d.Supports == nil || d.Open == nil {
		panic("light: Register driver is incomplete")
	}
	if _, dup := drivers[d.Name]; dup {
		panic(fmt.Sprintf("light: Register called twice for driver %q", d.Name))
	}
	drivers[d.Name] = d
}

// Supported returns the registered driver names, sorted.
func Supported() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VendorIDs returns every vendor ID any registered driver may claim, sorted
// and deduplicated.
func VendorIDs() []uint16 {
	driversMu.RLock()
	defer driversMu.RUnlock()
	seen := make(map[uint16]bool)
	var ids []uint16
	for _, d := range drivers {
		for _, id := range d.VendorIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func driverFor(info hid.Info) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	for _, d := range drivers {
		if d.Supports(info) {
			return d, true
		}
	}
	return Driver{}, false
}
