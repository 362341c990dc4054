package light

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
)

type managedLight struct {
	Light
	info Info
}

func (m *managedLight) Info() Info { return m.info }

// Manager discovers and drives every supported light. It is greedy by
// default: operations re-enumerate first, so lights plugged in after startup
// are picked up and vanished lights are dropped.
type Manager struct {
	hid    hid.Manager
	greedy bool

	mu      sync.Mutex
	lights  []*managedLight
	effects map[string]context.CancelFunc // keyed by device path
}

// NewManager returns a Manager backed by h, or by the OS HID manager when h
// is nil.
func NewManager(h hid.Manager) (*Manager, error) {
	if h == nil {
		var err error
		h, err = hid.NewManager()
		if err != nil {
			return nil, fmt.Errorf("hid manager: %w", err)
		}
	}
	m := &Manager{
		hid:     h,
		greedy:  true,
		effects: make(map[string]context.CancelFunc),
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetGreedy controls whether operations re-enumerate before selecting lights.
func (m *Manager) SetGreedy(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.greedy = v
}

// Refresh re-enumerates HID devices, opening newly plugged lights and
// closing ones that vanished.
func (m *Manager) Refresh() error {
	infos, err := m.hid.List()
	if err != nil {
		return fmt.Errorf("enumerate: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	present := make(map[string]hid.Info)
	for _, info := range infos {
		if _, ok := driverFor(info); ok {
			present[info.Path] = info
		}
	}

	kept := m.lights[:0]
	for _, l := range m.lights {
		if _, ok := present[l.info.Path]; !ok {
			slog.Debug("light vanished", slog.String("path", l.info.Path), slog.String("name", l.info.Name))
			m.stopEffectLocked(l.info.Path)
			_ = l.Close()
			continue
		}
		delete(present, l.info.Path)
		kept = append(kept, l)
	}
	m.lights = kept

	for _, info := range present {
		driver, _ := driverFor(info)
		dev, err := m.hid.Open(info)
		if err != nil {
			slog.Warn("failed to open device",
				slog.String("path", info.Path),
				slog.String("driver", driver.Name),
				slog.Any("error", err))
			continue
		}
		l, err := driver.Open(dev, info)
		if err != nil {
			_ = dev.Close()
			slog.Warn("driver rejected device",
				slog.String("path", info.Path),
				slog.String("driver", driver.Name),
				slog.Any("error", err))
			continue
		}
		li := l.Info()
		li.Path = info.Path
		li.VendorID = info.VendorID
		li.ProductID = info.ProductID
		li.SerialNumber = info.SerialNumber
		if li.Vendor == "" {
			li.Vendor = driver.Name
		}
		m.lights = append(m.lights, &managedLight{Light: l, info: li})
		slog.Debug("light attached", slog.String("path", li.Path), slog.String("name", li.Name))
	}

	sort.Slice(m.lights, func(i, j int) bool {
		a, b := m.lights[i].info, m.lights[j].info
		if a.Vendor != b.Vendor {
			return a.Vendor < b.Vendor
		}
		return a.Path < b.Path
	})
	for i := range m.lights {
		m.lights[i].info.Index = i
	}
	return nil
}

// Lights returns descriptors for every managed light in index order.
func (m *Manager) Lights() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, len(m.lights))
	for i, l := range m.lights {
		out[i] = l.info
	}
	return out
}

// Selected resolves indices to light descriptors using the same rules as On,
// Off and ApplyEffect: empty means all, out-of-range indices are skipped, a
// selection matching nothing is an error.
func (m *Manager) Selected(indices ...int) ([]Info, error) {
	lights, err := m.selected(indices)
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(lights))
	for i, l := range lights {
		out[i] = l.info
	}
	return out, nil
}

// selected returns lights by index. An empty selection means all lights.
// Individual out-of-range indices are skipped; a selection matching nothing
// is an error.
func (m *Manager) selected(indices []int) ([]*managedLight, error) {
	if m.greedy {
		if err := m.Refresh(); err != nil {
			slog.Debug("refresh failed", slog.Any("error", err))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.lights) == 0 {
		return nil, ErrNoLightsFound
	}
	if len(indices) == 0 {
		out := make([]*managedLight, len(m.lights))
		copy(out, m.lights)
		return out, nil
	}

	var out []*managedLight
	for _, idx := range indices {
		if idx < 0 || idx >= len(m.lights) {
			slog.Debug("skipping unknown light index", slog.Int("index", idx))
			continue
		}
		out = append(out, m.lights[idx])
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLightID, indices)
	}
	return out, nil
}

// On turns the selected lights on with the given color, stopping any running
// effect first.
func (m *Manager) On(c color.RGB, indices ...int) error {
	lights, err := m.selected(indices)
	if err != nil {
		return err
	}
	var errs []error
	for _, l := range lights {
		m.stopEffect(l.info.Path)
		if err := l.On(c); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.info.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Off turns the selected lights off, stopping any running effect first.
func (m *Manager) Off(indices ...int) error {
	lights, err := m.selected(indices)
	if err != nil {
		return err
	}
	var errs []error
	for _, l := range lights {
		m.stopEffect(l.info.Path)
		if err := l.Off(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.info.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ApplyEffect runs the effect on every selected light, one goroutine per
// light, until ctx is cancelled or every light's effect is stopped by a later
// operation. A running effect on a selected light is stopped first.
func (m *Manager) ApplyEffect(ctx context.Context, player EffectPlayer, indices ...int) error {
	lights, err := m.selected(indices)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lights {
		l := l
		lctx, cancel := context.WithCancel(gctx)
		m.setEffect(l.info.Path, cancel)
		slog.Debug("starting effect",
			slog.String("effect", player.Name()),
			slog.String("light", l.info.Name))
		g.Go(func() error {
			defer cancel()
			return player.Execute(lctx, l)
		})
	}
	return g.Wait()
}

// setEffect records the cancel function for a light's running effect,
// stopping the previous one if any.
func (m *Manager) setEffect(path string, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.effects[path]; ok {
		prev()
	}
	m.effects[path] = cancel
}

func (m *Manager) stopEffect(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopEffectLocked(path)
}

func (m *Manager) stopEffectLocked(path string) {
	if cancel, ok := m.effects[path]; ok {
		cancel()
		delete(m.effects, path)
	}
}

// Release stops all effects, turns every light off, and closes them.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, cancel := range m.effects {
		cancel()
		delete(m.effects, path)
	}
	for _, l := range m.lights {
		if err := l.Off(); err != nil {
			slog.Debug("off during release", slog.String("name", l.info.Name), slog.Any("error", err))
		}
		_ = l.Close()
	}
	m.lights = nil
}
