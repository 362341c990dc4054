package hid

import (
	"fmt"
	"sync"
)

// MockReport is a single report captured by MockDevice.
type MockReport struct {
	ID      byte
	Data    []byte
	Feature bool
}

// MockDevice records every report written to it. Lights are write-only
// devices, so the mock has no input stream to simulate.
type MockDevice struct {
	mu      sync.Mutex
	reports []MockReport
	closed  bool

	FailWrites bool
}

func NewMockDevice() *MockDevice { return &MockDevice{} }

func (m *MockDevice) record(id byte, data []byte, feature bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("mock write failure")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.reports = append(m.reports, MockReport{ID: id, Data: buf, Feature: feature})
	return nil
}

func (m *MockDevice) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := m.record(p[0], p[1:], false); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (m *MockDevice) Read(p []byte) (int, error) { return 0, nil }

func (m *MockDevice) WriteOutput(reportID byte, data []byte) error {
	return m.record(reportID, data, false)
}

func (m *MockDevice) WriteFeature(reportID byte, data []byte) error {
	return m.record(reportID, data, true)
}

func (m *MockDevice) ReadFeature(reportID byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].Feature && m.reports[i].ID == reportID {
			return m.reports[i].Data, nil
		}
	}
	return nil, fmt.Errorf("no feature report 0x%02X", reportID)
}

func (m *MockDevice) ReportLens() (int, int, int) { return 64, 64, 64 }

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Reports returns a copy of every report written so far.
func (m *MockDevice) Reports() []MockReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockReport, len(m.reports))
	copy(out, m.reports)
	return out
}

// LastReport returns the most recent report, or false when none were written.
func (m *MockDevice) LastReport() (MockReport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return MockReport{}, false
	}
	return m.reports[len(m.reports)-1], true
}

func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockManager serves a fixed set of descriptors, each backed by a MockDevice.
type MockManager struct {
	mu      sync.Mutex
	infos   []Info
	devices map[string]*MockDevice
}

func NewMockManager(infos ...Info) *MockManager {
	return &MockManager{infos: infos, devices: make(map[string]*MockDevice)}
}

func (m *MockManager) List() ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, len(m.infos))
	copy(out, m.infos)
	return out, nil
}

func (m *MockManager) Open(info Info) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.infos {
		if i.Path == info.Path {
			dev := NewMockDevice()
			m.devices[info.Path] = dev
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", info.Path)
}

func (m *MockManager) OpenVIDPID(vendorID, productID uint16) (Device, error) {
	m.mu.Lock()
	infos := m.infos
	m.mu.Unlock()
	for _, i := range infos {
		if i.VendorID == vendorID && i.ProductID == productID {
			return m.Open(i)
		}
	}
	return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vendorID, productID)
}

// SetInfos replaces the descriptor list, simulating plug/unplug events.
func (m *MockManager) SetInfos(infos ...Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = infos
}

// Device returns the mock opened for path, if any.
func (m *MockManager) Device(path string) *MockDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices[path]
}
