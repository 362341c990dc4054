//go:build !windows

package hid

import (
	"errors"

	usbhid "rafaelmartins.com/p/usbhid"

	"github.com/busylight-go/busylight/internal/usbraw"
)

type usbManager struct{}

func newManager() (Manager, error) { return &usbManager{}, nil }

func (m *usbManager) List() ([]Info, error) {
	devs, err := usbhid.Enumerate(nil)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		out = append(out, Info{
			Path:          d.Path(),
			VendorID:      d.VendorId(),
			ProductID:     d.ProductId(),
			Product:       d.Product(),
			Manufacturer:  d.Manufacturer(),
			SerialNumber:  d.SerialNumber(),
			ReleaseNumber: d.Version(),
		})
	}
	return out, nil
}

type usbDevice struct{ d *usbhid.Device }

func (m *usbManager) Open(info Info) (Device, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == info.Path
	}, true, false)
	if err != nil {
		return nil, err
	}
	return &usbDevice{d}, nil
}

func (m *usbManager) OpenVIDPID(vendorID, productID uint16) (Device, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.VendorId() == vendorID && dev.ProductId() == productID
	}, true, false)
	if err != nil {
		// Some lights expose their control interface as vendor-specific
		// instead of HID. Try raw USB before giving up.
		raw, rawErr := usbraw.Open(vendorID, productID)
		if rawErr != nil {
			return nil, err
		}
		return &rawDevice{raw}, nil
	}
	return &usbDevice{d}, nil
}

// rawDevice adapts a write-only raw USB handle to the Device interface.
type rawDevice struct{ d *usbraw.Device }

func (d *rawDevice) Write(p []byte) (int, error) {
	if err := d.d.Send(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *rawDevice) Read(p []byte) (int, error) {
	return 0, errors.New("raw usb device is write-only")
}

func (d *rawDevice) Close() error { return d.d.Close() }

func (d *usbDevice) Write(p []byte) (int, error) {
	// p includes the report ID at p[0]
	if len(p) == 0 {
		return 0, nil
	}
	if err := d.d.SetOutputReport(p[0], p[1:]); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *usbDevice) Read(p []byte) (int, error) {
	_, buf, err := d.d.GetInputReport()
	if err != nil {
		return 0, err
	}
	return copy(p, buf), nil
}

// Advanced
func (d *usbDevice) WriteOutput(reportID byte, data []byte) error {
	return d.d.SetOutputReport(reportID, data)
}

func (d *usbDevice) WriteFeature(reportID byte, data []byte) error {
	return d.d.SetFeatureReport(reportID, data)
}

func (d *usbDevice) ReadFeature(reportID byte) ([]byte, error) {
	return d.d.GetFeatureReport(reportID)
}

func (d *usbDevice) ReportLens() (int, int, int) {
	return int(d.d.GetInputReportLength()), int(d.d.GetOutputReportLength()), int(d.d.GetFeatureReportLength())
}

func (d *usbDevice) Close() error { return d.d.Close() }
