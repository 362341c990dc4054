package hid

// Device represents an opened HID device capable of report I/O.
type Device interface {
	Write([]byte) (int, error) // send output report, report ID at byte 0
	Read([]byte) (int, error)  // read input report
	Close() error
}

// Advanced exposes report-specific operations and lengths when available.
// Implementations may choose to support only a subset.
type Advanced interface {
	WriteOutput(reportID byte, data []byte) error
	WriteFeature(reportID byte, data []byte) error
	ReadFeature(reportID byte) ([]byte, error)
	ReportLens() (inLen, outLen, featLen int)
}

// Info represents a HID device descriptor.
type Info struct {
	Path          string
	VendorID      uint16
	ProductID     uint16
	Product       string
	Manufacturer  string
	SerialNumber  string
	ReleaseNumber uint16
}

// Manager enumerates and opens HID devices.
type Manager interface {
	List() ([]Info, error)
	Open(info Info) (Device, error)
	OpenVIDPID(vendorID, productID uint16) (Device, error)
}

// NewManager returns the OS-specific HID manager.
func NewManager() (Manager, error) {
	return newManager()
}

// WriteFeature sends a feature report through d, falling back to an output
// report when the backend has no feature support.
func WriteFeature(d Device, reportID byte, data []byte) error {
	if adv, ok := d.(Advanced); ok {
		return adv.WriteFeature(reportID, data)
	}
	report := make([]byte, len(data)+1)
	report[0] = reportID
	copy(report[1:], data)
	_, err := d.Write(report)
	return err
}

// WriteOutput sends an output report through d.
func WriteOutput(d Device, reportID byte, data []byte) error {
	if adv, ok := d.(Advanced); ok {
		return adv.WriteOutput(reportID, data)
	}
	report := make([]byte, len(data)+1)
	report[0] = reportID
	copy(report[1:], data)
	_, err := d.Write(report)
	return err
}
