package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/busylight-go/busylight/internal/config"
	"github.com/busylight-go/busylight/internal/hid"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/light"
)

const (
	testVID uint16 = 0xF00D
	testPID uint16 = 0x0002
)

func init() {
	light.Register(light.Driver{
		Name:      "Testlight",
		VendorIDs: []uint16{testVID},
		Supports: func(info hid.Info) bool {
			return info.VendorID == testVID && info.ProductID == testPID
		},
		Open: func(dev hid.Device, info hid.Info) (light.Light, error) {
			return &testLight{dev: dev}, nil
		},
	})
}

type testLight struct {
	dev hid.Device
}

func (l *testLight) Info() light.Info { return light.Info{Name: "Testlight"} }

func (l *testLight) On(c color.RGB) error {
	return hid.WriteOutput(l.dev, 0, []byte{c.R, c.G, c.B})
}

func (l *testLight) Off() error { return l.On(color.Off) }

func (l *testLight) Close() error { return l.dev.Close() }

func info(path string) hid.Info {
	return hid.Info{Path: path, VendorID: testVID, ProductID: testPID}
}

func newTestServer(t *testing.T, cfg *config.Config, infos ...hid.Info) (http.Handler, *hid.MockManager) {
	t.Helper()

	mock := hid.NewMockManager(infos...)
	manager, err := light.NewManager(mock)
	require.NoError(t, err)
	t.Cleanup(manager.Release)

	if cfg == nil {
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return New(ctx, &Options{Manager: manager, Config: cfg}), mock
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestListLights(t *testing.T) {
	h, _ := newTestServer(t, nil, info("usb-1"), info("usb-2"))

	var lights []struct {
		LightID int    `json:"light_id"`
		Name    string `json:"name"`
		State   string `json:"state"`
	}
	rec := doJSON(t, h, "GET", "/1/lights", "", &lights)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, lights, 2)
	require.Equal(t, 0, lights[0].LightID)
	require.Equal(t, "Testlight", lights[0].Name)
	require.Equal(t, "off", lights[0].State)
}

func TestLightOn(t *testing.T) {
	h, mock := newTestServer(t, nil, info("usb-1"), info("usb-2"))

	var resp struct {
		LightID string `json:"light_id"`
		Action  string `json:"action"`
		Color   string `json:"color"`
		Success bool   `json:"success"`
	}
	rec := doJSON(t, h, "GET", "/1/light/0/on?color=red", "", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	require.Equal(t, "on", resp.Action)
	require.Equal(t, "#ff0000", resp.Color)

	r, ok := mock.Device("usb-1").LastReport()
	require.True(t, ok)
	require.Equal(t, []byte{0xFF, 0x00, 0x00}, r.Data)

	// The other light is untouched.
	_, ok = mock.Device("usb-2").LastReport()
	require.False(t, ok)

	// Status reflects the action.
	var status struct {
		State string `json:"state"`
	}
	doJSON(t, h, "GET", "/1/light/0", "", &status)
	require.Equal(t, "on:#ff0000", status.State)
}

func TestAllLightsOnUsesDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Defaults.Color = "blue"
	cfg.Defaults.Dim = 0.5
	h, mock := newTestServer(t, cfg, info("usb-1"), info("usb-2"))

	rec := doJSON(t, h, "GET", "/1/lights/on", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"usb-1", "usb-2"} {
		r, ok := mock.Device(path).LastReport()
		require.True(t, ok, "no report on %s", path)
		require.Equal(t, []byte{0x00, 0x00, 0x7F}, r.Data)
	}
}

func TestLightOff(t *testing.T) {
	h, mock := newTestServer(t, nil, info("usb-1"))

	doJSON(t, h, "GET", "/1/lights/on", "", nil)
	rec := doJSON(t, h, "GET", "/1/lights/off", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	r, _ := mock.Device("usb-1").LastReport()
	require.Equal(t, []byte{0x00, 0x00, 0x00}, r.Data)
}

func TestErrors(t *testing.T) {
	h, _ := newTestServer(t, nil, info("usb-1"))

	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/banana/on", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/42/on", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/42", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/42/blink?color=red", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/42/pulse", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/42/rainbow", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "POST", "/1/light/42/effect", `{"effect":"blink"}`, nil).Code)
	require.Equal(t, http.StatusBadRequest, doJSON(t, h, "GET", "/1/light/0/on?color=notacolor", "", nil).Code)
	require.Equal(t, http.StatusBadRequest, doJSON(t, h, "GET", "/1/light/0/blink?speed=ludicrous", "", nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/nope", "", nil).Code)
}

func TestNoLights(t *testing.T) {
	h, _ := newTestServer(t, nil)
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/lights/on", "", nil).Code)
}

func TestBlinkStartsEffect(t *testing.T) {
	h, mock := newTestServer(t, nil, info("usb-1"))

	rec := doJSON(t, h, "GET", "/1/light/0/blink?color=red&speed=fast", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dev := mock.Device("usb-1")
	require.Eventually(t, func() bool {
		return len(dev.Reports()) >= 2
	}, 5*time.Second, 10*time.Millisecond, "blink never wrote frames")
}

func TestStateClearedOnReplug(t *testing.T) {
	h, mock := newTestServer(t, nil, info("usb-1"))

	doJSON(t, h, "GET", "/1/light/0/on?color=red", "", nil)

	var status struct {
		State string `json:"state"`
	}
	doJSON(t, h, "GET", "/1/light/0", "", &status)
	require.Equal(t, "on:#ff0000", status.State)

	// Unplug, observe the drop, then plug the same light back in.
	mock.SetInfos()
	require.Equal(t, http.StatusNotFound, doJSON(t, h, "GET", "/1/light/0", "", nil).Code)
	mock.SetInfos(info("usb-1"))

	// The re-plugged light does not inherit the stale state.
	status.State = ""
	doJSON(t, h, "GET", "/1/light/0", "", &status)
	require.Equal(t, "off", status.State)
}

func TestPostEffectValidation(t *testing.T) {
	h, _ := newTestServer(t, nil, info("usb-1"))

	rec := doJSON(t, h, "POST", "/1/light/0/effect", `{"color":"red"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "effect")

	rec = doJSON(t, h, "POST", "/1/light/0/effect", `{"effect":"sparkle"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, "POST", "/1/light/0/effect", `{"effect":"steady","dim":7}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSteadyEffect(t *testing.T) {
	h, mock := newTestServer(t, nil, info("usb-1"))

	var resp struct {
		Action  string `json:"action"`
		Success bool   `json:"success"`
	}
	rec := doJSON(t, h, "POST", "/1/light/0/effect", `{"effect":"steady","color":"white","dim":1}`, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	r, _ := mock.Device("usb-1").LastReport()
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF}, r.Data)
}

func TestSupported(t *testing.T) {
	h, _ := newTestServer(t, nil)

	var vendors []string
	rec := doJSON(t, h, "GET", "/1/supported", "", &vendors)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, vendors, "Testlight")
}

func TestBasicAuth(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Username = "api"
	cfg.Auth.Password = "hunter2"
	h, _ := newTestServer(t, cfg, info("usb-1"))

	rec := doJSON(t, h, "GET", "/1/lights", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/1/lights", nil)
	req.SetBasicAuth("api", "hunter2")
	ok := httptest.NewRecorder()
	h.ServeHTTP(ok, req)
	require.Equal(t, http.StatusOK, ok.Code)
}
