// Package server implements the busyserve REST surface over a LightManager.
// Mutating routes are GETs so a plain browser can drive a light, matching
// the busylight web API; a validated JSON POST covers parameterized effects.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/busylight-go/busylight/internal/config"
	"github.com/busylight-go/busylight/internal/httpapi"
	"github.com/busylight-go/busylight/pkg/color"
	"github.com/busylight-go/busylight/pkg/effect"
	"github.com/busylight-go/busylight/pkg/light"
)

// Options are required parameters for the API.
type Options struct {
	Manager *light.Manager
	Config  *config.Config
	Logger  *slog.Logger
}

type api struct {
	manager *light.Manager
	cfg     *config.Config
	log     *slog.Logger
	ctx     context.Context // bounds the lifetime of running effects

	mu    sync.Mutex
	state map[string]string // last applied action, keyed by device path
}

// New constructs the API router. Effects started by requests stop when ctx
// is cancelled.
func New(ctx context.Context, opts *Options) http.Handler {
	s := &api{
		manager: opts.Manager,
		cfg:     opts.Config,
		log:     opts.Logger,
		ctx:     ctx,
		state:   make(map[string]string),
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
	}))
	if limit := s.cfg.Server.RateLimitPerMinute; limit > 0 {
		r.Use(httprate.LimitByIP(limit, time.Minute))
	}
	if s.cfg.AuthEnabled() {
		r.Use(middleware.BasicAuth("busylight", map[string]string{
			s.cfg.Auth.Username: s.cfg.Auth.Password,
		}))
	}
	r.Use(s.logRequest)

	r.NotFound(func(rw http.ResponseWriter, r *http.Request) {
		httpapi.Write(rw, http.StatusNotFound, httpapi.Response{
			Message: "Route not found.",
		})
	})

	r.Route("/1", func(r chi.Router) {
		r.Get("/lights", s.listLights)
		r.Get("/supported", s.supported)

		r.Get("/lights/on", s.handleOn)
		r.Get("/lights/off", s.handleOff)
		r.Get("/lights/blink", s.handleBlink)
		r.Get("/lights/pulse", s.handlePulse)
		r.Get("/lights/rainbow", s.handleRainbow)

		r.Route("/light/{id}", func(r chi.Router) {
			r.Get("/", s.getLight)
			r.Get("/on", s.handleOn)
			r.Get("/off", s.handleOff)
			r.Get("/blink", s.handleBlink)
			r.Get("/pulse", s.handlePulse)
			r.Get("/rainbow", s.handleRainbow)
			r.Post("/effect", s.postEffect)
		})
	})

	return r
}

func (s *api) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(rw, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)))
	})
}

// lightStatus is the status document for one light.
type lightStatus struct {
	light.Info
	State string `json:"state"`
}

// actionResponse is the envelope returned by mutating routes.
type actionResponse struct {
	LightID string `json:"light_id"`
	Action  string `json:"action"`
	Color   string `json:"color,omitempty"`
	Speed   string `json:"speed,omitempty"`
	Success bool   `json:"success"`
}

// effectRequest is the body of POST /1/light/{id}/effect.
type effectRequest struct {
	Effect string   `json:"effect" validate:"required,oneof=steady blink pulse rainbow"`
	Color  string   `json:"color"`
	Speed  string   `json:"speed" validate:"omitempty,oneof=slow medium fast"`
	Dim    *float64 `json:"dim" validate:"omitempty,gte=0,lte=1"`
}

// targets resolves the light selection for the request: a specific index for
// /light/{id}/... routes, every light otherwise. ok is false when the id was
// unparseable and an error response has been written.
func (s *api) targets(rw http.ResponseWriter, r *http.Request) (ids []int, label string, ok bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return nil, "all", true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		httpapi.Write(rw, http.StatusNotFound, httpapi.Response{
			Message: "Invalid light id: " + raw,
		})
		return nil, "", false
	}
	return []int{id}, raw, true
}

// writeError maps manager errors onto API responses.
func (s *api) writeError(rw http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, light.ErrNoLightsFound) || errors.Is(err, light.ErrInvalidLightID) {
		status = http.StatusNotFound
	}
	httpapi.Write(rw, status, httpapi.Response{Message: err.Error()})
}

// requestColor parses the color and dim query parameters, falling back to
// the given default color name.
func (s *api) requestColor(r *http.Request, fallback string) (color.RGB, error) {
	value := r.URL.Query().Get("color")
	if value == "" {
		value = fallback
	}
	c, err := color.Parse(value)
	if err != nil {
		return color.RGB{}, err
	}

	dim := s.cfg.Defaults.Dim
	if raw := r.URL.Query().Get("dim"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 || d > 1 {
			return color.RGB{}, errors.New("dim must be a number between 0 and 1")
		}
		dim = d
	}
	return c.Scale(dim), nil
}

func requestSpeed(r *http.Request) (light.Speed, error) {
	return light.ParseSpeed(r.URL.Query().Get("speed"))
}

func (s *api) setState(ids []int, state string) {
	infos := s.manager.Lights()
	selected := make(map[int]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	s.pruneState(infos)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, info := range infos {
		if len(ids) == 0 || selected[info.Index] {
			s.state[info.Path] = state
		}
	}
}

// pruneState drops state entries for lights that are no longer attached, so
// a re-plugged light starts over as "off".
func (s *api) pruneState(infos []light.Info) {
	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Path] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for path := range s.state {
		if !present[path] {
			delete(s.state, path)
		}
	}
}

func (s *api) listLights(rw http.ResponseWriter, r *http.Request) {
	_ = s.manager.Refresh()
	infos := s.manager.Lights()
	s.pruneState(infos)
	s.mu.Lock()
	out := make([]lightStatus, len(infos))
	for i, info := range infos {
		state := s.state[info.Path]
		if state == "" {
			state = "off"
		}
		out[i] = lightStatus{Info: info, State: state}
	}
	s.mu.Unlock()
	httpapi.Write(rw, http.StatusOK, out)
}

func (s *api) getLight(rw http.ResponseWriter, r *http.Request) {
	ids, _, ok := s.targets(rw, r)
	if !ok {
		return
	}
	_ = s.manager.Refresh()
	infos := s.manager.Lights()
	s.pruneState(infos)
	for _, info := range infos {
		if info.Index == ids[0] {
			s.mu.Lock()
			state := s.state[info.Path]
			s.mu.Unlock()
			if state == "" {
				state = "off"
			}
			httpapi.Write(rw, http.StatusOK, lightStatus{Info: info, State: state})
			return
		}
	}
	httpapi.Write(rw, http.StatusNotFound, httpapi.Response{
		Message: "No light with id " + strconv.Itoa(ids[0]),
	})
}

func (s *api) supported(rw http.ResponseWriter, r *http.Request) {
	httpapi.Write(rw, http.StatusOK, light.Supported())
}

func (s *api) handleOn(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}
	c, err := s.requestColor(r, s.cfg.Defaults.Color)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	if err := s.manager.On(c, ids...); err != nil {
		s.writeError(rw, err)
		return
	}
	s.setState(ids, "on:"+c.Hex())
	httpapi.Write(rw, http.StatusOK, actionResponse{
		LightID: label, Action: "on", Color: c.Hex(), Success: true,
	})
}

func (s *api) handleOff(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}
	if err := s.manager.Off(ids...); err != nil {
		s.writeError(rw, err)
		return
	}
	s.setState(ids, "off")
	httpapi.Write(rw, http.StatusOK, actionResponse{
		LightID: label, Action: "off", Success: true,
	})
}

// startEffect launches the effect in the background, bounded by the server
// context. The manager stops a prior effect on each selected light.
func (s *api) startEffect(rw http.ResponseWriter, player light.EffectPlayer, ids []int, label string, c color.RGB, speed light.Speed) {
	// Selection errors surface before the effect starts.
	if _, err := s.manager.Selected(ids...); err != nil {
		s.writeError(rw, err)
		return
	}

	go func() {
		if err := s.manager.ApplyEffect(s.ctx, player, ids...); err != nil {
			s.log.Warn("effect failed",
				slog.String("effect", player.Name()),
				slog.Any("error", err))
		}
	}()

	s.setState(ids, player.Name()+":"+c.Hex())
	httpapi.Write(rw, http.StatusOK, actionResponse{
		LightID: label, Action: player.Name(), Color: c.Hex(), Speed: speed.String(), Success: true,
	})
}

func (s *api) handleBlink(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}
	c, err := s.requestColor(r, "red")
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	speed, err := requestSpeed(r)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	s.startEffect(rw, effect.NewBlink(c, speed), ids, label, c, speed)
}

func (s *api) handlePulse(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}
	c, err := s.requestColor(r, "red")
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	speed, err := requestSpeed(r)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	s.startEffect(rw, effect.NewGradient(c, speed), ids, label, c, speed)
}

func (s *api) handleRainbow(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}
	speed, err := requestSpeed(r)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	s.startEffect(rw, effect.NewSpectrum(speed), ids, label, color.White, speed)
}

func (s *api) postEffect(rw http.ResponseWriter, r *http.Request) {
	ids, label, ok := s.targets(rw, r)
	if !ok {
		return
	}

	var req effectRequest
	if !httpapi.Read(rw, r, &req) {
		return
	}

	value := req.Color
	if value == "" {
		value = s.cfg.Defaults.Color
	}
	c, err := color.Parse(value)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	dim := s.cfg.Defaults.Dim
	if req.Dim != nil {
		dim = *req.Dim
	}
	c = c.Scale(dim)

	speed, err := light.ParseSpeed(req.Speed)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}

	if req.Effect == "steady" {
		if err := s.manager.On(c, ids...); err != nil {
			s.writeError(rw, err)
			return
		}
		s.setState(ids, "on:"+c.Hex())
		httpapi.Write(rw, http.StatusOK, actionResponse{
			LightID: label, Action: "on", Color: c.Hex(), Success: true,
		})
		return
	}

	player, err := effect.ForName(req.Effect, c, speed)
	if err != nil {
		httpapi.Write(rw, http.StatusBadRequest, httpapi.Response{Message: err.Error()})
		return
	}
	s.startEffect(rw, player, ids, label, c, speed)
}
