package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/xr"
)

const tracerName = "github.com/gogpu/arplace/session"

// errNoSession is reported when the device completes a session request
// without a session.
var errNoSession = errors.New("session: device returned no session")

// Manager owns one AR session from request to teardown.
//
// Manager is NOT safe for concurrent use. All methods must be called from the
// frame-dispatch goroutine; device futures may resolve on any goroutine.
type Manager struct {
	device xr.Device
	opts   options
	id     string
	state  State

	sessionReq *xr.Future[xr.Session]
	viewerReq  *xr.Future[xr.ReferenceSpace]
	localReq   *xr.Future[xr.ReferenceSpace]
	sourceReq  *xr.Future[xr.HitTestSource]

	session xr.Session
	viewer  xr.ReferenceSpace
	local   xr.ReferenceSpace
	source  xr.HitTestSource

	endHooks []func()
	span     trace.Span
}

// NewManager creates an Inactive manager for device.
func NewManager(device xr.Device, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.idFactory == nil {
		o.idFactory = uuid.NewString
	}
	return &Manager{
		device: device,
		opts:   o,
		id:     o.idFactory(),
	}
}

// Start requests the session with surface hit-testing as a required
// feature.
//
// If the device does not support the session mode, Start returns an error
// wrapping arplace.ErrCapabilityUnavailable; the manager stays Inactive and
// nothing else happens. Otherwise the manager is Negotiating when Start
// returns and the outcome is observed by later calls to Advance.
func (m *Manager) Start(ctx context.Context) error {
	if m.state != Inactive {
		return arplace.ErrSessionStarted
	}
	log := arplace.Logger().With("session", m.id)

	if m.device == nil || !m.device.IsSessionSupported(m.opts.mode) {
		log.Info("AR session not supported", "mode", m.opts.mode)
		return fmt.Errorf("session: %s: %w", m.opts.mode, arplace.ErrCapabilityUnavailable)
	}

	_, m.span = otel.Tracer(tracerName).Start(ctx, "session.negotiate",
		trace.WithAttributes(
			attribute.String("session.id", m.id),
			attribute.String("session.mode", string(m.opts.mode)),
		))

	init := xr.SessionInit{RequiredFeatures: []xr.Feature{xr.FeatureHitTest}}
	if m.opts.local {
		init.OptionalFeatures = append(init.OptionalFeatures, xr.FeatureLocal)
	}

	m.state = Negotiating
	m.sessionReq = m.device.RequestSession(m.opts.mode, init)
	if m.sessionReq == nil {
		m.sessionReq = xr.Failed[xr.Session](errNoSession)
	}
	log.Debug("AR session requested", "mode", m.opts.mode)
	return nil
}

// Advance polls the outstanding negotiation steps. It is called once at the
// top of every frame and never blocks. A step that never completes leaves the
// manager waiting indefinitely, which is not an error.
func (m *Manager) Advance() {
	switch m.state {
	case Negotiating:
		m.advanceSession()
	case Active:
		m.advanceSpaces()
	}
}

func (m *Manager) advanceSession() {
	if !m.sessionReq.Ready() {
		return
	}
	s, err := m.sessionReq.Result()
	m.sessionReq = nil
	if err == nil && s == nil {
		err = errNoSession
	}
	if err != nil {
		arplace.Logger().Warn("AR session request rejected", "session", m.id, "err", err)
		m.teardown(err, false)
		return
	}

	m.session = s
	m.state = Active
	s.OnEnd(m.handleDeviceEnd)
	m.viewerReq = s.RequestReferenceSpace(xr.SpaceViewer)
	if m.opts.local {
		m.localReq = s.RequestReferenceSpace(xr.SpaceLocal)
	}
	if m.span != nil {
		m.span.AddEvent("session.active")
	}

	arplace.Logger().Info("AR session started", "session", m.id)
	m.opts.signals.Emit(arplace.SignalSessionStarted, nil)

	// The signal receiver may have ended the session.
	if m.state == Active {
		m.advanceSpaces()
	}
}

func (m *Manager) advanceSpaces() {
	log := arplace.Logger()

	if m.viewerReq != nil && m.viewerReq.Ready() {
		space, err := m.viewerReq.Result()
		m.viewerReq = nil
		switch {
		case err != nil || space == nil:
			log.Warn("viewer reference space unavailable, tracking disabled", "session", m.id, "err", err)
			m.endSpan(err)
		default:
			m.viewer = space
			m.sourceReq = m.session.RequestHitTestSource(xr.HitTestOptions{Space: space})
		}
	}

	if m.localReq != nil && m.localReq.Ready() {
		space, err := m.localReq.Result()
		m.localReq = nil
		if err != nil || space == nil {
			log.Debug("local reference space unavailable, using viewer space", "session", m.id, "err", err)
		} else {
			m.local = space
		}
	}

	if m.sourceReq != nil && m.sourceReq.Ready() {
		source, err := m.sourceReq.Result()
		m.sourceReq = nil
		if err != nil || source == nil {
			log.Warn("hit-test source unavailable, tracking disabled", "session", m.id, "err", err)
			m.endSpan(err)
			return
		}
		m.source = source
		log.Debug("hit-test source ready", "session", m.id)
		m.endSpan(nil)
	}
}

// End ends the session. It is idempotent: ending an Inactive or Ended
// manager does nothing. Ending while Negotiating discards the pending
// request; a session the device grants afterwards is ended immediately and
// never becomes Active. Ending while Active releases the hit-test source,
// ends the device session, runs the end hooks and emits sessionEnded.
//
// End is safe to call from a signal receiver or a confirm handler.
func (m *Manager) End() {
	switch m.state {
	case Negotiating:
		req := m.sessionReq
		m.sessionReq = nil
		id := m.id
		req.Discard(func(s xr.Session) {
			arplace.Logger().Debug("discarding session granted after end",
				"session", id, "err", arplace.ErrSessionEnded)
			_ = s.End()
		})
		m.teardown(nil, false)
	case Active:
		m.teardown(nil, true)
	}
}

// handleDeviceEnd runs when the runtime terminates the session itself.
func (m *Manager) handleDeviceEnd() {
	if m.state != Active {
		return
	}
	arplace.Logger().Info("AR session terminated by device", "session", m.id)
	m.teardown(nil, false)
}

func (m *Manager) teardown(cause error, endDevice bool) {
	m.state = Ended

	if m.sourceReq != nil {
		m.sourceReq.Discard(func(s xr.HitTestSource) { s.Cancel() })
		m.sourceReq = nil
	}
	if m.viewerReq != nil {
		m.viewerReq.Discard(nil)
		m.viewerReq = nil
	}
	if m.localReq != nil {
		m.localReq.Discard(nil)
		m.localReq = nil
	}
	if m.source != nil {
		m.source.Cancel()
		m.source = nil
	}
	if endDevice && m.session != nil {
		if err := m.session.End(); err != nil {
			arplace.Logger().Warn("device session end failed", "session", m.id, "err", err)
		}
	}
	m.session = nil
	m.endSpan(cause)

	hooks := m.endHooks
	m.endHooks = nil
	for _, h := range hooks {
		h()
	}

	arplace.Logger().Info("AR session ended", "session", m.id)
	m.opts.signals.Emit(arplace.SignalSessionEnded, cause)
}

func (m *Manager) endSpan(err error) {
	if m.span == nil {
		return
	}
	if err != nil {
		m.span.RecordError(err)
		m.span.SetStatus(codes.Error, err.Error())
	}
	m.span.End()
	m.span = nil
}

// OnEnd registers fn to run synchronously when the session ends, before
// sessionEnded is emitted. If the manager already ended, fn runs now.
func (m *Manager) OnEnd(fn func()) {
	if m.state == Ended {
		fn()
		return
	}
	m.endHooks = append(m.endHooks, fn)
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// ID returns the session identifier used in logs and traces.
func (m *Manager) ID() string {
	return m.id
}

// HitTestSource returns the live hit-test source, or nil while it is still
// being negotiated, when it could not be created, or after End.
func (m *Manager) HitTestSource() xr.HitTestSource {
	if m.state != Active {
		return nil
	}
	return m.source
}

// ReferenceSpace returns the space poses are reported in: the local space
// when it was granted, otherwise the viewer space. Nil until known.
func (m *Manager) ReferenceSpace() xr.ReferenceSpace {
	if m.local != nil {
		return m.local
	}
	return m.viewer
}
