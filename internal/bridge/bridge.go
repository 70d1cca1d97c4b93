// Package bridge drives the external map widget running in a browser.
// It serves an embedded shim page that loads the widget script and keeps
// one websocket open to it; facade operations become commands shipped
// over that socket, and native widget events come back the same way.
// The widget owns all rendering; the bridge only sequences calls.
package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mapstation/mapkit"
	"github.com/mapstation/mapkit/internal/bridge/page"
	"github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/logging"
	"github.com/mapstation/mapkit/pkg/maps"
)

// DefaultScriptURL is the widget script loaded when no URL is configured.
const DefaultScriptURL = "https://maps.googleapis.com/maps/api/js"

// requestTimeout bounds how long a get request waits for the page.
const requestTimeout = 2 * time.Second

// Option is a function that configures a Bridge
type Option func(*Bridge)

// WithScriptURL configures the external widget script URL.
func WithScriptURL(url string) Option {
	return func(b *Bridge) {
		b.scriptURL = url
	}
}

// WithLogger configures the bridge logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Bridge relays facade commands to the shim page and settles the given
// Loader once the page reports the widget script loaded (or failed).
// One page connection is live at a time.
type Bridge struct {
	loader    *mapkit.Loader
	logger    *zerolog.Logger
	scriptURL string
	upgrader  websocket.Upgrader

	connMu  sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan Message
	reqSeq    atomic.Int64
	markerSeq atomic.Int64

	listenersMu  sync.Mutex
	listeners    map[maps.Event][]maps.Handler
	markerClicks map[string]maps.Handler
}

// New creates a bridge that will settle the given loader.
func New(loader *mapkit.Loader, opts ...Option) *Bridge {
	b := &Bridge{
		loader:    loader,
		logger:    logging.Default(),
		scriptURL: DefaultScriptURL,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		pending:      make(map[string]chan Message),
		listeners:    make(map[maps.Event][]maps.Handler),
		markerClicks: make(map[string]maps.Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register wires the shim page and socket routes into the echo instance.
func (b *Bridge) Register(e *echo.Echo) {
	e.GET("/", b.HandlePage)
	e.GET("/ws", b.HandleSocket)
}

// Driver returns the maps.Driver backed by this bridge.
func (b *Bridge) Driver() maps.Driver {
	return &driver{b: b}
}

// HandlePage serves the shim page with the configured script URL.
func (b *Bridge) HandlePage(c echo.Context) error {
	src, err := page.IndexHTML()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "shim page missing")
	}

	tmpl, err := template.New("index").Parse(string(src))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "shim page invalid")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{"ScriptURL": b.scriptURL}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "shim page render failed")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleSocket upgrades the connection and runs the page message loop.
func (b *Bridge) HandleSocket(c echo.Context) error {
	ws, err := b.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.NewBridgeError("upgrade", "", err)
	}
	defer ws.Close()

	b.connMu.Lock()
	if b.conn != nil {
		b.connMu.Unlock()
		b.logger.Warn().Msg("Rejecting second page connection")
		return ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "already connected"),
			time.Now().Add(time.Second))
	}
	b.conn = ws
	b.connMu.Unlock()

	defer func() {
		b.connMu.Lock()
		b.conn = nil
		b.connMu.Unlock()
	}()

	b.logger.Info().Str("remote", c.Request().RemoteAddr).Msg("Page connected")

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Warn().Err(err).Msg("Page connection error")
			}
			break
		}
		b.handleMessage(msg)
	}

	b.logger.Info().Msg("Page disconnected")
	return nil
}

// handleMessage routes one page message.
func (b *Bridge) handleMessage(msg Message) {
	switch msg.Type {
	case MsgTypeReady:
		b.logger.Info().Str("script", b.scriptURL).Msg("Widget script loaded")
		b.loader.Resolve(b.Driver())

	case MsgTypeLoadError:
		var p LoadErrorPayload
		_ = json.Unmarshal(msg.Payload, &p)
		b.logger.Error().Str("script", b.scriptURL).Str("reason", p.Message).Msg("Widget script load failed")
		b.loader.Fail(errors.NewLoadError(b.scriptURL, p.Message, nil))

	case MsgTypeEvent:
		var p EventPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			b.logger.Warn().Err(err).Msg("Malformed event payload")
			return
		}
		b.dispatch(p)

	case MsgTypeResult:
		b.pendingMu.Lock()
		ch, ok := b.pending[msg.ID]
		if ok {
			delete(b.pending, msg.ID)
		}
		b.pendingMu.Unlock()
		if ok {
			ch <- msg
		}

	case MsgTypePing:
		if err := b.send(newMessage(MsgTypePong, msg.ID, nil)); err != nil {
			b.logger.Warn().Err(err).Msg("Pong failed")
		}

	default:
		b.logger.Warn().Str("type", msg.Type).Msg("Unknown page message")
	}
}

// dispatch delivers a native widget event. Marker clicks go to the
// marker's own callback; map-level events go to the listener registry.
func (b *Bridge) dispatch(p EventPayload) {
	var data any
	if len(p.Data) > 0 {
		_ = json.Unmarshal(p.Data, &data)
	}

	if p.MarkerID != "" {
		b.listenersMu.Lock()
		fn := b.markerClicks[p.MarkerID]
		b.listenersMu.Unlock()
		if fn != nil {
			fn(data)
		}
		return
	}

	b.listenersMu.Lock()
	fns := append([]maps.Handler(nil), b.listeners[maps.Event(p.Event)]...)
	b.listenersMu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

// send ships one command to the connected page.
func (b *Bridge) send(msg Message) error {
	b.connMu.Lock()
	ws := b.conn
	b.connMu.Unlock()
	if ws == nil {
		return errors.ErrNotConnected
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := ws.WriteJSON(msg); err != nil {
		return errors.NewBridgeError("write", "", err)
	}
	return nil
}

// request sends a command and waits for the page's result message.
func (b *Bridge) request(msgType string, payload any) (Message, error) {
	id := fmt.Sprintf("r%d", b.reqSeq.Add(1))
	ch := make(chan Message, 1)

	b.pendingMu.Lock()
	b.pending[id] = ch
	b.pendingMu.Unlock()

	if err := b.send(newMessage(msgType, id, payload)); err != nil {
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
		return Message{}, err
	}

	select {
	case msg := <-ch:
		return msg, nil
	case <-time.After(requestTimeout):
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
		return Message{}, fmt.Errorf("awaiting %s result: %w", msgType, errors.ErrTimeout)
	}
}
