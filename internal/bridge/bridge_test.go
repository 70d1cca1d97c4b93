package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapstation/mapkit"
	pkgerrors "github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/logging"
	"github.com/mapstation/mapkit/pkg/maps"
)

const testScriptURL = "https://maps.example.com/api/js"

// newTestBridge starts an echo server with bridge routes registered.
func newTestBridge(t *testing.T) (*mapkit.Loader, *httptest.Server) {
	t.Helper()

	loader := mapkit.NewLoader()
	b := New(loader, WithScriptURL(testScriptURL), WithLogger(&logging.Nop))

	e := echo.New()
	e.HideBanner = true
	b.Register(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return loader, srv
}

// dialPage connects the way the shim page would and returns a channel of
// incoming bridge commands.
func dialPage(t *testing.T, srv *httptest.Server) (*websocket.Conn, <-chan Message) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	commands := make(chan Message, 16)
	go func() {
		defer close(commands)
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			commands <- msg
		}
	}()
	return conn, commands
}

// awaitCommand reads bridge commands until one of the given type arrives.
func awaitCommand(t *testing.T, commands <-chan Message, msgType string) Message {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-commands:
			require.True(t, ok, "connection closed while waiting for %s", msgType)
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestBridge_ReadyResolvesLoader(t *testing.T) {
	loader, srv := newTestBridge(t)
	conn, commands := dialPage(t, srv)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeReady, "", nil)))

	ctor, err := loader.Wait(waitCtx(t))
	require.NoError(t, err)
	require.NotNil(t, ctor)

	// Constructing a facade ships map_init to the page.
	_, err = ctor(mapkit.WithZoom(4), mapkit.WithCenter(35.0, 139.0))
	require.NoError(t, err)

	msg := awaitCommand(t, commands, MsgTypeMapInit)
	var opts maps.MapOptions
	require.NoError(t, json.Unmarshal(msg.Payload, &opts))
	assert.Equal(t, 4, opts.Zoom)
	assert.Equal(t, maps.LatLng{Lat: 35.0, Lng: 139.0}, opts.Center)
}

func TestBridge_LoadErrorFailsLoader(t *testing.T) {
	loader, srv := newTestBridge(t)
	conn, _ := dialPage(t, srv)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeLoadError, "", LoadErrorPayload{
		Message:   "script failed to load",
		ScriptURL: testScriptURL,
	})))

	ctor, err := loader.Wait(waitCtx(t))
	assert.Nil(t, ctor)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrLoadFailed)
	assert.Contains(t, err.Error(), testScriptURL)
}

func TestBridge_MapEventsReachCallbacks(t *testing.T) {
	loader, srv := newTestBridge(t)
	conn, commands := dialPage(t, srv)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeReady, "", nil)))
	ctor, err := loader.Wait(waitCtx(t))
	require.NoError(t, err)

	m, err := ctor()
	require.NoError(t, err)
	awaitCommand(t, commands, MsgTypeMapInit)

	got := make(chan any, 1)
	m.OnZoomChanged(func(payload any) { got <- payload })

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeEvent, "", EventPayload{
		Event: string(maps.EventZoomChanged),
		Data:  mustJSON(map[string]int{"zoom": 9}),
	})))

	select {
	case payload := <-got:
		data, ok := payload.(map[string]any)
		require.True(t, ok, "payload type %T", payload)
		assert.EqualValues(t, 9, data["zoom"])
	case <-time.After(2 * time.Second):
		t.Fatal("zoom callback never fired")
	}
}

func TestBridge_MarkerClickDeliversPayload(t *testing.T) {
	loader, srv := newTestBridge(t)
	conn, commands := dialPage(t, srv)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeReady, "", nil)))
	ctor, err := loader.Wait(waitCtx(t))
	require.NoError(t, err)

	m, err := ctor()
	require.NoError(t, err)
	awaitCommand(t, commands, MsgTypeMapInit)

	got := make(chan any, 1)
	m.AddMarkers([]maps.Entry{
		{Position: maps.LatLng{Lat: 1, Lng: 2}, Data: "station-1"},
	}, func(payload any) { got <- payload })

	created := awaitCommand(t, commands, MsgTypeCreateMarker)
	var cm CreateMarkerPayload
	require.NoError(t, json.Unmarshal(created.Payload, &cm))
	require.NotEmpty(t, cm.MarkerID)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeEvent, "", EventPayload{
		Event:    string(maps.EventClick),
		MarkerID: cm.MarkerID,
	})))

	select {
	case payload := <-got:
		assert.Equal(t, "station-1", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("marker click callback never fired")
	}
}

func TestBridge_ZoomRoundTrip(t *testing.T) {
	loader, srv := newTestBridge(t)
	conn, commands := dialPage(t, srv)

	require.NoError(t, conn.WriteJSON(newMessage(MsgTypeReady, "", nil)))
	ctor, err := loader.Wait(waitCtx(t))
	require.NoError(t, err)

	m, err := ctor()
	require.NoError(t, err)
	awaitCommand(t, commands, MsgTypeMapInit)

	// Answer the get_zoom request the way the page would.
	go func() {
		for msg := range commands {
			if msg.Type == MsgTypeGetZoom {
				_ = conn.WriteJSON(newMessage(MsgTypeResult, msg.ID, ZoomResultPayload{Zoom: 7}))
				return
			}
		}
	}()

	assert.Equal(t, 7, m.Zoom())
}

func TestBridge_SendWithoutPage(t *testing.T) {
	loader := mapkit.NewLoader()
	b := New(loader, WithLogger(&logging.Nop))

	err := b.Driver().Init(maps.MapOptions{})
	assert.ErrorIs(t, err, pkgerrors.ErrNotConnected)
}

func TestBridge_SecondConnectionRejected(t *testing.T) {
	_, srv := newTestBridge(t)
	first, commands := dialPage(t, srv)

	// A pong confirms the first connection is registered.
	require.NoError(t, first.WriteJSON(newMessage(MsgTypePing, "p1", nil)))
	awaitCommand(t, commands, MsgTypePong)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	second, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer second.Close()

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	err = second.ReadJSON(&msg)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation) || err == io.EOF,
		"unexpected error: %v", err)
}

func TestBridge_ServesShimPage(t *testing.T) {
	_, srv := newTestBridge(t)

	resp, err := srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), testScriptURL)
	assert.Contains(t, string(body), "WebSocket")
}
