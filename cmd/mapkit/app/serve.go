package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/mapstation/mapkit"
	"github.com/mapstation/mapkit/internal/bridge"
	"github.com/mapstation/mapkit/pkg/pins"
)

// shutdownTimeout bounds how long the server drains on exit.
const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command. It hosts the shim page,
// waits for the widget script to load, then builds the facade and drops
// the configured pins on the map.
func (a *App) NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map page and drive the widget",
		Long: `Serve hosts the bridge page on the configured address, waits for the
browser to load the widget script, then centers the map, drops any
configured pins, and logs click and zoom events until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr := mustGetString(cmd, "addr"); addr != "" {
				a.config.Addr = addr
			}
			if pinsFile := mustGetString(cmd, "pins"); pinsFile != "" {
				a.config.PinsFile = pinsFile
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("pins", "", "pin set YAML file (overrides config)")

	return cmd
}

func (a *App) runServe(ctx context.Context) error {
	addr := a.config.Addr
	scriptURL, err := a.widgetScriptURL()
	if err != nil {
		return err
	}

	loader := mapkit.NewLoader()
	b := bridge.New(loader,
		bridge.WithScriptURL(scriptURL),
		bridge.WithLogger(a.logger),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	b.Register(e)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(addr)
	}()

	a.logger.Info().
		Str("addr", addr).
		Str("script_url", scriptURL).
		Msg("Serving map page, waiting for widget to load")

	ctor, err := loader.Wait(ctx)
	if err != nil {
		_ = shutdown(e)
		select {
		case startErr := <-serverErr:
			if startErr != nil {
				return fmt.Errorf("starting server: %w", startErr)
			}
		default:
		}
		return fmt.Errorf("waiting for widget: %w", err)
	}

	m, err := ctor(a.facadeOptions()...)
	if err != nil {
		_ = shutdown(e)
		return fmt.Errorf("building facade: %w", err)
	}

	m.OnClick(func(payload any) {
		a.logger.Info().Interface("payload", payload).Msg("Map clicked")
	}).OnZoomChanged(func(payload any) {
		a.logger.Info().Interface("payload", payload).Msg("Zoom changed")
	})

	if a.config.PinsFile != "" {
		if err := a.dropPins(m); err != nil {
			_ = shutdown(e)
			return err
		}
	}

	a.logger.Info().Int("zoom", m.Zoom()).Msg("Map ready")

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down")
		return shutdown(e)
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	}
}

// widgetScriptURL builds the script URL from config, appending the API
// key as a query parameter when one is set.
func (a *App) widgetScriptURL() (string, error) {
	raw := a.config.ScriptURL
	if raw == "" {
		raw = bridge.DefaultScriptURL
	}
	if a.config.APIKey == "" {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing script URL %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("key", a.config.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// facadeOptions translates config into facade options.
func (a *App) facadeOptions() []mapkit.Option {
	opts := []mapkit.Option{
		mapkit.WithZoom(a.config.Zoom),
	}
	if a.config.CenterLat != 0 || a.config.CenterLng != 0 {
		opts = append(opts, mapkit.WithCenter(a.config.CenterLat, a.config.CenterLng))
	}
	if a.config.IconPath != "" {
		opts = append(opts, mapkit.WithIcon(a.config.IconPath))
	}
	return opts
}

// dropPins loads the configured pin set and places its markers.
func (a *App) dropPins(m *mapkit.Map) error {
	set, err := pins.Load(a.config.PinsFile)
	if err != nil {
		return fmt.Errorf("loading pins from %s: %w", a.config.PinsFile, err)
	}

	m.AddMarkers(set.Entries(), func(data any) {
		pin, ok := data.(pins.Pin)
		if !ok {
			a.logger.Info().Interface("data", data).Msg("Marker clicked")
			return
		}
		a.logger.Info().
			Str("pin", pin.Name).
			Float64("lat", pin.Lat).
			Float64("lng", pin.Lng).
			Msg("Marker clicked")
	})

	a.logger.Info().
		Str("set", set.Name).
		Int("pins", len(set.Pins)).
		Msg("Dropped pins")
	return nil
}

func shutdown(e *echo.Echo) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(ctx)
}
