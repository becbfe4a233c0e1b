package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/claim"
	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/console"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/locate"
	"github.com/woozymasta/sharebite/internal/logger"
	"github.com/woozymasta/sharebite/internal/render"
	"github.com/woozymasta/sharebite/internal/server"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"   env:"CONFIG_FILE"   description:"Path to configuration file" default:"config.yaml"`
	BaseURL    string   `short:"u" long:"api-url"  env:"SHAREBITE_API" description:"Marketplace API base URL (overrides config)"`
	Lat        *float64 `long:"lat"                env:"RECEIVER_LAT"  description:"Receiver latitude"`
	Lon        *float64 `long:"lon"                env:"RECEIVER_LON"  description:"Receiver longitude"`
	GeoIPDB    string   `long:"geoip-db"           env:"GEOIP_DB_PATH" description:"MaxMind City database used when no coordinates are given"`
	GeoIPAddr  string   `long:"ip"                 env:"RECEIVER_IP"   description:"IP address to locate with the GeoIP database"`
	MapFile    string   `short:"m" long:"map-out"  env:"MAP_FILE"      description:"GeoJSON map output (overrides config)"`
	Listen     string   `short:"l" long:"listen"   env:"LISTEN_ADDRESS" description:"Serve a browser preview on this address, e.g. 127.0.0.1:8080"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	explicitConfig := parser.FindOptionByLongName("config").IsSet()
	cfg, err := config.Load(opts.ConfigFile, !explicitConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}
	if opts.MapFile != "" {
		cfg.Output.MapFile = opts.MapFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locator, closeLocator := newLocator(opts)
	defer closeLocator()

	client := api.NewClient(cfg.API, nil)

	textList := render.NewTextList()
	htmlList := render.NewHTMLList("Nearby donations")
	mapView := render.NewGeoJSONMap(cfg.Map)
	notifier := console.Notifier(os.Stdout)

	session := view.NewSession(client, view.Lists(textList, htmlList), mapView, notifier, cfg.Map.Zoom)
	workflow := claim.New(client, session, console.Modal(os.Stdout), notifier)

	log.Info().
		Str("api", cfg.API.BaseURL).
		Msg("Fetching nearby donations")

	saveMap := func() error {
		if err := mapView.Save(cfg.Output.MapFile); err != nil {
			return err
		}
		page, err := htmlList.Bytes()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Output.ListFile, page, 0644); err != nil {
			return err
		}
		log.Info().
			Str("map", cfg.Output.MapFile).
			Str("list", cfg.Output.ListFile).
			Msg("Views written")
		return nil
	}

	if err := session.Start(ctx, locator); err != nil {
		// the list already shows why; keep the session usable for inspection
		log.Warn().Err(err).Msg("Session started without donations")
	} else if err := saveMap(); err != nil {
		log.Error().Err(err).Msg("Failed to write map")
	}

	if opts.Listen != "" {
		srv := &http.Server{
			Addr:              opts.Listen,
			Handler:           server.RequestLogger(server.NewServerContext(session, workflow, htmlList, mapView).Routes()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("addr", opts.Listen).Msg("Preview server started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Preview server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	term := console.New(os.Stdin, os.Stdout, session, workflow, textList, saveMap)
	term.SetCategories(cfg.Categories)
	if err := term.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Console input failed")
	}

	fmt.Fprintln(os.Stdout, "Bye.")
}

// newLocator prefers explicit coordinates, then GeoIP. Without either the
// session reports the position as unavailable.
func newLocator(opts Options) (locate.Locator, func()) {
	noop := func() {}

	if opts.Lat != nil && opts.Lon != nil {
		return locate.Static{Position: &geo.Coordinate{Latitude: *opts.Lat, Longitude: *opts.Lon}}, noop
	}

	if opts.GeoIPDB != "" {
		g, err := locate.NewGeoIP(opts.GeoIPDB, opts.GeoIPAddr)
		if err != nil {
			return locate.Func(func(context.Context) (geo.Coordinate, error) {
				return geo.Coordinate{}, &locate.UnavailableError{Reason: err.Error()}
			}), noop
		}
		return g, func() {
			if err := g.Close(); err != nil {
				log.Debug().Err(err).Msg("Failed to close GeoIP database")
			}
		}
	}

	return locate.Static{}, noop
}
