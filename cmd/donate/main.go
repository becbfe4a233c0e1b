package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"   description:"Path to configuration file" default:"config.yaml"`
	BaseURL    string `short:"u" long:"api-url" env:"SHAREBITE_API" description:"Marketplace API base URL (overrides config)"`

	Category        string `long:"category"   description:"Food category"                    required:"true"`
	FoodName        string `long:"food"       description:"Food item name"                   required:"true"`
	GeocodeLocation string `long:"area"       description:"Area used for geocoding"          required:"true"`
	DisplayAddress  string `long:"address"    description:"Pickup address shown to receivers" required:"true"`
	Phone           string `long:"phone"      description:"Contact phone"                    required:"true"`
	Count           int    `long:"count"      description:"Number of people it serves"       required:"true"`
	Note            string `long:"note"       description:"Optional notes"`
	DonorEmail      string `long:"email"      env:"DONOR_EMAIL" description:"Donor email"  required:"true"`
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

	cfg, err := config.Load(opts.ConfigFile, !parser.FindOptionByLongName("config").IsSet())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.BaseURL != "" {
		cfg.API.BaseURL = opts.BaseURL
	}

	d := donation.NewDonation{
		Category:        opts.Category,
		FoodName:        opts.FoodName,
		GeocodeLocation: opts.GeocodeLocation,
		DisplayAddress:  opts.DisplayAddress,
		Phone:           opts.Phone,
		Count:           opts.Count,
		Note:            opts.Note,
		DonorEmail:      opts.DonorEmail,
	}
	if err := d.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.API, nil)
	if err := client.CreateDonation(ctx, d); err != nil {
		var rejected *api.RejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", api.Detail(err, "Failed to submit donation."))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		log.Debug().Err(err).Msg("Donation not submitted")
		os.Exit(1)
	}

	log.Info().
		Str("food", d.FoodName).
		Int("count", d.Count).
		Msg("Donation submitted")
	fmt.Println("Thank you! Your donation is now listed.")
}
