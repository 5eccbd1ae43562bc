package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-browser/internal/store"
	"github.com/i474232898/weather-browser/internal/weather"
	"github.com/i474232898/weather-browser/internal/weather/providers"
)

var (
	weatherNameFlag     string
	weatherTimezoneFlag string
	weatherHourlyFlag   bool
)

var weatherCmd = &cobra.Command{
	Use:   "weather <lat> <lon>",
	Short: "Fetch current conditions and the hourly strip from Open-Meteo",
	Args:  cobra.ExactArgs(2),
	RunE:  runWeather,
}

func init() {
	weatherCmd.Flags().StringVar(&weatherNameFlag, "name", "", "Label for the location")
	weatherCmd.Flags().StringVar(&weatherTimezoneFlag, "tz", "Asia/Seoul", "Forecast timezone")
	weatherCmd.Flags().BoolVar(&weatherHourlyFlag, "hourly", true, "Also print the hourly forecast")
	rootCmd.AddCommand(weatherCmd)
}

func runWeather(cmd *cobra.Command, args []string) error {
	lat, lon, err := parseCoords(args[0], args[1])
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	svc := weather.NewService(store.NewMemoryStore(1, 0),
		[]weather.Provider{providers.NewOpenMeteoProvider(httpClient(), weatherTimezoneFlag)}, 0)
	loc := weather.Location{Name: weatherNameFlag, Latitude: lat, Longitude: lon}

	snap, err := svc.Current(ctx, loc)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", heading(loc.Label()), faint(snap.Timestamp.Local().Format(time.RFC1123)))
	fmt.Printf("  %.1f°C  %s\n", snap.Temperature, snap.Description)
	fmt.Printf("  체감 %.1f°C  최저 %.1f°C  최고 %.1f°C\n", snap.FeelsLike, snap.TempMin, snap.TempMax)
	fmt.Printf("  습도 %.0f%%  바람 %.1fm/s  강수 %.1fmm\n", snap.Humidity, snap.WindSpeed, snap.PrecipMM)

	if !weatherHourlyFlag {
		return nil
	}
	hourly, err := svc.Hourly(ctx, loc)
	if err != nil {
		fmt.Println(warn("시간별 예보를 불러오지 못했습니다: " + err.Error()))
		return nil
	}
	var cols []string
	for _, slot := range hourly {
		cols = append(cols, fmt.Sprintf("%s %.0f°C %s", slot.Time, slot.Temperature, faint(fmt.Sprintf("%.0f%%", slot.PoP*100))))
	}
	fmt.Println("  " + strings.Join(cols, "  "))
	return nil
}
