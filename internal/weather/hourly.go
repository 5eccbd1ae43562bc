package weather

import "time"

const (
	// HourlySlots and HourlyStep shape the forecast strip: 8 slots, 3h apart.
	HourlySlots = 8
	HourlyStep  = 3
)

// SelectHourly picks the forecast strip from series starting at the first
// reading at or after the top of now's hour.
func SelectHourly(series HourlySeries, now time.Time) Hourly {
	readings := series.Readings
	if len(readings) == 0 {
		return Hourly{}
	}

	loc := readings[0].Time.Location()
	start := now.In(loc).Truncate(time.Hour)
	startIdx := 0
	for i, r := range readings {
		if !r.Time.Before(start) {
			startIdx = i
			break
		}
		if i == len(readings)-1 {
			startIdx = 0
		}
	}

	out := make(Hourly, 0, HourlySlots)
	for i := 0; i < HourlySlots; i++ {
		idx := startIdx + i*HourlyStep
		if idx >= len(readings) {
			break
		}
		r := readings[idx]
		info := LookupCode(r.WeatherCode, IsDaytime(series.Sunrise, series.Sunset, r.Time))
		out = append(out, HourlySlot{
			Time:        r.Time.Format("15:04"),
			Timestamp:   r.Time,
			Temperature: r.TemperatureC,
			Icon:        info.Icon,
			Summary:     info.Summary,
			PoP:         r.PrecipProb / 100,
		})
	}
	return out
}
