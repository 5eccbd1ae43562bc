package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; conditions are selected by majority (first seen
// wins a tie). Extras reported by only some providers come from the first
// reading that has them.
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		info := LookupCondition(ConditionUnknown, true)
		return WeatherSnapshot{
			Location:    loc,
			Timestamp:   time.Now().UTC(),
			Condition:   ConditionUnknown,
			Summary:     info.Summary,
			Description: info.Description,
			Icon:        info.Icon,
		}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
		nPressure   int
		sumPrecip   float64
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time
	var primary ProviderReading
	var code *int

	for i, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS
		if r.PressureHpa > 0 {
			sumPressure += r.PressureHpa
			nPressure++
		}
		sumPrecip += r.PrecipMm

		if conditionCounts[r.Condition] == 0 {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
		if i == 0 {
			primary = r
		}
		fillExtras(&primary, r)
		if code == nil && r.WeatherCode != nil {
			code = r.WeatherCode
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))

	// Pick majority condition.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	avgTemp := sumTemp / n
	snap := WeatherSnapshot{
		Location:    loc,
		Timestamp:   newestTS,
		Temperature: avgTemp,
		FeelsLike:   valueOr(primary.FeelsLikeC, avgTemp),
		TempMin:     valueOr(primary.TempMinC, avgTemp),
		TempMax:     valueOr(primary.TempMaxC, avgTemp),
		Humidity:    sumHumidity / n,
		WindSpeed:   sumWind / n,
		PrecipMM:    sumPrecip / n,
		Condition:   bestCond,
		Sunrise:     primary.Sunrise,
		Sunset:      primary.Sunset,
		Providers:   providers,
	}
	if nPressure > 0 {
		snap.Pressure = sumPressure / float64(nPressure)
	}

	day := IsDaytime(primary.Sunrise, primary.Sunset, newestTS)
	var info CodeInfo
	if code != nil && ConditionForCode(*code) == bestCond {
		info = LookupCode(*code, day)
	} else {
		info = LookupCondition(bestCond, day)
	}
	snap.Summary, snap.Description, snap.Icon = info.Summary, info.Description, info.Icon
	return snap
}

func fillExtras(dst *ProviderReading, r ProviderReading) {
	if dst.FeelsLikeC == nil {
		dst.FeelsLikeC = r.FeelsLikeC
	}
	if dst.TempMinC == nil {
		dst.TempMinC = r.TempMinC
	}
	if dst.TempMaxC == nil {
		dst.TempMaxC = r.TempMaxC
	}
	if dst.Sunrise.IsZero() {
		dst.Sunrise, dst.Sunset = r.Sunrise, r.Sunset
	}
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
