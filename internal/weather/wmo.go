package weather

import "time"

// CodeInfo describes a WMO weather interpretation code.
type CodeInfo struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// https://open-meteo.com/en/docs
var wmoCodes = map[int]CodeInfo{
	0:  {"Clear", "맑음", "01"},
	1:  {"Mainly Clear", "대체로 맑음", "01"},
	2:  {"Partly Cloudy", "부분적으로 흐림", "02"},
	3:  {"Overcast", "흐림", "03"},
	45: {"Fog", "안개", "50"},
	48: {"Depositing Rime Fog", "짙은 안개", "50"},
	51: {"Light Drizzle", "가벼운 이슬비", "09"},
	53: {"Moderate Drizzle", "이슬비", "09"},
	55: {"Dense Drizzle", "짙은 이슬비", "09"},
	56: {"Light Freezing Drizzle", "가벼운 진눈깨비", "13"},
	57: {"Dense Freezing Drizzle", "진눈깨비", "13"},
	61: {"Slight Rain", "약한 비", "10"},
	63: {"Moderate Rain", "비", "10"},
	65: {"Heavy Rain", "강한 비", "10"},
	66: {"Light Freezing Rain", "가벼운 얼어붙는 비", "13"},
	67: {"Heavy Freezing Rain", "강한 얼어붙는 비", "13"},
	71: {"Slight Snow", "약한 눈", "13"},
	73: {"Moderate Snow", "눈", "13"},
	75: {"Heavy Snow", "강한 눈", "13"},
	77: {"Snow Grains", "싸락눈", "13"},
	80: {"Slight Rain Showers", "약한 소나기", "09"},
	81: {"Moderate Rain Showers", "소나기", "09"},
	82: {"Violent Rain Showers", "강한 소나기", "09"},
	85: {"Slight Snow Showers", "약한 눈 소나기", "13"},
	86: {"Heavy Snow Showers", "강한 눈 소나기", "13"},
	95: {"Thunderstorm", "뇌우", "11"},
	96: {"Thunderstorm with Slight Hail", "약한 우박 동반 뇌우", "11"},
	99: {"Thunderstorm with Heavy Hail", "강한 우박 동반 뇌우", "11"},
}

var unknownCode = CodeInfo{"Unknown", "알 수 없음", "01"}

// conditionInfo backs snapshots whose providers reported no WMO code.
var conditionInfo = map[Condition]CodeInfo{
	ConditionClear:  wmoCodes[0],
	ConditionCloudy: wmoCodes[3],
	ConditionRain:   wmoCodes[63],
	ConditionSnow:   wmoCodes[73],
	ConditionStorm:  wmoCodes[95],
	ConditionMist:   wmoCodes[45],
}

// LookupCode returns the description of code with the icon suffixed by
// "d" or "n".
func LookupCode(code int, day bool) CodeInfo {
	info, ok := wmoCodes[code]
	if !ok {
		info = unknownCode
	}
	return withDaySuffix(info, day)
}

// LookupCondition is LookupCode for a normalized condition.
func LookupCondition(c Condition, day bool) CodeInfo {
	info, ok := conditionInfo[c]
	if !ok {
		info = unknownCode
	}
	return withDaySuffix(info, day)
}

func withDaySuffix(info CodeInfo, day bool) CodeInfo {
	if day {
		info.Icon += "d"
	} else {
		info.Icon += "n"
	}
	return info
}

// ConditionForCode maps a WMO code onto the normalized conditions.
func ConditionForCode(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}

// IsDaytime compares wall-clock minutes of t against sunrise and sunset,
// ignoring their dates. Unknown sunrise/sunset counts as day.
func IsDaytime(sunrise, sunset, t time.Time) bool {
	if sunrise.IsZero() || sunset.IsZero() {
		return true
	}
	minutes := func(x time.Time) int { return x.Hour()*60 + x.Minute() }
	m := minutes(t.In(sunrise.Location()))
	return m >= minutes(sunrise) && m < minutes(sunset)
}
