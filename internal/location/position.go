package location

import (
	"strings"
	"time"
)

// Browser-style position request settings.
const (
	PositionRequestTimeout = 10 * time.Second
	PositionMaximumAge     = 60 * time.Second
)

// Position is a fix reported by the current-position provider.
type Position struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportedAt time.Time `json:"reportedAt"`
}

// PositionErrorKind classifies a failed position request.
type PositionErrorKind string

const (
	PositionPermissionDenied PositionErrorKind = "permission_denied"
	PositionUnavailable      PositionErrorKind = "position_unavailable"
	PositionTimedOut         PositionErrorKind = "timeout"
	PositionUnknownError     PositionErrorKind = "unknown"
)

// ParsePositionErrorKind maps a wire value to a kind; unrecognised values are unknown.
func ParsePositionErrorKind(s string) PositionErrorKind {
	switch PositionErrorKind(strings.ToLower(strings.TrimSpace(s))) {
	case PositionPermissionDenied:
		return PositionPermissionDenied
	case PositionUnavailable:
		return PositionUnavailable
	case PositionTimedOut:
		return PositionTimedOut
	default:
		return PositionUnknownError
	}
}

// PositionError is reported instead of a Position.
type PositionError struct {
	Kind PositionErrorKind
}

func (e *PositionError) Error() string {
	switch e.Kind {
	case PositionPermissionDenied:
		return "위치 권한이 거부되었습니다."
	case PositionUnavailable:
		return "위치 정보를 사용할 수 없습니다."
	case PositionTimedOut:
		return "위치 요청 시간이 초과되었습니다."
	default:
		return "알 수 없는 오류가 발생했습니다."
	}
}
