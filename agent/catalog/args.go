package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

const dateLayout = "2006-01-02"

// intArg coerces a required integer argument. JSON numbers arrive as
// float64; numeric strings are accepted the way the original text interface
// accepted them. Anything non-integral wraps ErrInvalidArgument.
func intArg(args map[string]any, key string) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s is required", contractx.ErrInvalidArgument, key)
	}
	return coerceInt(raw, key)
}

func optionalIntArg(args map[string]any, key string, def int64) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	if s, isStr := raw.(string); isStr && strings.TrimSpace(s) == "" {
		return def, nil
	}
	return coerceInt(raw, key)
}

func coerceInt(raw any, key string) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", contractx.ErrInvalidArgument, key, v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", contractx.ErrInvalidArgument, key, v.String())
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", contractx.ErrInvalidArgument, key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", contractx.ErrInvalidArgument, key, raw)
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrInvalidArgument, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", contractx.ErrInvalidArgument, key, raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be empty", contractx.ErrInvalidArgument, key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key, def string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", contractx.ErrInvalidArgument, key, raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return s, nil
}

// dateArg parses an optional YYYY-MM-DD argument. Absent or blank is nil.
func dateArg(args map[string]any, key string) (*time.Time, error) {
	raw, err := optionalStringArg(args, key, "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date, got %q", contractx.ErrInvalidArgument, key, raw)
	}
	t = t.UTC()
	return &t, nil
}
