package message

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
)

// Wire keys of a downstream message.
const (
	KeyTo                    = "to"
	KeyRegistrationIDs       = "registration_ids"
	KeyCollapseKey           = "collapse_key"
	KeyPriority              = "priority"
	KeyContentAvailable      = "content_available"
	KeyDelayWhileIdle        = "delay_while_idle"
	KeyTimeToLive            = "time_to_live"
	KeyRestrictedPackageName = "restricted_package_name"
	KeyDryRun                = "dry_run"
	KeyData                  = "data"
	KeyNotification          = "notification"
)

// Fields is a loosely typed message keyed by wire names.
type Fields map[string]interface{}

type fieldSetter func(m *Message, value interface{}) error

// wire key order; also the order options are applied in FromFields
var _OptionKeys = []string{
	KeyCollapseKey,
	KeyPriority,
	KeyContentAvailable,
	KeyDelayWhileIdle,
	KeyTimeToLive,
	KeyRestrictedPackageName,
	KeyDryRun,
	KeyData,
	KeyNotification,
}

var _FieldSetters = map[string]fieldSetter{
	KeyCollapseKey:           setCollapseKeyField,
	KeyPriority:              setPriorityField,
	KeyContentAvailable:      boolField((*Message).SetContentAvailable),
	KeyDelayWhileIdle:        boolField((*Message).SetDelayWhileIdle),
	KeyTimeToLive:            setTimeToLiveField,
	KeyRestrictedPackageName: setRestrictedPackageNameField,
	KeyDryRun:                boolField((*Message).SetDryRun),
	KeyData:                  setDataField,
	KeyNotification:          setNotificationField,
}

// FromFields builds a message from wire-keyed fields. The target is taken
// from "to" when present, otherwise from "registration_ids". Keys without a
// setter are ignored, so are the target key that was not chosen.
func FromFields(fields Fields) (*Message, error) {

	target, ok := fields[KeyTo]
	if !ok || target == nil {
		target, ok = fields[KeyRegistrationIDs]
	}

	if !ok || target == nil {
		return nil, gcmerr.New(gcmerr.CodeInvalidTarget, "invalid or missing target")
	}

	m, err := New(target)
	if err != nil {
		return nil, err
	}

	for _, key := range _OptionKeys {
		value, ok := fields[key]
		if !ok {
			continue
		}

		if err := _FieldSetters[key](m, value); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func setCollapseKeyField(m *Message, value interface{}) error {

	key, ok := value.(string)
	if !ok {
		return invalidType(KeyCollapseKey, value)
	}

	m.SetCollapseKey(key)
	return nil
}

func setPriorityField(m *Message, value interface{}) error {

	priority, ok := value.(string)
	if !ok {
		return gcmerr.Newf(gcmerr.CodeInvalidPriority, "priority must be high or normal: %v", value)
	}

	return m.SetPriority(Priority(priority))
}

func boolField(set func(*Message, bool) *Message) fieldSetter {
	return func(m *Message, value interface{}) error {
		val, ok := ParseBool(value)
		if !ok {
			return gcmerr.Newf(gcmerr.CodeInvalidParams, "invalid boolean value: %v", value)
		}

		set(m, val)
		return nil
	}
}

func setTimeToLiveField(m *Message, value interface{}) error {

	if value == nil {
		m.ClearTimeToLive()
		return nil
	}

	ttl, err := parseTTL(value)
	if err != nil {
		return err
	}

	return m.SetTimeToLive(ttl)
}

func setRestrictedPackageNameField(m *Message, value interface{}) error {

	name, ok := value.(string)
	if !ok {
		return invalidType(KeyRestrictedPackageName, value)
	}

	m.SetRestrictedPackageName(name)
	return nil
}

func setDataField(m *Message, value interface{}) error {

	if value == nil {
		return m.SetData(nil)
	}

	data, ok := value.(map[string]interface{})
	if !ok {
		return invalidType(KeyData, value)
	}

	return m.SetData(data)
}

func setNotificationField(m *Message, value interface{}) error {

	if value == nil {
		return m.SetNotification(nil)
	}

	notification, ok := value.(map[string]interface{})
	if !ok {
		return invalidType(KeyNotification, value)
	}

	return m.SetNotification(notification)
}

// ParseBool reads the accepted boolean forms of a field value:
// bool, numbers (non-zero is true) and the strings
// "1", "t", "true", "on", "yes" / "0", "f", "false", "off", "no", "" (any case).
func ParseBool(value interface{}) (bool, bool) {

	switch v := value.(type) {
	case bool:
		return v, true

	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "on", "yes":
			return true, true
		case "", "0", "f", "false", "off", "no":
			return false, true
		}
		return false, false

	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false, false
		}
		return f != 0, true

	case int:
		return v != 0, true
	case int32:
		return v != 0, true
	case int64:
		return v != 0, true
	case uint:
		return v != 0, true
	case uint32:
		return v != 0, true
	case uint64:
		return v != 0, true
	case float32:
		return v != 0, true
	case float64:
		return v != 0, true
	}

	return false, false
}

// parseTTL accepts integers, integral floats, json.Number and decimal strings.
func parseTTL(value interface{}) (int, error) {

	switch v := value.(type) {
	case int:
		return ttlFromInt(int64(v))
	case int32:
		return ttlFromInt(int64(v))
	case int64:
		return ttlFromInt(v)
	case uint:
		return ttlFromUint(uint64(v))
	case uint32:
		return ttlFromUint(uint64(v))
	case uint64:
		return ttlFromUint(v)
	case float32:
		return ttlFromFloat(float64(v), value)
	case float64:
		return ttlFromFloat(v, value)
	case json.Number:
		return ttlFromString(v.String())
	case string:
		return ttlFromString(v)
	}

	return 0, invalidTTL(value)
}

func ttlFromString(src string) (int, error) {

	src = strings.TrimSpace(src)

	i, err := strconv.ParseInt(src, 10, 64)
	if err == nil {
		return ttlFromInt(i)
	}

	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return 0, gcmerr.Newf(gcmerr.CodeOutsideTTL,
			"time to live must be between %d and %d, value: %s", MinTTL, MaxTTL, src)
	}

	// plain decimal notation only: no hex, inf or nan forms
	if strings.Trim(src, "0123456789+-.eE") != "" || !strings.ContainsAny(src, "0123456789") {
		return 0, invalidTTL(src)
	}

	f, err := strconv.ParseFloat(src, 64)
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return 0, gcmerr.Newf(gcmerr.CodeOutsideTTL,
			"time to live must be between %d and %d, value: %s", MinTTL, MaxTTL, src)
	} else if err != nil {
		return 0, invalidTTL(src)
	}

	return ttlFromFloat(f, src)
}

func ttlFromInt(v int64) (int, error) {
	if err := checkTTL(v); err != nil {
		return 0, err
	}

	return int(v), nil
}

func ttlFromUint(v uint64) (int, error) {
	if v > MaxTTL {
		return 0, gcmerr.Newf(gcmerr.CodeOutsideTTL,
			"time to live must be between %d and %d, value: %d", MinTTL, MaxTTL, v)
	}

	return int(v), nil
}

func ttlFromFloat(v float64, src interface{}) (int, error) {

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalidTTL(src)
	}

	if v < MinTTL || v > MaxTTL {
		return 0, gcmerr.Newf(gcmerr.CodeOutsideTTL,
			"time to live must be between %d and %d, value: %v", MinTTL, MaxTTL, src)
	}

	if v != math.Trunc(v) {
		return 0, invalidTTL(src)
	}

	return int(v), nil
}

func invalidTTL(value interface{}) error {
	return gcmerr.Newf(gcmerr.CodeInvalidTTL, "invalid time to live: %v", value)
}

func invalidType(key string, value interface{}) error {
	return gcmerr.Newf(gcmerr.CodeInvalidParams, "invalid type of '%s': %T", key, value)
}
