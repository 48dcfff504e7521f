package message

import (
	"bytes"
	"encoding/json"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
)

const (
	// MaxDataSize is the limit for the encoded data payload, in bytes.
	MaxDataSize = 4096
	// MinTTL and MaxTTL bound the time to live in seconds (4 weeks max).
	MinTTL = 0
	MaxTTL = 2419200
	// MaxRegistrationIDs is the multicast limit of one request.
	MaxRegistrationIDs = 1000
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityNormal
}

// Message is one downstream push request:
// https://firebase.google.com/docs/cloud-messaging/http-server-ref#downstream-http-messages-json
//
// Exactly one of the targets (to, registration ids) is set. Every setter
// validates its input and leaves the message untouched when it fails.
type Message struct {
	to              string
	registrationIDs []string

	// nil: not sent
	collapseKey *string

	// default: high
	priority         Priority
	contentAvailable bool
	delayWhileIdle   bool

	// nil: the push server keeps the message for its default period
	timeToLive *int

	restrictedPackageName string
	dryRun                bool

	// encoded by the setters, the getters decode a fresh copy.
	// data: nil when not set; notification: nil is sent as {}
	data         json.RawMessage
	notification json.RawMessage
}

// New creates a message for a single recipient (string) or for a list of
// recipients ([]string, or []interface{} holding strings).
func New(target interface{}) (*Message, error) {

	switch t := target.(type) {
	case string:
		return NewTo(t)

	case []string:
		return NewMulticast(t)

	case []interface{}:
		ids, ok := stringList(t)
		if !ok {
			return nil, gcmerr.New(gcmerr.CodeInvalidTarget, "registration ids must be strings")
		}
		return NewMulticast(ids)

	default:
		return nil, gcmerr.Newf(gcmerr.CodeInvalidTarget, "invalid or missing target: %T", target)
	}
}

func NewTo(token string) (*Message, error) {

	m := newMessage()
	if err := m.SetTo(token); err != nil {
		return nil, err
	}

	return m, nil
}

func NewMulticast(ids []string) (*Message, error) {

	if len(ids) == 0 {
		return nil, gcmerr.New(gcmerr.CodeInvalidTarget, "invalid or missing target: empty registration ids")
	}

	m := newMessage()
	if err := m.SetRegistrationIDs(ids); err != nil {
		return nil, err
	}

	return m, nil
}

func newMessage() *Message {
	return &Message{
		priority: PriorityHigh,
	}
}

// Clone returns a copy that shares nothing mutable with m.
func (m *Message) Clone() *Message {

	c := *m

	if m.registrationIDs != nil {
		c.registrationIDs = append([]string(nil), m.registrationIDs...)
	}

	if m.collapseKey != nil {
		key := *m.collapseKey
		c.collapseKey = &key
	}

	if m.timeToLive != nil {
		ttl := *m.timeToLive
		c.timeToLive = &ttl
	}

	// data and notification are replaced on write, never modified
	return &c
}

func (m *Message) To() string {
	return m.to
}

// SetTo switches the message to a single recipient.
func (m *Message) SetTo(token string) error {

	if token == "" {
		return gcmerr.New(gcmerr.CodeInvalidTarget, "invalid or missing target: empty token")
	}

	m.to = token
	m.registrationIDs = nil
	return nil
}

func (m *Message) RegistrationIDs() []string {
	if m.registrationIDs == nil {
		return nil
	}

	return append([]string(nil), m.registrationIDs...)
}

// SetRegistrationIDs switches the message to multicast. The list must hold
// 1..MaxRegistrationIDs tokens.
func (m *Message) SetRegistrationIDs(ids []string) error {

	count := len(ids)
	if count == 0 || count > MaxRegistrationIDs {
		return gcmerr.Newf(gcmerr.CodeMalformedRequest,
			"must contain 1-%d (inclusive) registration ids, count: %d", MaxRegistrationIDs, count)
	}

	m.registrationIDs = append([]string(nil), ids...)
	m.to = ""
	return nil
}

func (m *Message) CollapseKey() (string, bool) {
	if m.collapseKey == nil {
		return "", false
	}

	return *m.collapseKey, true
}

func (m *Message) SetCollapseKey(key string) *Message {
	m.collapseKey = &key
	return m
}

func (m *Message) Priority() Priority {
	return m.priority
}

func (m *Message) SetPriority(priority Priority) error {

	if !priority.Valid() {
		return gcmerr.Newf(gcmerr.CodeInvalidPriority, "priority must be high or normal: '%s'", priority)
	}

	m.priority = priority
	return nil
}

func (m *Message) ContentAvailable() bool {
	return m.contentAvailable
}

func (m *Message) SetContentAvailable(val bool) *Message {
	m.contentAvailable = val
	return m
}

func (m *Message) DelayWhileIdle() bool {
	return m.delayWhileIdle
}

func (m *Message) SetDelayWhileIdle(val bool) *Message {
	m.delayWhileIdle = val
	return m
}

func (m *Message) TimeToLive() (int, bool) {
	if m.timeToLive == nil {
		return 0, false
	}

	return *m.timeToLive, true
}

func (m *Message) SetTimeToLive(seconds int) error {

	if err := checkTTL(int64(seconds)); err != nil {
		return err
	}

	m.timeToLive = &seconds
	return nil
}

// ClearTimeToLive drops the value, the push server default applies.
func (m *Message) ClearTimeToLive() *Message {
	m.timeToLive = nil
	return m
}

func (m *Message) RestrictedPackageName() string {
	return m.restrictedPackageName
}

func (m *Message) SetRestrictedPackageName(name string) *Message {
	m.restrictedPackageName = name
	return m
}

func (m *Message) DryRun() bool {
	return m.dryRun
}

func (m *Message) SetDryRun(val bool) *Message {
	m.dryRun = val
	return m
}

// Data returns a copy of the custom payload, nil when not set. Numbers are
// json.Number.
func (m *Message) Data() map[string]interface{} {
	return decodeObject(m.data)
}

// SetData replaces the custom payload. A nil map removes it. The JSON
// encoding of data must not exceed MaxDataSize bytes.
func (m *Message) SetData(data map[string]interface{}) error {

	if data == nil {
		m.data = nil
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "encode data payload")
	}

	if len(raw) > MaxDataSize {
		return gcmerr.Newf(gcmerr.CodeMalformedRequest,
			"data payload exceeds limit (max %d bytes): %d", MaxDataSize, len(raw))
	}

	m.data = raw
	return nil
}

// Notification returns a copy of the predefined notification fields, an
// empty map when not set. Numbers are json.Number.
func (m *Message) Notification() map[string]interface{} {
	if m.notification == nil {
		return map[string]interface{}{}
	}

	return decodeObject(m.notification)
}

// SetNotification replaces the predefined notification fields
// (title, body, icon, ...). A nil map resets them to empty.
func (m *Message) SetNotification(notification map[string]interface{}) error {

	if notification == nil {
		m.notification = nil
		return nil
	}

	raw, err := json.Marshal(notification)
	if err != nil {
		return gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "encode notification")
	}

	m.notification = raw
	return nil
}

func checkTTL(seconds int64) error {

	if seconds < MinTTL || seconds > MaxTTL {
		return gcmerr.Newf(gcmerr.CodeOutsideTTL,
			"time to live must be between %d and %d, value: %d", MinTTL, MaxTTL, seconds)
	}

	return nil
}

// decodeObject turns an object encoded by json.Marshal back into a new map.
func decodeObject(raw json.RawMessage) map[string]interface{} {
	if raw == nil {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	retval := make(map[string]interface{})
	if err := decoder.Decode(&retval); err != nil {
		return nil
	}

	return retval
}

func stringList(src []interface{}) ([]string, bool) {

	retval := make([]string, 0, len(src))
	for _, item := range src {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		retval = append(retval, s)
	}

	return retval, true
}
