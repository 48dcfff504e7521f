package message

import (
	"bytes"
	"encoding/json"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/mailru/easyjson/jwriter"
)

// Fields returns the sparse wire form: options equal to their defaults are
// left out. The notification is always present, an empty object when it
// was never set; the push server treats both the same way.
func (m *Message) Fields() Fields {

	retval := make(Fields)

	if m.to != "" {
		retval[KeyTo] = m.to
	}

	if len(m.registrationIDs) > 0 {
		retval[KeyRegistrationIDs] = m.RegistrationIDs()
	}

	if m.collapseKey != nil {
		retval[KeyCollapseKey] = *m.collapseKey
	}

	if m.priority != PriorityHigh {
		retval[KeyPriority] = string(m.priority)
	}

	if m.contentAvailable {
		retval[KeyContentAvailable] = true
	}

	if m.delayWhileIdle {
		retval[KeyDelayWhileIdle] = true
	}

	if m.timeToLive != nil {
		retval[KeyTimeToLive] = *m.timeToLive
	}

	if m.restrictedPackageName != "" {
		retval[KeyRestrictedPackageName] = m.restrictedPackageName
	}

	if m.dryRun {
		retval[KeyDryRun] = true
	}

	if m.data != nil {
		retval[KeyData] = m.Data()
	}

	retval[KeyNotification] = m.Notification()

	return retval
}

// MarshalEasyJSON writes the same keys as Fields, in wire order.
func (m *Message) MarshalEasyJSON(out *jwriter.Writer) {

	first := true
	key := func(name string) {
		if first {
			first = false
		} else {
			out.RawByte(',')
		}
		out.String(name)
		out.RawByte(':')
	}

	out.RawByte('{')

	if m.to != "" {
		key(KeyTo)
		out.String(m.to)
	}

	if len(m.registrationIDs) > 0 {
		key(KeyRegistrationIDs)
		out.RawByte('[')
		for i, id := range m.registrationIDs {
			if i > 0 {
				out.RawByte(',')
			}
			out.String(id)
		}
		out.RawByte(']')
	}

	if m.collapseKey != nil {
		key(KeyCollapseKey)
		out.String(*m.collapseKey)
	}

	if m.priority != PriorityHigh {
		key(KeyPriority)
		out.String(string(m.priority))
	}

	if m.contentAvailable {
		key(KeyContentAvailable)
		out.Bool(true)
	}

	if m.delayWhileIdle {
		key(KeyDelayWhileIdle)
		out.Bool(true)
	}

	if m.timeToLive != nil {
		key(KeyTimeToLive)
		out.Int(*m.timeToLive)
	}

	if m.restrictedPackageName != "" {
		key(KeyRestrictedPackageName)
		out.String(m.restrictedPackageName)
	}

	if m.dryRun {
		key(KeyDryRun)
		out.Bool(true)
	}

	if m.data != nil {
		key(KeyData)
		out.Raw(m.data, nil)
	}

	key(KeyNotification)
	if m.notification == nil {
		out.RawString("{}")
	} else {
		out.Raw(m.notification, nil)
	}

	out.RawByte('}')
}

func (m *Message) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	m.MarshalEasyJSON(&w)
	return w.BuildBytes()
}

// UnmarshalJSON replaces m with the message decoded from data. On error m
// is left as it was.
func (m *Message) UnmarshalJSON(data []byte) error {

	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}

	*m = *parsed
	return nil
}

func (m *Message) String() string {

	out, err := m.MarshalJSON()
	if err != nil {
		return err.Error()
	}

	return string(out)
}

// FromJSON decodes a JSON object into fields and builds the message with
// FromFields. Numbers keep their literal form.
func FromJSON(data []byte) (*Message, error) {

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var fields Fields
	if err := decoder.Decode(&fields); err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeInvalidParams, err, "decode message")
	}

	if fields == nil {
		return nil, gcmerr.New(gcmerr.CodeInvalidTarget, "invalid or missing target")
	}

	return FromFields(fields)
}
