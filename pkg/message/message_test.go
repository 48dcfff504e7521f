package message

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/stretchr/testify/require"
)

func TestNewTarget(t *testing.T) {

	{
		m, err := New("ABC123")
		require.NoError(t, err)
		require.Equal(t, "ABC123", m.To())
		require.Nil(t, m.RegistrationIDs())
		require.Equal(t, PriorityHigh, m.Priority())
	}

	{
		m, err := New([]string{"a", "b"})
		require.NoError(t, err)
		require.Equal(t, "", m.To())
		require.Equal(t, []string{"a", "b"}, m.RegistrationIDs())
	}

	{
		m, err := New([]interface{}{"a", "b"})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, m.RegistrationIDs())
	}

	for _, target := range []interface{}{
		nil,
		"",
		123,
		[]string{},
		[]interface{}{"a", 1},
		map[string]interface{}{"to": "a"},
	} {
		m, err := New(target)
		require.Nil(t, m, "%#v", target)
		require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidTarget), "%#v: %v", target, err)
	}

	{
		m, err := New(makeIDs(MaxRegistrationIDs + 1))
		require.Nil(t, m)
		require.True(t, gcmerr.Is(err, gcmerr.CodeMalformedRequest), err)
	}
}

func TestSetTargetKeepsSingleTarget(t *testing.T) {

	m, err := NewTo("token")
	require.NoError(t, err)

	require.NoError(t, m.SetRegistrationIDs([]string{"a"}))
	require.Equal(t, "", m.To())
	require.Equal(t, []string{"a"}, m.RegistrationIDs())

	require.NoError(t, m.SetTo("token2"))
	require.Equal(t, "token2", m.To())
	require.Nil(t, m.RegistrationIDs())

	err = m.SetTo("")
	require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidTarget), err)
	require.Equal(t, "token2", m.To())
}

func TestSetRegistrationIDs(t *testing.T) {

	m, err := NewMulticast([]string{"first"})
	require.NoError(t, err)

	for _, count := range []int{1, 2, 999, MaxRegistrationIDs} {
		ids := makeIDs(count)
		require.NoError(t, m.SetRegistrationIDs(ids), count)
		require.Equal(t, ids, m.RegistrationIDs())
	}

	prev := m.RegistrationIDs()
	for _, ids := range [][]string{nil, {}, makeIDs(MaxRegistrationIDs + 1)} {
		err := m.SetRegistrationIDs(ids)
		require.True(t, gcmerr.Is(err, gcmerr.CodeMalformedRequest), err)
		require.Equal(t, prev, m.RegistrationIDs())
	}

	// the message keeps its own copy
	ids := []string{"x", "y"}
	require.NoError(t, m.SetRegistrationIDs(ids))
	ids[0] = "changed"
	require.Equal(t, []string{"x", "y"}, m.RegistrationIDs())
}

func TestSetTimeToLive(t *testing.T) {

	m := newTestMessage(t)

	for _, ttl := range []int{MinTTL, 1, 3600, MaxTTL} {
		require.NoError(t, m.SetTimeToLive(ttl))
		val, ok := m.TimeToLive()
		require.True(t, ok)
		require.Equal(t, ttl, val)
	}

	for _, ttl := range []int{-1, MaxTTL + 1, -MaxTTL} {
		err := m.SetTimeToLive(ttl)
		require.True(t, gcmerr.Is(err, gcmerr.CodeOutsideTTL), err)

		val, ok := m.TimeToLive()
		require.True(t, ok)
		require.Equal(t, MaxTTL, val)
	}

	m.ClearTimeToLive()
	_, ok := m.TimeToLive()
	require.False(t, ok)
}

func TestTimeToLiveField(t *testing.T) {

	for _, value := range []interface{}{
		0, 2419200, int64(60), uint(60), 60.0, json.Number("60"), "60", " 86400 ", "0", "2419200", "1e3", "60.0",
	} {
		m := newTestMessage(t)
		require.NoError(t, setTimeToLiveField(m, value), "%#v", value)
		_, ok := m.TimeToLive()
		require.True(t, ok)
	}

	for _, value := range []interface{}{
		-1, 2419201, int64(-1), uint64(2419201), -0.5, 2419200.5, "-1", "2419201", json.Number("2419201"),
		"99999999999999999999999", "1e400",
	} {
		m := newTestMessage(t)
		err := setTimeToLiveField(m, value)
		require.True(t, gcmerr.Is(err, gcmerr.CodeOutsideTTL), "%#v: %v", value, err)
		_, ok := m.TimeToLive()
		require.False(t, ok)
	}

	for _, value := range []interface{}{
		"abc", "", "12abc", true, []int{1}, 1.5, "NaN", "Inf", "-Infinity", "0x10p0", "0x10", "1_0",
		math.Inf(1), math.NaN(),
	} {
		m := newTestMessage(t)
		err := setTimeToLiveField(m, value)
		require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidTTL), "%#v: %v", value, err)
	}

	{
		m := newTestMessage(t)
		require.NoError(t, m.SetTimeToLive(10))
		require.NoError(t, setTimeToLiveField(m, nil))
		_, ok := m.TimeToLive()
		require.False(t, ok)
	}
}

func TestSetPriority(t *testing.T) {

	m := newTestMessage(t)

	require.NoError(t, m.SetPriority(PriorityNormal))
	require.Equal(t, PriorityNormal, m.Priority())
	require.NoError(t, m.SetPriority("high"))
	require.Equal(t, PriorityHigh, m.Priority())

	for _, p := range []Priority{"", "low", "HIGH", "Normal", " high", "10"} {
		err := m.SetPriority(p)
		require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidPriority), err)
		require.Equal(t, PriorityHigh, m.Priority())
	}

	err := setPriorityField(m, 5)
	require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidPriority), err)
}

func TestSetDataSize(t *testing.T) {

	// {"k":"..."} adds 8 bytes to the value
	const overhead = 8

	m := newTestMessage(t)

	exact := map[string]interface{}{"k": strings.Repeat("a", MaxDataSize-overhead)}
	raw, err := json.Marshal(exact)
	require.NoError(t, err)
	require.Len(t, raw, MaxDataSize)

	require.NoError(t, m.SetData(exact))
	require.Equal(t, exact, m.Data())

	over := map[string]interface{}{"k": strings.Repeat("a", MaxDataSize-overhead+1)}
	err = m.SetData(over)
	require.True(t, gcmerr.Is(err, gcmerr.CodeMalformedRequest), err)
	require.Equal(t, exact, m.Data())

	require.NoError(t, m.SetData(nil))
	require.Nil(t, m.Data())

	err = m.SetData(map[string]interface{}{"ch": make(chan int)})
	require.True(t, gcmerr.Is(err, gcmerr.CodeMalformedRequest), err)
	require.Nil(t, m.Data())
}

func TestParseBool(t *testing.T) {

	for _, value := range []interface{}{true, "1", "true", "TRUE", "on", "yes", "t", 1, 2.5, json.Number("1")} {
		val, ok := ParseBool(value)
		require.True(t, ok, "%#v", value)
		require.True(t, val, "%#v", value)
	}

	for _, value := range []interface{}{false, "0", "false", "off", "no", "", 0, 0.0, json.Number("0")} {
		val, ok := ParseBool(value)
		require.True(t, ok, "%#v", value)
		require.False(t, val, "%#v", value)
	}

	for _, value := range []interface{}{nil, "maybe", []bool{true}, json.Number("x")} {
		_, ok := ParseBool(value)
		require.False(t, ok, "%#v", value)
	}
}

func TestClone(t *testing.T) {

	m, err := NewMulticast([]string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, m.SetTimeToLive(10))
	require.NoError(t, m.SetData(map[string]interface{}{"k": "v"}))
	m.SetCollapseKey("c")
	require.NoError(t, m.SetNotification(map[string]interface{}{"title": "t"}))

	c := m.Clone()
	require.Equal(t, m.Fields(), c.Fields())

	require.NoError(t, c.SetTimeToLive(20))
	require.NoError(t, c.SetRegistrationIDs([]string{"z"}))
	c.SetCollapseKey("d").SetDryRun(true)
	c.Notification()["title"] = "changed"

	require.Equal(t,
		Fields{
			KeyRegistrationIDs: []string{"a", "b"},
			KeyCollapseKey:     "c",
			KeyTimeToLive:      10,
			KeyData:            map[string]interface{}{"k": "v"},
			KeyNotification:    map[string]interface{}{"title": "t"},
		},
		m.Fields())
}

func TestPayloadCopies(t *testing.T) {

	m := newTestMessage(t)

	nested := map[string]interface{}{"n": "1"}
	src := map[string]interface{}{"k": "v", "nested": nested}
	require.NoError(t, m.SetData(src))
	require.NoError(t, m.SetNotification(map[string]interface{}{"title": "t"}))

	// neither the source maps nor the returned ones reach the message
	src["big"] = strings.Repeat("x", 5000)
	nested["n"] = "changed"
	m.Data()["big"] = strings.Repeat("x", 5000)
	m.Data()["nested"].(map[string]interface{})["n"] = "changed"
	m.Notification()["title"] = "changed"

	expected := map[string]interface{}{"k": "v", "nested": map[string]interface{}{"n": "1"}}
	require.Equal(t, expected, m.Data())
	require.Equal(t, expected, m.Fields()[KeyData])
	require.Equal(t, map[string]interface{}{"title": "t"}, m.Notification())
	require.Equal(t, `{"to":"token","data":{"k":"v","nested":{"n":"1"}},"notification":{"title":"t"}}`, m.String())
}

func TestSetNotificationEncoding(t *testing.T) {

	m := newTestMessage(t)
	require.NoError(t, m.SetNotification(map[string]interface{}{"title": "t"}))

	err := m.SetNotification(map[string]interface{}{"badge": math.NaN()})
	require.True(t, gcmerr.Is(err, gcmerr.CodeMalformedRequest), err)
	require.Equal(t, map[string]interface{}{"title": "t"}, m.Notification())

	out, err := m.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"to":"token","notification":{"title":"t"}}`, string(out))

	require.NoError(t, m.SetNotification(nil))
	require.Equal(t, map[string]interface{}{}, m.Notification())
	require.Equal(t, `{"to":"token","notification":{}}`, m.String())
}

func newTestMessage(t *testing.T) *Message {
	t.Helper()

	m, err := NewTo("token")
	require.NoError(t, err)

	return m
}

func makeIDs(count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = "id-" + strconv.Itoa(i)
	}
	return ids
}
