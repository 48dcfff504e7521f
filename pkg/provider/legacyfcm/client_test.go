package legacyfcm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/dialogs/dialog-gcm-queue/pkg/test"
	"github.com/stretchr/testify/require"
)

const serverKey = "AIzaSyTestServerKey"

func TestSendOk(t *testing.T) {

	endpoint := test.NewEndpoint(test.ReplySuccess)
	defer endpoint.Close()

	msg, err := message.FromFields(message.Fields{
		"to":           "token",
		"priority":     "normal",
		"collapse_key": "updates",
		"data":         map[string]interface{}{"score": "3x1"},
	})
	require.NoError(t, err)

	client := getClient(t, endpoint.URL)
	resp, err := client.Send(context.Background(), msg)
	require.NoError(t, err)

	require.Equal(t, int64(test.MulticastID), resp.MulticastID)
	require.Equal(t, 1, resp.Success)
	require.Equal(t, 0, resp.Failure)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "0:0", resp.Results[0].MessageID)

	requests := endpoint.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, "key="+serverKey, requests[0].Authorization)
	require.Equal(t, "token", requests[0].Fields["to"])
	require.Equal(t, "normal", requests[0].Fields["priority"])
	require.Equal(t, "updates", requests[0].Fields["collapse_key"])
	require.Equal(t, map[string]interface{}{"score": "3x1"}, requests[0].Fields["data"])
}

func TestSendInvalidRegistration(t *testing.T) {

	endpoint := test.NewEndpoint(test.ReplyStatus(http.StatusOK,
		`{"multicast_id":7,"success":0,"failure":1,"canonical_ids":0,"results":[{"error":"NotRegistered"}]}`))
	defer endpoint.Close()

	msg, err := message.NewMulticast([]string{"gone"})
	require.NoError(t, err)

	resp, err := getClient(t, endpoint.URL).Send(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Failure)
	require.Equal(t, []string{"gone"}, resp.InvalidTokens(provider.Targets(msg)))
}

func TestSendUnsupportedFields(t *testing.T) {

	endpoint := test.NewEndpoint(test.ReplySuccess)
	defer endpoint.Close()

	client := getClient(t, endpoint.URL)

	for _, fields := range []message.Fields{
		{"to": "token", "restricted_package_name": "com.example.app"},
		{"to": "token", "notification": map[string]interface{}{"android_channel_id": "ch", "title": "t"}},
		{"to": "token", "notification": map[string]interface{}{"badge": 3}},
	} {
		msg, err := message.FromFields(fields)
		require.NoError(t, err)

		resp, err := client.Send(context.Background(), msg)
		require.Nil(t, resp)
		require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidParams), "%v: %v", fields, err)
	}

	require.Empty(t, endpoint.Requests())

	// supported keys pass unchanged
	msg, err := message.FromFields(message.Fields{
		"to":           "token",
		"notification": map[string]interface{}{"title": "t", "body": "b"},
	})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), msg)
	require.NoError(t, err)

	requests := endpoint.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, map[string]interface{}{"title": "t", "body": "b"}, requests[0].Fields["notification"])
}

func TestSendRejected(t *testing.T) {

	endpoint := test.NewEndpoint(test.ReplyStatus(http.StatusUnauthorized, "Unauthorized"))
	defer endpoint.Close()

	msg, err := message.NewTo("token")
	require.NoError(t, err)

	resp, err := getClient(t, endpoint.URL).Send(context.Background(), msg)
	require.Nil(t, resp)
	require.Error(t, err)
	require.NotEqual(t, gcmerr.CodeUnknown, gcmerr.CodeOf(err))
}

func TestConvertError(t *testing.T) {

	require.Equal(t, gcmerr.CodeAuthenticationError,
		gcmerr.CodeOf(convertError(errors.New("401 error: 401 Unauthorized"))))

	require.Equal(t, gcmerr.CodeInvalidParams,
		gcmerr.CodeOf(convertError(errors.New("400 error: 400 Bad Request"))))

	require.Equal(t, gcmerr.CodeUnknownError,
		gcmerr.CodeOf(convertError(errors.New("503 error: 503 Service Unavailable"))))

	require.Equal(t, gcmerr.CodeUnknownError,
		gcmerr.CodeOf(convertError(errors.New("connection refused"))))

	require.Equal(t, gcmerr.CodeMalformedResponse,
		gcmerr.CodeOf(convertError(&json.SyntaxError{})))
}

func TestNewErrors(t *testing.T) {

	_, err := New("", "", 1)
	require.True(t, gcmerr.Is(err, gcmerr.CodeIllegalAPIKey), err)

	client, err := New(serverKey, "", 1)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), nil)
	require.True(t, gcmerr.Is(err, gcmerr.CodeInvalidParams), err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg, err := message.NewTo("token")
	require.NoError(t, err)

	_, err = client.Send(ctx, msg)
	require.True(t, gcmerr.Is(err, gcmerr.CodeUnknownError), err)
}

func getClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	client, err := New(serverKey, endpoint, 1)
	require.NoError(t, err)

	return client
}
