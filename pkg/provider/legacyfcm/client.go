package legacyfcm

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/edganiukov/fcm"
)

// Client (legacy) on top of github.com/edganiukov/fcm.
// https://firebase.google.com/docs/cloud-messaging/http-server-ref
//
// The library request has a fixed field set: a message it cannot carry as is
// (restricted_package_name, notification keys outside the library set,
// non-string notification values) is rejected with InvalidParams instead of
// being sent without them.
type Client struct {
	native    *fcm.Client
	sendTries int
}

func New(key, endpoint string, sendTries int) (*Client, error) {

	if strings.TrimSpace(key) == "" {
		return nil, gcmerr.New(gcmerr.CodeIllegalAPIKey, "empty server api key")
	}

	if endpoint == "" {
		endpoint = provider.DefaultEndpoint
	}

	native, err := fcm.NewClient(key, fcm.WithEndpoint(endpoint))
	if err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeInvalidParams, err, "fcm client")
	}

	return &Client{
		native:    native,
		sendTries: sendTries,
	}, nil
}

// Send converts msg through its wire form, the library request carries the
// same json keys.
func (c *Client) Send(ctx context.Context, msg *message.Message) (*provider.Response, error) {

	if msg == nil {
		return nil, gcmerr.New(gcmerr.CodeInvalidParams, "empty message")
	}

	if err := ctx.Err(); err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeUnknownError, err, "send")
	}

	native, err := toNative(msg)
	if err != nil {
		return nil, err
	}

	answer, err := c.native.SendWithRetry(native, c.sendTries)
	if err != nil {
		return nil, convertError(err)
	}

	retval := &provider.Response{
		MulticastID:  answer.MulticastID,
		Success:      answer.Success,
		Failure:      answer.Failure,
		CanonicalIDs: answer.CanonicalIDs,
		// the library returns an error for any other status
		StatusCode: 200,
		Results:    make([]*provider.ResponseResult, 0, len(answer.Results)),
	}

	for _, res := range answer.Results {
		item := &provider.ResponseResult{
			MessageID:      res.MessageID,
			RegistrationID: res.RegistrationID,
		}

		if res.Error != nil {
			item.Error = errorCode(res.Error)
		}

		retval.Results = append(retval.Results, item)
	}

	return retval, nil
}

func toNative(msg *message.Message) (*fcm.Message, error) {

	src, err := msg.MarshalJSON()
	if err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "encode message")
	}

	retval := &fcm.Message{}
	if err := json.Unmarshal(src, retval); err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeInvalidParams, err, "message not supported by fcm client")
	}

	if err := checkLoss(src, retval); err != nil {
		return nil, err
	}

	return retval, nil
}

// checkLoss compares the wire form of msg with the request the library
// would send.
func checkLoss(src []byte, native *fcm.Message) error {

	out, err := json.Marshal(native)
	if err != nil {
		return gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "encode fcm message")
	}

	var expected, actual map[string]interface{}
	if err := json.Unmarshal(src, &expected); err != nil {
		return gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "decode message")
	}
	if err := json.Unmarshal(out, &actual); err != nil {
		return gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "decode fcm message")
	}

	for key, value := range expected {
		nativeValue, ok := actual[key]
		if obj, isObj := value.(map[string]interface{}); !ok && isObj && len(obj) == 0 {
			continue
		}

		if !ok || !reflect.DeepEqual(value, nativeValue) {
			return gcmerr.Newf(gcmerr.CodeInvalidParams,
				"fcm client can't send '%s' as is, use the google sender", key)
		}
	}

	return nil
}

// errorCode gives back the wire error code for the library errors the
// callers act on.
func errorCode(err error) string {
	switch err {
	case fcm.ErrInvalidRegistration:
		return provider.ErrorCodeInvalidRegistration
	case fcm.ErrNotRegistered:
		return provider.ErrorCodeNotRegistered
	}

	return err.Error()
}

// The library reports a non-200 answer as "<status> error: <status text>".
func convertError(err error) error {

	switch err.(type) {
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return gcmerr.Wrap(gcmerr.CodeMalformedResponse, err, "invalid fcm response")
	}

	text := err.Error()
	if pos := strings.Index(text, " "); pos > 0 {
		if status, errConv := strconv.Atoi(text[:pos]); errConv == nil {
			switch status {
			case 400:
				return gcmerr.Wrap(gcmerr.CodeInvalidParams, err, "request rejected by push server")
			case 401:
				return gcmerr.Wrap(gcmerr.CodeAuthenticationError, err, "push server rejected the server api key")
			}
		}
	}

	return gcmerr.Wrap(gcmerr.CodeUnknownError, err, "send")
}
