package gcm

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
	"github.com/dialogs/dialog-gcm-queue/pkg/provider"
	"github.com/pkg/errors"
)

// Client (legacy/gcm)
// https://firebase.google.com/docs/cloud-messaging/http-server-ref
// Legacy FCM/GCM API (https://firebase.google.com/docs/cloud-messaging/migrate-v1):
// 1. copy server key from: https://console.firebase.google.com/project/_/settings/cloudmessaging/
// 2. add to request header: Authorization:key=<server key>
type Client struct {
	client   *http.Client
	endpoint string

	// count send attempts
	retries int

	// authorization key:
	// https://firebase.google.com/docs/cloud-messaging/migrate-v1#before_2
	headerAuthorization string
}

func New(key, endpoint string, retries int, timeout time.Duration) (*Client, error) {

	if strings.TrimSpace(key) == "" {
		return nil, gcmerr.New(gcmerr.CodeIllegalAPIKey, "empty server api key")
	}

	if endpoint == "" {
		endpoint = provider.DefaultEndpoint
	}

	if u, err := url.Parse(endpoint); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		return nil, gcmerr.Newf(gcmerr.CodeInvalidParams, "invalid endpoint url: '%s'", endpoint)
	}

	if timeout <= 0 {
		timeout = time.Second * 10
	}

	return &Client{
		headerAuthorization: "key=" + key,
		endpoint:            endpoint,
		retries:             retries,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Send transmits message to endpoint with the server key and returns
// the push server response.
func Send(ctx context.Context, msg *message.Message, key, endpoint string) (*provider.Response, error) {

	client, err := New(key, endpoint, 1, 0)
	if err != nil {
		return nil, err
	}

	return client.Send(ctx, msg)
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Send(ctx context.Context, msg *message.Message) (retval *provider.Response, err error) {

	if msg == nil {
		return nil, gcmerr.New(gcmerr.CodeInvalidParams, "empty message")
	}

	// message format:
	// https://firebase.google.com/docs/cloud-messaging/http-server-ref#downstream-http-messages-json
	body, err := msg.MarshalJSON()
	if err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeMalformedRequest, err, "encode message")
	}

	fnSend := func() (int, error) {
		retval, err = c.send(ctx, body)
		if err != nil {
			return 0, err
		}

		return retval.StatusCode, nil
	}

	err = provider.SendWithRetry(c.retries, fnSend)
	if err == provider.ErrInternalServerError || err == provider.ErrServiceUnavailable {
		return nil, gcmerr.Wrap(gcmerr.CodeUnknownError, err, "send")
	} else if err != nil {
		if _, ok := err.(*gcmerr.Error); ok {
			return nil, err
		}
		return nil, gcmerr.Wrap(gcmerr.CodeUnknownError, err, "send")
	}

	return retval, nil
}

func (c *Client) send(ctx context.Context, body []byte) (*provider.Response, error) {

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// no attempt can succeed with this context
			return nil, gcmerr.Wrap(gcmerr.CodeUnknownError, ctxErr, "send")
		}
		return nil, err
	}
	defer res.Body.Close()

	retval := &provider.Response{
		StatusCode: res.StatusCode,
	}

	// https://firebase.google.com/docs/cloud-messaging/http-server-ref#error-codes
	switch {
	case res.StatusCode == http.StatusOK:
		if err := provider.DecodeJSONResponse(res.Body, retval); err != nil {
			outInfo := provider.RemoveSecretsFromJSON(body)
			return nil, gcmerr.Wrap(gcmerr.CodeMalformedResponse, err, "invalid gcm response: source: "+string(outInfo))
		}

	case res.StatusCode == http.StatusBadRequest:
		return nil, gcmerr.New(gcmerr.CodeInvalidParams,
			"request rejected by push server: "+provider.ReadErrorBody(res.Body))

	case res.StatusCode == http.StatusUnauthorized:
		return nil, gcmerr.New(gcmerr.CodeAuthenticationError, "push server rejected the server api key")

	case res.StatusCode == http.StatusInternalServerError,
		res.StatusCode == http.StatusServiceUnavailable:
		// retried by provider.SendWithRetry

	default:
		return nil, gcmerr.Newf(gcmerr.CodeUnknownError,
			"unexpected push server status %d: %s", res.StatusCode, provider.ReadErrorBody(res.Body))
	}

	return retval, nil
}

func (c *Client) newRequest(ctx context.Context, body []byte) (*http.Request, error) {

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	// token format:
	// https://firebase.google.com/docs/cloud-messaging/migrate-v1#before_2
	req.Header.Set("Authorization", c.headerAuthorization)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)

	return req, nil
}
