package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var (
	ErrInternalServerError = errors.New("remote push server: internal error")
	ErrServiceUnavailable  = errors.New("remote push server: service unavailable")
)

// SendWithRetry repeats send while the push server answers 500/503 or the
// attempt times out, at most maxRetries times in total. send must report an
// expired caller context with an error that is not a timeout.
func SendWithRetry(maxRetries int, send func() (statusCode int, _ error)) error {

	if maxRetries <= 0 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		hasAttempts := attempt < maxRetries-1

		statusCode, err := send()
		if err != nil {
			if hasAttempts && IsTimeout(err) {
				continue
			}
			return err

		} else if statusCode == http.StatusInternalServerError {
			if hasAttempts {
				continue
			}
			return ErrInternalServerError

		} else if statusCode == http.StatusServiceUnavailable {
			if hasAttempts {
				continue
			}
			return ErrServiceUnavailable

		}

		break
	}

	return nil
}

// IsTimeout reports errors of a single attempt that ran out of time:
// context.DeadlineExceeded and client timeouts (net.Error).
func IsTimeout(err error) bool {
	if err == context.DeadlineExceeded {
		return true
	}

	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}

// DecodeJSONResponse unmarshal response in json format to the object.
// If server returns invalid json data, the method represents a response body
// as an error
func DecodeJSONResponse(r io.Reader, retval interface{}) error {

	decoder := json.NewDecoder(r)

	err := decoder.Decode(retval)
	if err == nil {
		return nil
	}

	if _, ok := err.(*json.SyntaxError); ok {
		errInfo := bytes.NewBuffer(nil)
		if _, errCopy := io.Copy(errInfo, io.MultiReader(decoder.Buffered(), io.LimitReader(r, _MaxErrorBody))); errCopy != nil {
			return err
		}

		return errors.New(truncate(errInfo.String()))
	}

	return err
}

// ReadErrorBody returns at most the first 2000 bytes of a response body.
func ReadErrorBody(r io.Reader) string {

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, _MaxErrorBody)); err != nil {
		return err.Error()
	}

	return truncate(string(bytes.TrimSpace(buf.Bytes())))
}

const _MaxErrorBody = 2000

func truncate(src string) string {
	if len(src) > _MaxErrorBody {
		return src[:_MaxErrorBody]
	}
	return src
}

func JSONWithoutSecrets(obj interface{}) ([]byte, error) {

	out, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	return RemoveSecretsFromJSON(out), nil
}

var _SecretBegin = []byte(`:"`)

// RemoveSecretsFromJSON masks every non-empty string value with '*'.
func RemoveSecretsFromJSON(in []byte) []byte {

	if len(in) == 0 {
		return in
	}

	buf := bytes.NewBuffer(nil)
	for {
		pos := bytes.Index(in, _SecretBegin)
		if pos == -1 {
			break
		}

		secretStart := pos + len(_SecretBegin)
		buf.Write(in[:secretStart])
		in = in[secretStart:]

		secretEnd := -1
		for i := 0; i < len(in); i++ {
			if in[i] == '"' && (i == 0 || (i > 0 && in[i-1] != '\\')) {
				secretEnd = i
				break
			}
		}

		if secretEnd > -1 {
			if secretEnd > 0 { // don't add a sectet mask for empty string
				buf.WriteByte('*')
			}
			in = in[secretEnd:]
		}
	}

	buf.Write(in)

	return buf.Bytes()
}
