package service

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dialogs/dialog-gcm-queue/pkg/gcmerr"
	"github.com/dialogs/dialog-gcm-queue/pkg/message"
)

// Form field names of the demo page.
const (
	FormEndpoint              = "gcmUrl"
	FormServerKey             = "serverApiKey"
	FormTo                    = "to"
	FormRegistrationIDs       = "registrationIds"
	FormCollapseKey           = "collapseKey"
	FormPriority              = "priority"
	FormContentAvailable      = "contentAvailable"
	FormDelayWhileIdle        = "delayWhileIdle"
	FormTimeToLive            = "timeToLive"
	FormRestrictedPackageName = "restrictedPackageName"
	FormDryRun                = "dryRun"
	FormData                  = "data"
	FormNotification          = "notification"
)

// submission is a parsed demo form.
type submission struct {
	Endpoint  string
	ServerKey string
	Fields    message.Fields
}

func parseForm(form url.Values) (*submission, error) {

	retval := &submission{
		Endpoint:  strings.TrimSpace(form.Get(FormEndpoint)),
		ServerKey: strings.TrimSpace(form.Get(FormServerKey)),
		Fields:    message.Fields{},
	}

	if to := strings.TrimSpace(form.Get(FormTo)); to != "" {
		retval.Fields[message.KeyTo] = to
	}

	if ids := splitLines(form.Get(FormRegistrationIDs)); len(ids) > 0 {
		retval.Fields[message.KeyRegistrationIDs] = ids
	}

	for formKey, key := range map[string]string{
		FormCollapseKey:           message.KeyCollapseKey,
		FormPriority:              message.KeyPriority,
		FormTimeToLive:            message.KeyTimeToLive,
		FormRestrictedPackageName: message.KeyRestrictedPackageName,
	} {
		if v := strings.TrimSpace(form.Get(formKey)); v != "" {
			retval.Fields[key] = v
		}
	}

	// booleans keep their raw form value, the message parses them
	for formKey, key := range map[string]string{
		FormContentAvailable: message.KeyContentAvailable,
		FormDelayWhileIdle:   message.KeyDelayWhileIdle,
		FormDryRun:           message.KeyDryRun,
	} {
		if _, ok := form[formKey]; ok {
			retval.Fields[key] = strings.TrimSpace(form.Get(formKey))
		}
	}

	for formKey, key := range map[string]string{
		FormData:         message.KeyData,
		FormNotification: message.KeyNotification,
	} {
		obj, err := parseObject(formKey, form.Get(formKey))
		if err != nil {
			return nil, err
		}
		if obj != nil {
			retval.Fields[key] = obj
		}
	}

	return retval, nil
}

func parseObject(name, src string) (map[string]interface{}, error) {

	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewBufferString(src))
	decoder.UseNumber()

	retval := map[string]interface{}{}
	if err := decoder.Decode(&retval); err != nil {
		return nil, gcmerr.Wrap(gcmerr.CodeInvalidParams, err, "invalid `"+name+"` json object")
	}

	return retval, nil
}

func splitLines(src string) []string {

	lines := strings.Split(strings.Replace(src, "\r\n", "\n", -1), "\n")

	retval := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			retval = append(retval, line)
		}
	}

	return retval
}
