package provider

// Per-recipient error codes:
// https://firebase.google.com/docs/cloud-messaging/http-server-ref#error-codes
const (
	ErrorCodeMissingRegistration = "MissingRegistration"
	ErrorCodeInvalidRegistration = "InvalidRegistration"
	ErrorCodeNotRegistered       = "NotRegistered"
	ErrorCodeInvalidPackageName  = "InvalidPackageName"
	ErrorCodeMismatchSenderID    = "MismatchSenderId"
	ErrorCodeMessageTooBig       = "MessageTooBig"
	ErrorCodeInvalidDataKey      = "InvalidDataKey"
	ErrorCodeInvalidTTL          = "InvalidTtl"
	ErrorCodeUnavailable         = "Unavailable"
	ErrorCodeInternalServerError = "InternalServerError"
)

// Response of the push server to one downstream message.
type Response struct {
	MulticastID  int64             `json:"multicast_id"`
	Success      int               `json:"success"`
	Failure      int               `json:"failure"`
	CanonicalIDs int               `json:"canonical_ids"`
	Results      []*ResponseResult `json:"results"`
	StatusCode   int               `json:"-"`
}

// ResponseResult is the outcome for one recipient, in request order.
type ResponseResult struct {
	MessageID      string `json:"message_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Fields is the display projection of the response.
func (r *Response) Fields() map[string]interface{} {

	results := make([]map[string]interface{}, 0, len(r.Results))
	for _, res := range r.Results {
		item := make(map[string]interface{})
		if res.MessageID != "" {
			item["message_id"] = res.MessageID
		}
		if res.RegistrationID != "" {
			item["registration_id"] = res.RegistrationID
		}
		if res.Error != "" {
			item["error"] = res.Error
		}
		results = append(results, item)
	}

	return map[string]interface{}{
		"multicast_id":  r.MulticastID,
		"success":       r.Success,
		"failure":       r.Failure,
		"canonical_ids": r.CanonicalIDs,
		"results":       results,
	}
}

// InvalidTokens matches results with the request targets and returns the
// tokens the push server rejected as unknown. The app should forget them.
func (r *Response) InvalidTokens(targets []string) []string {

	retval := make([]string, 0)
	for i, res := range r.Results {
		if i >= len(targets) {
			break
		}

		if IsBadDeviceToken(res.Error) {
			retval = append(retval, targets[i])
		}
	}

	return retval
}

// CanonicalTokens maps a sent token to the token the push server wants
// used instead.
func (r *Response) CanonicalTokens(targets []string) map[string]string {

	retval := make(map[string]string)
	for i, res := range r.Results {
		if i >= len(targets) {
			break
		}

		if res.RegistrationID != "" && res.RegistrationID != targets[i] {
			retval[targets[i]] = res.RegistrationID
		}
	}

	return retval
}

func IsBadDeviceToken(errorCode string) bool {
	return errorCode == ErrorCodeInvalidRegistration ||
		errorCode == ErrorCodeNotRegistered ||
		errorCode == ErrorCodeMissingRegistration
}
