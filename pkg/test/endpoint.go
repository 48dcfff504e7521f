package test

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MulticastID is reported by ReplySuccess.
const MulticastID = 5001

// Request captured by Endpoint.
type Request struct {
	Authorization string
	ContentType   string
	Body          []byte
	Fields        map[string]interface{}
}

// Reply builds the answer of Endpoint for a received request.
type Reply func(req *Request) (statusCode int, body string)

// Endpoint is a fake legacy push server.
type Endpoint struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*Request
	reply    Reply
}

func NewEndpoint(reply Reply) *Endpoint {

	e := &Endpoint{reply: reply}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serveHTTP))

	return e
}

// ReplySuccess answers with one successful result per target.
func ReplySuccess(req *Request) (int, string) {

	count := 1
	if ids, ok := req.Fields["registration_ids"].([]interface{}); ok {
		count = len(ids)
	}

	results := make([]map[string]string, count)
	for i := range results {
		results[i] = map[string]string{"message_id": "0:" + strconv.Itoa(i)}
	}

	out, _ := json.Marshal(map[string]interface{}{
		"multicast_id":  MulticastID,
		"success":       count,
		"failure":       0,
		"canonical_ids": 0,
		"results":       results,
	})

	return http.StatusOK, string(out)
}

// ReplyStatus answers with a fixed status code and body.
func ReplyStatus(statusCode int, body string) Reply {
	return func(*Request) (int, string) {
		return statusCode, body
	}
}

func (e *Endpoint) Requests() []*Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*Request(nil), e.requests...)
}

func (e *Endpoint) serveHTTP(w http.ResponseWriter, r *http.Request) {

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	req := &Request{
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	}

	if err := json.Unmarshal(body, &req.Fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("JSON_PARSING_ERROR: " + err.Error()))
		return
	}

	e.mu.Lock()
	e.requests = append(e.requests, req)
	reply := e.reply
	e.mu.Unlock()

	statusCode, out := reply(req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(out))
}
