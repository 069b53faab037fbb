package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// NewRequest creates a new HTTP request for testing. A non-nil body is JSON encoded,
// except raw strings which are sent verbatim.
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    []byte
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    bodyBytes,
		Body:   bodyMap,
	}
}

// Serve runs r through h and records the response.
func Serve(h http.Handler, r *http.Request) RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return RecordHTTPResponse(w)
}

// DecodeInto unmarshals a recorded body into v.
func DecodeInto(resp RecordResponse, v interface{}) error {
	return json.Unmarshal(resp.Raw, v)
}

// AssertErrorEnvelope checks the structured error body written for failed requests.
func AssertErrorEnvelope(t interface {
	Errorf(format string, args ...any)
}, resp RecordResponse, wantStatus int) {
	if resp.Code != wantStatus {
		t.Errorf("got status code %d, want %d", resp.Code, wantStatus)
	}
	if resp.Body["error"] != true {
		t.Errorf("got error=%v, want true", resp.Body["error"])
	}
	if code, _ := resp.Body["status_code"].(float64); int(code) != wantStatus {
		t.Errorf("got status_code %v, want %d", resp.Body["status_code"], wantStatus)
	}
	if msg, _ := resp.Body["message"].(string); msg == "" {
		t.Errorf("missing error message")
	}
}
