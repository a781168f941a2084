package request

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// ToJsonReq converts a Go object to a JSON-encoded HTTP request payload,
// wrapped in a buffer ready to be sent in a request body.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}
	return bytes.NewBuffer(c), nil
}

// ToFormReq encodes key/value pairs as an x-www-form-urlencoded body,
// as used by OAuth client-credentials token endpoints.
func ToFormReq(fields map[string]string) *strings.Reader {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	return strings.NewReader(form.Encode())
}

// Call sends the request with a JSON content type and decodes the JSON
// response body into the provided structure. The raw response is returned
// so callers can inspect the status code.
func Call(req *http.Request, response interface{}) (*http.Response, error) {
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	client := &http.Client{}

	resp, err := client.Do(req)
	if err != nil {
		return resp, err
	}
	defer func() { _ = resp.Body.Close() }()

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return resp, err
	}
	return resp, nil
}
