package output

import (
	"bytes"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPOutput POSTs each batch as newline-delimited messages.
type HTTPOutput struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPOutput creates an output that POSTs to url with the given headers.
func NewHTTPOutput(url string, headers map[string]string) *HTTPOutput {
	return &HTTPOutput{
		url:     url,
		headers: headers,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (h *HTTPOutput) WriteBatch(msgs [][]byte) error {
	var body bytes.Buffer
	for _, msg := range msgs {
		body.Write(msg)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			body.WriteByte('\n')
		}
	}

	req, err := http.NewRequest(http.MethodPost, h.url, &body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post batch")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("http output failed with status: %d", resp.StatusCode)
	}
	return nil
}
