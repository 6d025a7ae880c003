package telephony

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type callResponse struct {
	SID string `json:"sid"`
}

func decodeCallSID(resp *http.Response) (string, error) {
	var body callResponse
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read place-call response: %w", err)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decode place-call response: %w", err)
	}
	if body.SID == "" {
		return "", fmt.Errorf("place-call response missing sid")
	}
	return body.SID, nil
}
