package api

import (
	"encoding/json"
	"fmt"

	"droneview/internal/core/domain"
)

// envelope is the backend's uniform response wrapper. Any code other
// than 200 is an application-level failure, even on HTTP 2xx.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

const envelopeOK = 200

func decodeEnvelope(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("malformed response envelope: %w", err)
	}

	if env.Code != envelopeOK {
		if env.Msg != "" {
			return fmt.Errorf("%w: code %d: %s", domain.ErrRejected, env.Code, env.Msg)
		}
		return fmt.Errorf("%w: code %d", domain.ErrRejected, env.Code)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("malformed envelope data: %w", err)
	}
	return nil
}
