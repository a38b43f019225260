// matrix/client.go
package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Client commands the video matrix switcher through its HTTP control
// endpoint. The vendor protocol (serial, TCP, whatever the switcher
// actually speaks) is terminated by the control bridge behind that
// endpoint; this backend only ever sees success or failure.
type Client struct {
	controlURL string
	httpClient *http.Client
}

// NewClient builds a client for the control endpoint at controlURL.
func NewClient(controlURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		controlURL: controlURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type switchCommand struct {
	InputNumber  int `json:"input"`
	OutputNumber int `json:"output"`
}

type switchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SwitchInput routes inputNumber to outputNumber on the physical matrix.
// A non-nil error means the hardware did NOT switch; callers must not
// record the route in that case.
func (c *Client) SwitchInput(inputNumber, outputNumber int) error {
	if c.controlURL == "" {
		return fmt.Errorf("matrix control URL is not configured")
	}

	body, err := json.Marshal(switchCommand{InputNumber: inputNumber, OutputNumber: outputNumber})
	if err != nil {
		return fmt.Errorf("failed to marshal switch command: %w", err)
	}

	url := c.controlURL + "/switch"
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to POST switch command to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("matrix control endpoint returned status %d for input %d -> output %d",
			resp.StatusCode, inputNumber, outputNumber)
	}

	var result switchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode matrix control response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("matrix refused to switch input %d -> output %d: %s",
			inputNumber, outputNumber, result.Message)
	}

	log.Printf("Matrix: Switched input %d -> output %d\n", inputNumber, outputNumber)
	return nil
}
