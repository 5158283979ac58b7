// Package faceapi calls the Face++ detect endpoint through RapidAPI.
package faceapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/insultr/internal/face"
	"github.com/example/insultr/internal/formenc"
	"github.com/example/insultr/internal/logging"
)

// ReturnAttributes is the attribute list requested for every face.
const ReturnAttributes = "gender,age,smiling,emotion,ethnicity,beauty,skinstatus"

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// StatusError is returned for responses outside 200-299.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("face api returned status %d", e.StatusCode)
}

// Config describes the endpoint and credentials.
type Config struct {
	URL     string
	Host    string
	Key     string
	Timeout time.Duration
}

// Client is a Face++ detect client.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger.Named("faceapi")}
}

// Detect asks the API to analyse the image behind imageURL.
func (c *Client) Detect(ctx context.Context, requestID, imageURL string) (*face.Response, error) {
	opLogger := logging.WithOperation(c.logger, "faceapi.detect", requestID)

	body := formenc.Encode(map[string]string{
		"image_url":         imageURL,
		"return_attributes": ReturnAttributes,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, logging.NewOperationError("faceapi.build_request", requestID, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-rapidapi-host", c.cfg.Host)
	req.Header.Set("x-rapidapi-key", c.cfg.Key)

	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := logging.NewOperationError("faceapi.detect", requestID, err)
		opLogger.Error("face api request failed", zap.Error(err))
		return nil, wrapped
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		wrapped := logging.NewOperationError("faceapi.read_body", requestID, err)
		opLogger.Error("failed to read face api response", zap.Error(err))
		return nil, wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		opLogger.Warn("face api status not ok",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(statusErr.Body, 512)),
		)
		return nil, logging.NewOperationError("faceapi.detect", requestID, statusErr)
	}

	decoded, err := face.DecodeResponse(data)
	if err != nil {
		opLogger.Error("failed to decode face api response", zap.Error(err))
		return nil, logging.NewOperationError("faceapi.decode", requestID, err)
	}

	opLogger.Debug("face api responded", zap.Int("faces", decoded.Count()))
	return decoded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
