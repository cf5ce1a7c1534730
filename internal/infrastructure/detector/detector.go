// Package detector talks to the object-detection inference service
// over HTTP. The model itself (YOLO weights, annotation rendering)
// lives in that service; this client only ships the image and maps
// the response.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/dto"
	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
)

type Client struct {
	url       string
	threshold float64
	client    *http.Client
}

func New(url string, threshold float64, timeout time.Duration) *Client {
	return &Client{
		url:       url,
		threshold: threshold,
		client:    &http.Client{Timeout: timeout},
	}
}

type detectResponse struct {
	Status    string             `json:"status"`
	Scores    map[string]float64 `json:"scores"`
	Model     string             `json:"model"`
	Annotated []byte             `json:"annotated_image"` // base64 in the wire format
}

func (c *Client) Detect(ctx context.Context, image []byte, cardID string) (*dto.DetectionResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", cardID+".jpg")
	if err != nil {
		return nil, fmt.Errorf("Detector - Detect - writer.CreateFormFile: %w", err)
	}

	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, fmt.Errorf("Detector - Detect - io.Copy: %w", err)
	}

	if err := writer.WriteField("card_id", cardID); err != nil {
		return nil, fmt.Errorf("Detector - Detect - writer.WriteField: %w", err)
	}

	if err := writer.WriteField("conf_threshold", strconv.FormatFloat(c.threshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("Detector - Detect - writer.WriteField: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("Detector - Detect - writer.Close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/detect", body)
	if err != nil {
		return nil, fmt.Errorf("Detector - Detect - http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Detector - Detect - c.client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Detector - Detect - status %d: %w", resp.StatusCode, errs.ErrDetectionFailed)
	}

	var dr detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("Detector - Detect - json.Decode: %w", err)
	}

	result, err := mapResult(&dr)
	if err != nil {
		return nil, fmt.Errorf("Detector - Detect: %w", err)
	}

	return result, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("Detector - Health - http.NewRequestWithContext: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("Detector - Health - c.client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Detector - Health - status %d: %w", resp.StatusCode, errs.ErrDetectionFailed)
	}

	return nil
}

// mapResult rejects responses the rest of the system cannot store: an
// unknown verdict or a confidence outside [0,1].
func mapResult(dr *detectResponse) (*dto.DetectionResult, error) {
	status := entity.CardStatus(dr.Status)
	if status != entity.StatusGood && status != entity.StatusFail {
		return nil, fmt.Errorf("unknown status %q: %w", dr.Status, errs.ErrDetectionFailed)
	}

	scores := make(entity.Scores, len(dr.Scores))
	for label, conf := range dr.Scores {
		if math.IsNaN(conf) || math.IsInf(conf, 0) || conf < 0 || conf > 1 {
			return nil, fmt.Errorf("score %q out of range: %w", label, errs.ErrDetectionFailed)
		}
		scores[label] = conf
	}

	if len(dr.Annotated) == 0 {
		return nil, fmt.Errorf("empty annotated image: %w", errs.ErrDetectionFailed)
	}

	return &dto.DetectionResult{
		Status:    status,
		Scores:    scores,
		Model:     dr.Model,
		Annotated: dr.Annotated,
	}, nil
}
