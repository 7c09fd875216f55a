package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
	"github.com/tiffinworks/commerce-backend/pkg/metrics"
	"github.com/tiffinworks/commerce-backend/pkg/shopify"
)

const (
	fileFieldName = "file"

	statusReady = "READY"

	outcomeReady   = "ready"
	outcomeTimeout = "timeout"
)

// adminAPI is the slice of the admin client the pipeline depends on.
type adminAPI interface {
	StagedUploadsCreate(ctx context.Context, filename, mimeType string) (*shopify.StagedUploadTarget, error)
	FileCreate(ctx context.Context, originalSource, contentType string) (*shopify.FileRecord, error)
	FileUpdate(ctx context.Context, id, originalSource string) (*shopify.FileRecord, error)
	FileNodes(ctx context.Context, ids []string) ([]shopify.FileStatusNode, error)
}

// Input is one upload invocation. ExistingFileID switches registration
// from create to update; MIMEType is sniffed from the payload when blank.
type Input struct {
	Filename       string
	MIMEType       string
	Payload        []byte
	ExistingFileID string
}

// Result is the registered asset once it is fully processed.
type Result struct {
	AssetID    string `json:"assetId"`
	PreviewURL string `json:"previewUrl"`
}

// StatusError reports a staged upload rejected at the HTTP layer.
type StatusError struct {
	HTTPStatus int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("staged upload returned status %d", e.HTTPStatus)
}

// Pipeline runs the stage, upload, register and poll phases for one file.
type Pipeline struct {
	admin        adminAPI
	httpClient   *http.Client
	pollInterval time.Duration
	maxAttempts  int
	maxBytes     int64
	logger       *logger.Logger
	metrics      *metrics.CommerceMetrics
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithHTTPClient overrides the client used for the staged upload POST.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewPipeline wires an upload pipeline against the admin API.
func NewPipeline(admin adminAPI, cfg config.UploadsConfig, logg *logger.Logger, commerceMetrics *metrics.CommerceMetrics, opts ...Option) (*Pipeline, error) {
	if admin == nil {
		return nil, fmt.Errorf("uploads: admin client is required")
	}

	pipeline := &Pipeline{
		admin:        admin,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		maxBytes:     int64(cfg.MaxUploadMB) << 20,
		logger:       logg,
		metrics:      commerceMetrics,
	}
	if pipeline.pollInterval <= 0 {
		pipeline.pollInterval = 3 * time.Second
	}
	if pipeline.maxAttempts <= 0 {
		pipeline.maxAttempts = 10
	}

	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline, nil
}

// MaxBytes reports the configured payload cap in bytes, zero when unlimited.
func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// Run executes the full workflow and returns the ready asset.
func (p *Pipeline) Run(ctx context.Context, input Input) (*Result, error) {
	if err := p.validate(input); err != nil {
		return nil, err
	}

	mimeType := input.MIMEType
	if mimeType == "" {
		mimeType = mimetype.Detect(input.Payload).String()
	}

	started := time.Now()

	target, err := p.admin.StagedUploadsCreate(ctx, input.Filename, mimeType)
	if err != nil {
		p.metrics.IncFailure("upload")
		return nil, err
	}

	if err := p.uploadToTarget(ctx, target, input.Filename, input.Payload); err != nil {
		p.metrics.IncFailure("upload")
		return nil, err
	}

	record, err := p.register(ctx, input.ExistingFileID, target.ResourceURL, mimeType)
	if err != nil {
		p.metrics.IncFailure("upload")
		return nil, err
	}

	result, err := p.pollUntilReady(ctx, record.ID)
	if err != nil {
		p.metrics.IncFailure("upload")
		return nil, err
	}

	p.metrics.ObserveDuration("upload", time.Since(started))
	p.metrics.IncSuccess("upload")
	return result, nil
}

func (p *Pipeline) validate(input Input) error {
	if strings.TrimSpace(input.Filename) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	if len(input.Payload) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "file payload is required")
	}
	if p.maxBytes > 0 && int64(len(input.Payload)) > p.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "file payload exceeds upload size limit")
	}
	return nil
}

// uploadToTarget posts the multipart form to the single-use target. The
// backend-issued parameters go first, the file field last, matching the
// field ordering staged upload endpoints require.
func (p *Pipeline) uploadToTarget(ctx context.Context, target *shopify.StagedUploadTarget, filename string, payload []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, param := range target.Parameters {
		if err := writer.WriteField(param.Name, param.Value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write staged upload field")
		}
	}
	part, err := writer.CreateFormFile(fileFieldName, filename)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create staged upload file field")
	}
	if _, err := part.Write(payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write staged upload payload")
	}
	if err := writer.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize staged upload body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build staged upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "staged upload request failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, &StatusError{HTTPStatus: resp.StatusCode}, "staged upload rejected")
	}

	p.log(ctx, "staged upload accepted", map[string]any{"status": resp.StatusCode, "filename": filename})
	return nil
}

// register creates a fresh asset record or repoints an existing one.
// Content-type metadata is attached on create only.
func (p *Pipeline) register(ctx context.Context, existingFileID, resourceURL, mimeType string) (*shopify.FileRecord, error) {
	if existingFileID != "" {
		return p.admin.FileUpdate(ctx, existingFileID, resourceURL)
	}
	return p.admin.FileCreate(ctx, resourceURL, mimeType)
}

// pollUntilReady queries the asset status on a fixed interval until both
// the READY status and a preview URL are present, or attempts run out.
func (p *Pipeline) pollUntilReady(ctx context.Context, assetID string) (*Result, error) {
	backoff := retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewConstant(p.pollInterval))

	var result *Result
	attempts := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		nodes, err := p.admin.FileNodes(ctx, []string{assetID})
		if err != nil {
			p.log(ctx, "asset status query failed", map[string]any{"attempt": attempts, "error": err.Error()})
			return retry.RetryableError(err)
		}

		for _, node := range nodes {
			if node.ID != assetID {
				continue
			}
			if strings.EqualFold(node.FileStatus, statusReady) && node.PreviewURL != "" {
				result = &Result{AssetID: node.ID, PreviewURL: node.PreviewURL}
				return nil
			}
		}
		return retry.RetryableError(pkgerrors.New(pkgerrors.CodeTimeout,
			fmt.Sprintf("asset not ready after %d attempts", p.maxAttempts)))
	})
	if err != nil {
		p.metrics.ObservePollAttempts(outcomeTimeout, attempts)
		if ctx.Err() != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "asset polling canceled")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "asset polling exhausted")
	}

	p.metrics.ObservePollAttempts(outcomeReady, attempts)
	return result, nil
}

func (p *Pipeline) log(ctx context.Context, msg string, fields map[string]any) {
	if p.logger == nil {
		return
	}
	p.logger.Info(p.logger.WithFields(ctx, fields), msg)
}
