package jpegr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/wellwelwel/jpegr/internal/errs"
)

// UploadOptions shapes the multipart request sent by Upload.
type UploadOptions struct {
	Field  string `default:"image"`
	Name   string `default:"image.jpeg"`
	Method string `default:"POST"`
	Header http.Header
}

// Upload sends the held image to url as a multipart form part. The caller
// owns the response body.
func (p *Processor) Upload(ctx context.Context, url string, opts UploadOptions) (*http.Response, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("apply upload defaults: %w", err)
	}
	img := p.Image()
	if img == nil {
		return nil, errs.Upload("upload", "No processed image to upload.", nil)
	}

	body, contentType, err := multipartBody(img.Blob, opts)
	if err != nil {
		return nil, errs.Upload("upload", "Upload failed", err)
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, url, body)
	if err != nil {
		return nil, errs.Upload("upload", "Upload failed", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("upload failed", zap.String("url", url), zap.Error(err))
		return nil, errs.Upload("upload", "Upload failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		p.log.Error("upload rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, errs.Upload("upload", "Upload failed", fmt.Errorf("status %s", resp.Status))
	}
	p.log.Debug("uploaded",
		zap.String("url", url),
		zap.Int64("bytes", img.Blob.Size()),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

func multipartBody(b *Blob, opts UploadOptions) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, opts.Field, opts.Name))
	h.Set("Content-Type", b.Type())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(b.Bytes()); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
