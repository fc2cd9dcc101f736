package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

// contentTypes maps lower-case extensions to upload MIME types.
var contentTypes = map[string]string{
	"pdf": "application/pdf",
	"txt": "text/plain",
	"csv": "text/csv",
}

// ContentTypeFor returns the upload MIME type for path, falling back to
// application/octet-stream.
func ContentTypeFor(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// countingReader counts bytes handed to the multipart writer.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// UploadAttachment streams the file at path to convert_document and returns
// the descriptor the service assigns. The file is copied straight into the
// request body through a pipe and never held in memory as a whole.
func (c *Client) UploadAttachment(ctx context.Context, path string) (*Attachment, error) {
	return c.uploadAttachment(ctx, path, c.cfg.RequestTimeout)
}

// uploadAttachment is UploadAttachment bounded by timeout.
func (c *Client) uploadAttachment(ctx context.Context, path string, timeout time.Duration) (att *Attachment, err error) {
	const op = "upload_attachment"
	ctx, finish := c.startOp(ctx, op, attribute.String("attachment.name", filepath.Base(path)))
	defer func() { finish(err) }()

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(CodeIO, op, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newError(CodeIO, op, fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		return nil, newError(CodeIO, op, fmt.Sprintf("%s is a directory", path), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	src := &countingReader{r: f}

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		pw.CloseWithError(writeUploadForm(mw, filepath.Base(path), ContentTypeFor(path), src, c.orgID))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/convert_document", pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, newError(CodeUpload, op, "failed to create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	// Unblocks the writer goroutine if the transport stopped reading early.
	pr.CloseWithError(io.ErrClosedPipe)
	<-writeDone
	if err != nil {
		return nil, &Error{Code: CodeUpload, Op: op, Message: "request failed", Err: transportError(op, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(CodeUpload, op, "failed to read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Code: CodeUpload, Op: op, Message: serviceMessage(body), Status: resp.StatusCode}
	}

	att = &Attachment{}
	if err := json.Unmarshal(body, att); err != nil {
		return nil, newError(CodeUpload, op, "failed to decode attachment descriptor", err)
	}

	metrics.AttachmentBytesTotal.Add(float64(src.n))
	c.log.Debug("attachment uploaded",
		zap.String("file_name", att.FileName),
		zap.Int64("bytes", src.n),
		zap.Duration("duration", time.Since(start)),
	)
	return att, nil
}

// writeUploadForm writes the file part followed by orgUuid and closes the form.
func writeUploadForm(mw *multipart.Writer, fileName, contentType string, src io.Reader, orgID string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := mw.WriteField("orgUuid", orgID); err != nil {
		return err
	}
	return mw.Close()
}
