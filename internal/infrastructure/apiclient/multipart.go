package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
)

// FilePart is a file attached to a multipart form.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

// PostMultipart sends fields and an optional file as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *FilePart) (*Response, error) {
	return c.sendMultipart(ctx, http.MethodPost, path, fields, file)
}

// PutMultipart is PostMultipart with PUT.
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, file *FilePart) (*Response, error) {
	return c.sendMultipart(ctx, http.MethodPut, path, fields, file)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, file *FilePart) (*Response, error) {
	body, contentType, err := encodeMultipart(fields, file)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{
		Method:      method,
		Path:        path,
		RequireAuth: true,
		rawBody:     body,
		contentType: contentType,
	})
}

func encodeMultipart(fields map[string]string, file *FilePart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	if file != nil && file.Content != nil {
		field := file.Field
		if field == "" {
			field = "image"
		}
		part, err := w.CreateFormFile(field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copying file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
