package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/llehouerou/gqlselect/uploads"
)

// uploadFile is an upload read into memory, so that the persisted
// fallback can send it a second time.
type uploadFile struct {
	uploads.Entry
	data []byte
}

func loadUploads(entries []uploads.Entry) ([]uploadFile, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	files := make([]uploadFile, len(entries))
	for i, e := range entries {
		r, err := e.Open()
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", e.Path, err)
		}
		data, err := io.ReadAll(r)
		if closer, ok := r.(io.Closer); ok {
			_ = closer.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", e.Path, err)
		}
		files[i] = uploadFile{Entry: e, data: data}
	}
	return files, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildMultipartRequest encodes in as a GraphQL multipart request: an
// operations part with every upload position set to null, a map part from
// file index to variable path, and one part per file.
//
// E.g., map {"0": ["variables.users.0.avatar"]}.
func (c *Client) buildMultipartRequest(
	ctx context.Context,
	in Request,
	files []uploadFile,
) (*http.Request, []byte, error) {
	operations, err := json.Marshal(in)
	if err != nil {
		return nil, nil, err
	}
	fileMap := make(map[string][]string, len(files))
	for _, f := range files {
		operations, err = sjson.SetBytes(operations, f.Path, nil)
		if err != nil {
			return nil, operations, fmt.Errorf("null upload %s: %w", f.Path, err)
		}
		fileMap[strconv.Itoa(f.Index)] = []string{f.Path}
	}
	mapPart, err := json.Marshal(fileMap)
	if err != nil {
		return nil, operations, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("operations", string(operations)); err != nil {
		return nil, operations, err
	}
	if err := w.WriteField("map", string(mapPart)); err != nil {
		return nil, operations, err
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%d"; filename="%s"`,
			f.Index, quoteEscaper.Replace(f.Filename)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, operations, err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, operations, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, operations, err
	}

	request, err := c.newHTTPRequest(ctx, bytes.NewReader(buf.Bytes()), w.FormDataContentType())
	if err != nil {
		return nil, operations, err
	}
	return request, operations, nil
}
