package types

import (
	"io"
	"reflect"
)

// GraphQLType is implemented by host types that name their GraphQL type
// explicitly, e.g. custom scalars and enums.
type GraphQLType interface {
	GetGraphQLType() string
}

// GraphqlTypeInterface is the reflect.Type of GraphQLType.
var GraphqlTypeInterface = reflect.TypeOf((*GraphQLType)(nil)).Elem()

// Upload is the host-side value of the binary upload marker type. It is
// never serialized into the variables JSON; its position is sent as null and
// the content travels as a separate multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// GetGraphQLType implements GraphQLType.
func (u Upload) GetGraphQLType() string {
	return UploadScalar
}

// Open returns the stream of the upload.
func (u *Upload) Open() (io.Reader, error) {
	if u == nil || u.Reader == nil {
		return nil, ErrEmptyUpload
	}
	return u.Reader, nil
}

// MarshalJSON renders uploads as null, as required by the multipart
// request format.
func (u Upload) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

type uploadError string

func (e uploadError) Error() string { return string(e) }

// ErrEmptyUpload is returned when an upload has no content stream.
const ErrEmptyUpload = uploadError("upload has no content")
