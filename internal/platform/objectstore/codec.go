package objectstore

import (
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

func encodeDocument(value any) (string, error) {
	if value == nil {
		return "", fmt.Errorf("document cannot be nil")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(value); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return buf.String(), nil
}

func decodeDocument(doc string, dest any) error {
	if err := sonic.UnmarshalString(doc, dest); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// decodeDocuments decodes stored documents into dest, which must point to a
// slice. Documents are joined into one JSON array so the slice is decoded in
// a single pass.
func decodeDocuments(docs []string, dest any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, doc := range docs {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.WriteString(doc)
	}
	_ = buf.WriteByte(']')

	if err := sonic.UnmarshalString(buf.String(), dest); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// normalizeKey converts Go values into what json_extract yields for the same
// JSON value, so bound parameters compare equal to extracted ones.
func normalizeKey(value any) any {
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case nil:
		return nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	default:
		return value
	}
}
