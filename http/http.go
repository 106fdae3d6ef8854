package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"promotions/apierrors"
)

const (
	JSONContentType = "application/json"
	CBORContentType = "application/cbor"
)

// Response is the envelope every operation produces. Body holds the
// JSON-serialized payload.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

func BuildResponse(statusCode int, payload any) Response {
	data, err := json.Marshal(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		data, _ = json.Marshal(apierrors.InternalFailure(err.Error()).Body)
	}
	return Response{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": JSONContentType},
		Body:       string(data),
	}
}

func ErrorResponse(awserr *apierrors.Error) Response {
	return BuildResponse(awserr.Code, awserr.Body)
}

func WriteResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}

var cborDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Unmarshal decodes a request body. An empty content type is treated as JSON.
func Unmarshal(data []byte, contentType string, target any) error {
	mediaType := JSONContentType
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("bad content type %q: %v", contentType, err)
		}
		mediaType = parsed
	}

	switch mediaType {
	case JSONContentType:
		decoder := json.NewDecoder(bytes.NewReader(data))
		err := decoder.Decode(target)
		if err != nil {
			return fmt.Errorf("json unmarshal failed: %v", err)
		}
		if decoder.More() {
			return errors.New("unexpected data after JSON body")
		}
	case CBORContentType:
		err := cborDecMode.Unmarshal(data, target)
		if err != nil {
			return fmt.Errorf("cbor unmarshal failed: %v", err)
		}
	default:
		return errors.New("unknown content type: " + contentType)
	}
	return nil
}
