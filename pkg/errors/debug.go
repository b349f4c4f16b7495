package errors

import (
	"errors"
	"fmt"
)

// StatusError is implemented by transport errors that carry an upstream HTTP response.
type StatusError interface {
	error
	StatusCode() int
	Endpoint() string
	ResponseBody() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
	UpstreamBody     string `json:"upstream_body,omitempty"`
}

const maxDumpBody = 512

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		d.UpstreamStatus = statusErr.StatusCode()
		d.UpstreamEndpoint = statusErr.Endpoint()
		body := statusErr.ResponseBody()
		if len(body) > maxDumpBody {
			body = body[:maxDumpBody]
		}
		d.UpstreamBody = body
	}

	return d
}
