package core

import "maps"

// HeaderAPIID is the request header naming the brokerage operation.
const HeaderAPIID = "api-id"

type Params map[string]any

// Request fully describes one API call. It is built fresh per call by an
// endpoint client and consumed by an Executor.
type Request struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   Params            `json:"query,omitempty"`
	Body    any               `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   make(Params),
		Headers: make(map[string]string),
	}
}

func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetHeaders(headers map[string]string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	maps.Copy(r.Headers, headers)
	return r
}

// SetAPIID sets the operation id header.
func (r *Request) SetAPIID(id APIID) *Request {
	return r.SetHeader(HeaderAPIID, string(id))
}

// APIID returns the operation id header, if set.
func (r *Request) APIID() APIID {
	return APIID(r.Headers[HeaderAPIID])
}

// Clone returns a copy whose query and header maps can be modified
// without affecting r. The body is shared.
func (r *Request) Clone() *Request {
	return &Request{
		Method:  r.Method,
		Path:    r.Path,
		Query:   maps.Clone(r.Query),
		Body:    r.Body,
		Headers: maps.Clone(r.Headers),
	}
}
