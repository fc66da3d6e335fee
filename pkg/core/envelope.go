package core

import "fmt"

// Wire keys shared by every response.
const (
	KeyReturnCode = "return_code"
	KeyReturnMsg  = "return_msg"

	keyPageData       = "data"
	keyPagePagination = "pagination"
	keyCursorContext  = "ctx_area_fk"
	keyCursorNext     = "ctx_area_nk"
)

// Query keys under which a cursor is sent back to fetch the next page.
const (
	QueryContextKey = "CTX_AREA_FK"
	QueryNextKey    = "CTX_AREA_NK"
)

// Envelope is the status part carried by every response.
// A response is successful iff ReturnCode == 0.
type Envelope struct {
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

// OK reports whether the envelope signals application success.
func (e Envelope) OK() bool {
	return e.ReturnCode == 0
}

// Err converts a failed envelope into an API error, or nil when successful.
func (e Envelope) Err(httpStatus int) error {
	if e.OK() {
		return nil
	}
	return NewAPIError(httpStatus, e.ReturnCode, e.ReturnMsg)
}

// Envelope reads return_code and return_msg.
func (d *Decoder) Envelope() Envelope {
	return Envelope{
		ReturnCode: d.Int(KeyReturnCode),
		ReturnMsg:  d.String(KeyReturnMsg),
	}
}

// DecodeEnvelope decodes only the status part of a payload.
func DecodeEnvelope(p Payload) (Envelope, error) {
	d := NewDecoder(p)
	env := d.Envelope()
	return env, d.Err()
}

// Cursor is the continuation token pair of a paginated response.
type Cursor struct {
	ContextKey string `json:"context_key"`
	NextKey    string `json:"next_key"`
}

// Page is a paginated response envelope holding items of kind T.
type Page[T any] struct {
	Envelope
	Items  []T
	Cursor Optional[Cursor]
}

// DecodePage decodes a paginated payload, running item over every element of
// data. A missing pagination object, or one whose next key is blank, means
// no further pages.
func DecodePage[T any](p Payload, item Schema[T]) (*Page[T], error) {
	d := NewDecoder(p)
	env := d.Envelope()
	raw := d.Objects(keyPageData)
	pagination := d.Object(keyPagePagination)
	if err := d.Err(); err != nil {
		return nil, err
	}

	page := &Page[T]{Envelope: env, Items: make([]T, 0, len(raw))}
	for i, obj := range raw {
		v, err := DecodeAt(fmt.Sprintf("%s[%d]", keyPageData, i), obj, item)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, v)
	}

	if obj, ok := pagination.Get(); ok {
		cd := NewDecoder(obj)
		cd.prefix = keyPagePagination + "."
		ctxKey := cd.String(keyCursorContext)
		next := cd.OptString(keyCursorNext)
		if err := cd.Err(); err != nil {
			return nil, err
		}
		if nk, ok := next.Get(); ok {
			page.Cursor = Some(Cursor{ContextKey: ctxKey, NextKey: nk})
		}
	}
	return page, nil
}
