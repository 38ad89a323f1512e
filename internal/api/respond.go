package api

import (
	"bytes"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type of MessagePack responses
const MIMEApplicationMsgpack = "application/msgpack"

// wantsMsgpack reports whether the client asked for MessagePack in Accept.
func wantsMsgpack(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, MIMEApplicationMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// encodeMsgpack encodes v using the json struct tags so both encodings share field names.
func encodeMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// respond writes v as MessagePack when requested and as JSON otherwise.
func respond(c echo.Context, status int, v interface{}) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}
	data, err := encodeMsgpack(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, MIMEApplicationMsgpack, data)
}
