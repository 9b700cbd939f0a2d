package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/photo-cycler/backend/internal/models"
)

// MIMEApplicationMsgpack is the media type clients send in Accept to get
// msgpack encoded property values.
const MIMEApplicationMsgpack = "application/msgpack"

// ThingHandlerImpl implements the ThingHandler interface
type ThingHandlerImpl struct {
	thing       PropertyStore
	externalURL string
}

// NewThingHandler creates a handler for t. When externalURL is empty the
// description's base is derived from each request.
func NewThingHandler(t PropertyStore, externalURL string) ThingHandler {
	return &ThingHandlerImpl{
		thing:       t,
		externalURL: strings.TrimSuffix(externalURL, "/"),
	}
}

// HandleDescription returns the thing description.
func (h *ThingHandlerImpl) HandleDescription(c echo.Context) error {
	return c.JSON(http.StatusOK, h.thing.Describe(h.baseURL(c)))
}

// HandleGetProperties returns every property value.
func (h *ThingHandlerImpl) HandleGetProperties(c echo.Context) error {
	return respond(c, http.StatusOK, h.thing.Values())
}

// HandleGetProperty returns a single property as {name: value}.
func (h *ThingHandlerImpl) HandleGetProperty(c echo.Context) error {
	name := c.Param("name")
	p, ok := h.thing.Property(name)
	if !ok {
		return NewNotFoundError("property", name)
	}
	return respond(c, http.StatusOK, models.PropertyStatus{name: p.Value()})
}

// HandlePutProperty writes a property from a {name: value} body and echoes the
// stored value.
func (h *ThingHandlerImpl) HandlePutProperty(c echo.Context) error {
	name := c.Param("name")
	if _, ok := h.thing.Property(name); !ok {
		return NewNotFoundError("property", name)
	}

	var body map[string]interface{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	value, ok := body[name]
	if !ok {
		return NewBadRequestError(fmt.Sprintf("body must contain %q", name), nil)
	}

	stored, err := h.thing.SetProperty(c.Request().Context(), name, value)
	if err != nil {
		return propertyError(name, err)
	}

	return respond(c, http.StatusOK, models.PropertyStatus{name: stored})
}

func (h *ThingHandlerImpl) baseURL(c echo.Context) string {
	if h.externalURL != "" {
		return h.externalURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

// respond writes v as msgpack when the client asks for it and as JSON otherwise.
func respond(c echo.Context, status int, v interface{}) error {
	if !acceptsMsgpack(c.Request()) {
		return c.JSON(status, v)
	}

	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, MIMEApplicationMsgpack, data)
}

func acceptsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get(echo.HeaderAccept), ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		if strings.TrimSpace(mediaType) == MIMEApplicationMsgpack {
			return true
		}
	}
	return false
}
