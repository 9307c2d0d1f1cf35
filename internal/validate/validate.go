// Package validate checks device payloads against the binding rules declared
// on models.TelemetryRequest.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/PratikDhanave/safedrive-service/internal/models"
)

// Kind selects the record a payload is checked for.
type Kind int

const (
	Sensor Kind = iota
	Accident
)

func (k Kind) String() string {
	switch k {
	case Sensor:
		return "sensor"
	case Accident:
		return "accident"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func init() {
	// Report json names ("seatbelt") instead of Go field names ("Seatbelt").
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Result is the outcome of a check. A valid result carries the typed payload;
// an invalid one names the first failing field.
type Result struct {
	Kind    Kind
	Payload models.Payload
	Field   string
	Reason  string
}

// Valid reports whether the payload passed every check.
func (r Result) Valid() bool {
	return r.Reason == ""
}

// Check runs the binding rules over req. Both kinds share one rule set.
func Check(req models.TelemetryRequest, kind Kind) Result {
	if kind != Sensor && kind != Accident {
		return Result{Kind: kind, Reason: fmt.Sprintf("unknown record kind %s", kind)}
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return FromBindError(err, kind)
	}
	return Result{Kind: kind, Payload: req.Payload()}
}

// Decode unmarshals a JSON body and checks it. Numeric strings are not
// numbers and "true" is not a boolean; unknown fields are ignored.
func Decode(body []byte, kind Kind) Result {
	var req models.TelemetryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return FromBindError(err, kind)
	}
	return Check(req, kind)
}

// FromBindError turns a decode or validation error, as returned by
// gin's ShouldBindJSON, into an invalid Result.
func FromBindError(err error, kind Kind) Result {
	var verrs validator.ValidationErrors
	var terr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		return Result{Kind: kind, Field: fe.Field(), Reason: fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())}
	case errors.As(err, &terr) && terr.Field != "":
		return Result{Kind: kind, Field: terr.Field, Reason: fmt.Sprintf("%s must be a %s, got %s", terr.Field, jsonType(terr.Type), terr.Value)}
	default:
		return Result{Kind: kind, Reason: fmt.Sprintf("payload must be a JSON object: %v", err)}
	}
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return t.String()
	}
}
