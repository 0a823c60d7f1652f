package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"budgetsip/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var (
	errInvalidBody = errors.New("invalid JSON body")
	errInvalidID   = errors.New("invalid id")
)

// requestError is a client error carrying the message returned to the caller.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(core.Date); ok {
			return d.Time
		}
		return nil
	}, core.Date{})

	return v
}

// decodeJSON reads a size-limited JSON body into dst. Malformed dates keep
// their own message; every other decoding failure is reported generically.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			return badRequest("%s", err.Error())
		}
		return badRequest("%s", errInvalidBody.Error())
	}
	return nil
}

// validateRequest runs struct tag validation. A missing required field yields
// requiredMsg; any other rule failure names the offending field.
func validateRequest(dst any, requiredMsg string) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return badRequest("%s", requiredMsg)
		}
	}
	return badRequest("%s is invalid", verrs[0].Field())
}

// decodeAndValidate combines decodeJSON and validateRequest.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, requiredMsg string) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return validateRequest(dst, requiredMsg)
}

// parseID reads the positive integer {id} path value.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("%s", errInvalidID.Error())
	}
	return id, nil
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (core.Date, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return core.Date{}, false, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, false, badRequest("%s must be YYYY-MM-DD", name)
	}
	return d, true, nil
}

// refDate returns the ?date= reference day, defaulting to today.
func (s *Server) refDate(r *http.Request) (core.Date, error) {
	d, ok, err := parseDateParam(r, "date")
	if err != nil {
		return core.Date{}, err
	}
	if !ok {
		return core.Today(s.now()), nil
	}
	return d, nil
}

// dateRange reads ?from= and ?to=. The range applies only when both are set.
func dateRange(r *http.Request) (from, to core.Date, ok bool, err error) {
	from, hasFrom, err := parseDateParam(r, "from")
	if err != nil {
		return core.Date{}, core.Date{}, false, err
	}
	to, hasTo, err := parseDateParam(r, "to")
	if err != nil {
		return core.Date{}, core.Date{}, false, err
	}
	return from, to, hasFrom && hasTo, nil
}
